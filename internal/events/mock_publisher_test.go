package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestMockEventPublisherRecords(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	err := publisher.Publish(ctx, UserCreated, UserEvent{
		UserID:   "user-1",
		Username: "alice@teacher.com",
		Role:     "TEACHER",
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(published))
	}

	event := published[0]
	if event.Type != UserCreated {
		t.Errorf("Type = %q, want %q", event.Type, UserCreated)
	}
	if event.ID == "" {
		t.Error("event ID is empty")
	}
	if event.Source != "exam-service" {
		t.Errorf("Source = %q, want %q", event.Source, "exam-service")
	}
	if event.Version != "1.0" {
		t.Errorf("Version = %q, want %q", event.Version, "1.0")
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp is zero")
	}

	publisher.ClearEvents()
	if got := publisher.GetPublishedEvents(); len(got) != 0 {
		t.Errorf("expected no events after clear, got %d", len(got))
	}
}
