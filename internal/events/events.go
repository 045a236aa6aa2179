package events

import (
	"time"
)

// Event types published by this service.
const (
	UserCreated   = "user.created"
	UserArchived  = "user.archived"
	UserRestored  = "user.restored"
	ExamCreated   = "exam.created"
	ExamJoined    = "exam.joined"
	ScoreRecorded = "exam.score_recorded"
)

const (
	eventSource  = "exam-service"
	eventVersion = "1.0"
)

// Event is the envelope published to the broker. Data carries the
// type-specific payload.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// UserEvent is the payload for user lifecycle events.
type UserEvent struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	ActorID  string  `json:"actor_id,omitempty"`
	Reason   *string `json:"reason,omitempty"`
}

// ExamEvent is the payload for exam lifecycle events.
type ExamEvent struct {
	ExamID    string `json:"exam_id"`
	ExamCode  string `json:"exam_code"`
	Title     string `json:"title"`
	TeacherID string `json:"teacher_id"`
	StudentID string `json:"student_id,omitempty"`
}
