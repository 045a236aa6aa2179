package mailer

import (
	"context"
	"log/slog"
)

// ConsoleMailer logs email instead of sending it. Used in development so
// passcodes are visible without an email provider.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (m *ConsoleMailer) Send(_ context.Context, msg *Message) error {
	m.logger.Info("email (console delivery)",
		"to", msg.ToAddress,
		"subject", msg.Subject,
		"body", msg.PlainBody,
	)
	return nil
}
