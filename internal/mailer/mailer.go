package mailer

import (
	"context"
	"fmt"
)

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Mailer delivers transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// OTPMessage builds the login passcode email.
func OTPMessage(name, address, code string) *Message {
	return &Message{
		ToName:    name,
		ToAddress: address,
		Subject:   "Your Login OTP Code",
		PlainBody: fmt.Sprintf(
			"Hello %s,\n\nYour one-time passcode is %s. It expires in 30 minutes.\n\nIf you did not request this code, you can ignore this email.",
			name, code),
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>Your one-time passcode is <strong>%s</strong>. It expires in 30 minutes.</p><p>If you did not request this code, you can ignore this email.</p>`,
			name, code),
	}
}

// PasswordResetMessage builds the email carrying a freshly generated
// temporary password.
func PasswordResetMessage(name, address, tempPassword string) *Message {
	return &Message{
		ToName:    name,
		ToAddress: address,
		Subject:   "Your Password Has Been Reset",
		PlainBody: fmt.Sprintf(
			"Hello %s,\n\nYour password has been reset.\n\nTemporary password: %s\n\nPlease sign in and change it immediately.",
			name, tempPassword),
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>Your password has been reset.</p><p>Temporary password: <strong>%s</strong></p><p>Please sign in and change it immediately.</p>`,
			name, tempPassword),
	}
}

// WelcomeMessage builds the account creation email carrying the initial
// credentials.
func WelcomeMessage(name, address, username, tempPassword string) *Message {
	return &Message{
		ToName:    name,
		ToAddress: address,
		Subject:   "Welcome to the Learning Platform",
		PlainBody: fmt.Sprintf(
			"Hello %s,\n\nAn account has been created for you.\n\nUsername: %s\nTemporary password: %s\n\nPlease sign in and change your password.",
			name, username, tempPassword),
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,</p><p>An account has been created for you.</p><p>Username: <strong>%s</strong><br>Temporary password: <strong>%s</strong></p><p>Please sign in and change your password.</p>`,
			name, username, tempPassword),
	}
}
