package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountArchived    = errors.New("account is archived")
	ErrInvalidOTP         = errors.New("invalid otp code")
	ErrOTPExpired         = errors.New("otp code has expired")
	ErrSelfArchive        = errors.New("cannot archive your own account")
	ErrNotArchived        = errors.New("user is not archived")
	ErrAlreadyEnrolled    = errors.New("already joined this exam")
	ErrExamInactive       = errors.New("exam is not active")
	ErrExamHasScores      = errors.New("exam has recorded scores")
	ErrStudentsOnly       = errors.New("only students can join exams")
)

// PermissionError carries who tried to do what to which resource.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// ConflictError marks a uniqueness violation on a named field.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

func NewConflictError(resource, field, value string) *ConflictError {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
