package repositories

import (
	"context"
	"time"

	"github.com/itechs-edu/exam-service/internal/models"
)

// UserFilters narrows user listings. Nil fields are not applied.
type UserFilters struct {
	Role       *models.UserRole
	TeacherID  *string
	IsArchived *bool
	Search     string

	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ExamFilters narrows exam listings. StudentID filters to exams the student
// is enrolled in.
type ExamFilters struct {
	TeacherID *string
	StudentID *string
	IsActive  *bool
	Search    string

	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// SetOTP stores a passcode and its expiry, overwriting any prior one.
	SetOTP(ctx context.Context, id string, code string, expiry time.Time) error
	ClearOTP(ctx context.Context, id string) error
}

// ArchivedUserRepository persists archive records for soft-deleted users.
type ArchivedUserRepository interface {
	Create(ctx context.Context, record *models.ArchivedUser) error
	GetByUserID(ctx context.Context, userID string) (*models.ArchivedUser, error)
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context, limit, offset int) ([]*models.ArchivedUser, int64, error)
}

// ExamRepository persists exams, enrollments and scores.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id string) (*models.Exam, error)
	GetByCode(ctx context.Context, code string) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)

	CodeExists(ctx context.Context, code string) (bool, error)

	Enroll(ctx context.Context, examID, studentID string) error
	IsEnrolled(ctx context.Context, examID, studentID string) (bool, error)
	CountEnrollments(ctx context.Context, examID string) (int64, error)

	CountScores(ctx context.Context, examID string) (int64, error)
	GetScores(ctx context.Context, examID string) ([]*models.Score, error)
}
