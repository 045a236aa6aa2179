package services

import (
	"context"

	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/validator"
)

// ===== REQUEST TYPES (aliased from validator for a single source of truth) =====

type LoginRequest = validator.LoginRequest
type VerifyOTPRequest = validator.VerifyOTPRequest
type RequestOTPRequest = validator.RequestOTPRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type ArchiveUserRequest = validator.ArchiveUserRequest
type CreateExamRequest = validator.ExamCreateRequest
type UpdateExamRequest = validator.ExamUpdateRequest
type JoinExamRequest = validator.JoinExamRequest

// ===== RESPONSE TYPES =====

// LoginResult is the outcome of the first login step. For teachers Token is
// empty and RequiresOTP is set; UserID and the full email let the client
// complete the verify-otp step, which keys on email.
type LoginResult struct {
	Token       string       `json:"token,omitempty"`
	User        *models.User `json:"user,omitempty"`
	RequiresOTP bool         `json:"requiresOTP"`
	UserID      string       `json:"userId,omitempty"`
	Email       string       `json:"email,omitempty"`
}

// AuthResponse is a completed authentication: token plus the account.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type UserListResponse struct {
	Users      []*models.User `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

type ArchivedUserListResponse struct {
	Users      []*models.ArchivedUser `json:"users"`
	Pagination Pagination             `json:"pagination"`
}

// CreatedUserResponse returns the new account. TemporaryPassword is only set
// when the service generated one, so the creator can hand it over out of band.
type CreatedUserResponse struct {
	User              *models.User `json:"user"`
	TemporaryPassword string       `json:"temporaryPassword,omitempty"`
}

type ExamListResponse struct {
	Exams      []*models.Exam `json:"exams"`
	Pagination Pagination     `json:"pagination"`
}

// ExamStatistics aggregates scores for one exam.
type ExamStatistics struct {
	ExamID        string          `json:"examId"`
	Title         string          `json:"title"`
	TotalStudents int64 `json:"totalStudents"`
	TotalScores   int64 `json:"totalScores"`

	// Percentage aggregates; raw marks vary per exam and do not compare.
	AveragePercentage float64 `json:"averagePercentage"`
	HighestPercentage float64 `json:"highestPercentage"`
	LowestPercentage  float64 `json:"lowestPercentage"`
	PassRate          float64 `json:"passRate"`

	Scores []*models.Score `json:"scores"`
}

// ===== QUERY TYPES =====

type UserListQuery struct {
	Role     *models.UserRole
	Search   string
	Archived bool
	Limit    int
	Offset   int
}

type ExamListQuery struct {
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

// ===== SERVICES =====

// AuthService owns login, OTP verification and self-service profile
// operations.
type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*AuthResponse, error)
	RequestOTP(ctx context.Context, req *RequestOTPRequest) error

	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
	RefreshToken(ctx context.Context, user *models.User) (string, error)
}

// UserService owns account management: creation, listing, archive and
// restore. Every operation takes the acting user for permission checks.
type UserService interface {
	Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*CreatedUserResponse, error)
	GetByID(ctx context.Context, actor *models.User, id string) (*models.User, error)
	List(ctx context.Context, actor *models.User, query UserListQuery) (*UserListResponse, error)
	Update(ctx context.Context, actor *models.User, id string, req *UpdateUserRequest) (*models.User, error)

	Archive(ctx context.Context, actor *models.User, id string, req *ArchiveUserRequest) error
	Restore(ctx context.Context, actor *models.User, id string) (*models.User, error)
	ListArchived(ctx context.Context, actor *models.User, limit, offset int) (*ArchivedUserListResponse, error)

	MyStudents(ctx context.Context, actor *models.User, query UserListQuery) (*UserListResponse, error)
	ResetPassword(ctx context.Context, actor *models.User, id string) (string, error)
}

// ExamService owns exam CRUD, enrollment by code and statistics.
type ExamService interface {
	Create(ctx context.Context, actor *models.User, req *CreateExamRequest) (*models.Exam, error)
	GetByID(ctx context.Context, actor *models.User, id string) (*models.Exam, error)
	GetByCode(ctx context.Context, actor *models.User, code string) (*models.Exam, error)
	List(ctx context.Context, actor *models.User, query ExamListQuery) (*ExamListResponse, error)
	Update(ctx context.Context, actor *models.User, id string, req *UpdateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, actor *models.User, id string) error

	Join(ctx context.Context, actor *models.User, req *JoinExamRequest) (*models.Exam, error)
	Statistics(ctx context.Context, actor *models.User, id string) (*ExamStatistics, error)
}

// ReportService renders downloadable reports.
type ReportService interface {
	// ExportScores renders the exam's score sheet as an xlsx workbook.
	ExportScores(ctx context.Context, actor *models.User, examID string) (filename string, content []byte, err error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Exam() ExamService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
