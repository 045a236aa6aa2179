package validator

import (
	"github.com/itechs-edu/exam-service/internal/models"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// VerifyOTPRequest completes a teacher login.
type VerifyOTPRequest struct {
	Email   string `json:"email" validate:"required,email"`
	OTPCode string `json:"otpCode" validate:"required,otp_code"`
}

// RequestOTPRequest asks for a fresh OTP.
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,password_policy"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// UpdateProfileRequest updates the caller's own profile.
type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,person_name"`
	LastName  *string `json:"lastName" validate:"omitempty,person_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// UserCreateRequest creates a user (register and admin/teacher creation).
// Username and password are optional: the username is derived from the email
// and role when omitted, and a temporary password is generated when omitted.
type UserCreateRequest struct {
	Username  *string         `json:"username" validate:"omitempty,min=3,max=100"`
	Email     string          `json:"email" validate:"required,email"`
	Password  *string         `json:"password" validate:"omitempty,password_policy"`
	Role      models.UserRole `json:"role" validate:"required,user_role"`
	FirstName *string         `json:"firstName" validate:"omitempty,person_name"`
	LastName  *string         `json:"lastName" validate:"omitempty,person_name"`
}

// UserUpdateRequest updates names and email. Archival is not reachable from
// here; the dedicated archive endpoint owns that transition.
type UserUpdateRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,person_name"`
	LastName  *string `json:"lastName" validate:"omitempty,person_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// ArchiveUserRequest carries the optional archive reason.
type ArchiveUserRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// ExamCreateRequest creates an exam.
type ExamCreateRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	TimeLimit   *int    `json:"timeLimit" validate:"omitempty,exam_time_limit"`
	TotalMarks  *int    `json:"totalMarks" validate:"omitempty,min=0"`
}

// ExamUpdateRequest updates an exam.
type ExamUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	TimeLimit   *int    `json:"timeLimit" validate:"omitempty,exam_time_limit"`
	TotalMarks  *int    `json:"totalMarks" validate:"omitempty,min=0"`
	IsActive    *bool   `json:"isActive"`
}

// JoinExamRequest enrolls the calling student by exam code.
type JoinExamRequest struct {
	ExamCode string `json:"examCode" validate:"required,len=6"`
}
