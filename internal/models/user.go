package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent    UserRole = "STUDENT"
	RoleTeacher    UserRole = "TEACHER"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	Username string   `json:"username" gorm:"uniqueIndex;not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20"`

	FirstName *string `json:"first_name" gorm:"size:60"`
	LastName  *string `json:"last_name" gorm:"size:60"`

	// Owning teacher, set for students only.
	TeacherID *string `json:"teacher_id" gorm:"index;size:36"`
	Teacher   *User   `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`

	IsArchived bool `json:"is_archived" gorm:"not null;default:false;index"`
	IsVerified bool `json:"is_verified" gorm:"not null;default:false"`

	// OTP code and expiry are either both set or both null.
	OTPCode     *string    `json:"-" gorm:"size:6"`
	OTPExpiry   *time.Time `json:"-"`
	OTPVerified bool       `json:"otp_verified" gorm:"not null;default:false"`

	LastLogin *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName returns the first name when set, otherwise the username.
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Username
}
