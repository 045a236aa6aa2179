package validator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/itechs-edu/exam-service/internal/models"
)

const passwordSpecialChars = "@$!%*?&_#-"

var (
	personNameRe = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	otpCodeRe    = regexp.MustCompile(`^[0-9]{6}$`)
)

// BusinessValidator handles business rule validation for users and exams.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates tag-level rules for any struct.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateUserCreate validates user creation, including the role-based
// username domain rules.
func (bv *BusinessValidator) ValidateUserCreate(req *UserCreateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.Username != nil && *req.Username != "" {
		errors = append(errors, validateRoleUsername(*req.Username, req.Role)...)
	}

	return errors
}

// ValidateChangePassword checks the new password and its confirmation.
func (bv *BusinessValidator) ValidateChangePassword(req *ChangePasswordRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		errors = append(errors, ValidationError{
			Field:   "confirm_password",
			Message: "password confirmation does not match new password",
			Rule:    "business_logic",
		})
	}

	return errors
}

func validateRoleUsername(username string, role models.UserRole) ValidationErrors {
	var errors ValidationErrors

	switch role {
	case models.RoleStudent:
		if !strings.HasSuffix(username, "@student.com") {
			errors = append(errors, ValidationError{
				Field:   "username",
				Message: "student username must end with @student.com",
				Value:   username,
				Rule:    "role_username",
			})
		}
	case models.RoleTeacher:
		if !strings.HasSuffix(username, "@teacher.com") {
			errors = append(errors, ValidationError{
				Field:   "username",
				Message: "teacher username must end with @teacher.com",
				Value:   username,
				Rule:    "role_username",
			})
		}
	case models.RoleSuperAdmin:
		if !strings.Contains(username, "@") {
			errors = append(errors, ValidationError{
				Field:   "username",
				Message: "super admin username must be a valid email",
				Value:   username,
				Rule:    "role_username",
			})
		}
	}

	return errors
}

// PasswordMeetsPolicy reports whether the password satisfies the platform
// policy: minimum 8 characters with upper, lower, digit and a special
// character from the fixed set.
func PasswordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return PasswordMeetsPolicy(fl.Field().String())
	})

	bv.validate.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return len(name) >= 2 && len(name) <= 30 && personNameRe.MatchString(name)
	})

	bv.validate.RegisterValidation("exam_time_limit", func(fl validator.FieldLevel) bool {
		limit := fl.Field().Int()
		return limit >= 1 && limit <= 480
	})

	bv.validate.RegisterValidation("otp_code", func(fl validator.FieldLevel) bool {
		return otpCodeRe.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
}
