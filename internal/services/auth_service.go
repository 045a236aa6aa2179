package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/mailer"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
	"github.com/itechs-edu/exam-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenService
	mail      mailer.Mailer
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenService, mail mailer.Mailer, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		mail:      mail,
		logger:    logger,
		validator: v,
	}
}

// Login authenticates by username and password. Teachers do not get a token
// yet; a passcode is emailed and the client must call VerifyOTP.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByUsername(ctx, req.Username)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}

	if user.IsArchived {
		return nil, ErrAccountArchived
	}
	if !auth.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if user.Role == models.RoleTeacher {
		if err := s.issueOTP(ctx, user); err != nil {
			return nil, err
		}
		return &LoginResult{
			RequiresOTP: true,
			UserID:      user.ID,
			Email:       user.Email,
		}, nil
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.recordLogin(ctx, user)

	return &LoginResult{Token: token, User: user}, nil
}

// VerifyOTP completes a teacher login. The passcode must match and still be
// within its validity window; it is cleared on success.
func (s *authService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*AuthResponse, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("otp lookup failed: %w", err)
	}

	if user.IsArchived {
		return nil, ErrAccountArchived
	}
	if user.OTPCode == nil || *user.OTPCode != req.OTPCode {
		return nil, ErrInvalidOTP
	}
	if user.OTPExpiry == nil || !time.Now().Before(*user.OTPExpiry) {
		return nil, ErrOTPExpired
	}

	if err := s.repo.User().ClearOTP(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("clear otp: %w", err)
	}
	user.OTPCode = nil
	user.OTPExpiry = nil
	user.OTPVerified = true
	s.recordLogin(ctx, user)

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: user}, nil
}

// RequestOTP re-issues a passcode for a teacher account. It never reveals
// whether the email exists.
func (s *authService) RequestOTP(ctx context.Context, req *RequestOTPRequest) error {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return errs
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("otp request lookup failed: %w", err)
	}
	if user.Role != models.RoleTeacher || user.IsArchived {
		return nil
	}

	return s.issueOTP(ctx, user)
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*models.User, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = req.FirstName
	}
	if req.LastName != nil {
		user.LastName = req.LastName
	}
	if req.Email != nil && *req.Email != user.Email {
		user.Email = *req.Email
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("user", "email", user.Email)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	if errs := s.validator.GetBusinessValidator().ValidateChangePassword(req); len(errs) > 0 {
		return errs
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(req.CurrentPassword, user.Password) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash

	if err := s.repo.User().Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *authService) RefreshToken(ctx context.Context, user *models.User) (string, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return token, nil
}

// issueOTP generates, stores and mails a fresh passcode, overwriting any
// prior one.
func (s *authService) issueOTP(ctx context.Context, user *models.User) error {
	code, err := auth.GenerateOTP()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(auth.OTPTTL)
	if err := s.repo.User().SetOTP(ctx, user.ID, code, expiry); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	msg := mailer.OTPMessage(user.DisplayName(), user.Email, code)
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send otp email", "user_id", user.ID, "error", err)
	}

	s.logger.Info("otp issued", "user_id", user.ID)
	return nil
}

func (s *authService) recordLogin(ctx context.Context, user *models.User) {
	now := time.Now()
	user.LastLogin = &now
	user.IsVerified = true
	if err := s.repo.User().Update(ctx, user); err != nil {
		s.logger.Error("failed to record login time", "user_id", user.ID, "error", err)
	}
}
