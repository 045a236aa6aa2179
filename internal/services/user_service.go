package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/events"
	"github.com/itechs-edu/exam-service/internal/mailer"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
	"github.com/itechs-edu/exam-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	mail      mailer.Mailer
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, publisher events.EventPublisher, mail mailer.Mailer, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		publisher: publisher,
		mail:      mail,
		logger:    logger,
		validator: v,
	}
}

// Create registers a new account on behalf of the acting user. Teachers
// creating students get them assigned automatically.
func (s *userService) Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*CreatedUserResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateUserCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if actor == nil {
		return nil, NewPermissionError("anonymous", "", "user", "create", "authentication required")
	}
	if !auth.CanCreateRole(actor, req.Role) {
		return nil, NewPermissionError(actor.ID, "", "user", "create", "insufficient role permissions")
	}

	username := usernameForRole(req, req.Role)

	var tempPassword string
	password := ""
	if req.Password != nil && *req.Password != "" {
		password = *req.Password
	} else {
		generated, err := auth.GenerateTemporaryPassword()
		if err != nil {
			return nil, err
		}
		tempPassword = generated
		password = generated
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Email:     req.Email,
		Password:  hash,
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if actor.Role == models.RoleTeacher && req.Role == models.RoleStudent {
		user.TeacherID = &actor.ID
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("user", "username or email", username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publishUserEvent(ctx, events.UserCreated, user, actorID(actor), nil)

	if tempPassword != "" {
		msg := mailer.WelcomeMessage(user.DisplayName(), user.Email, user.Username, tempPassword)
		if err := s.mail.Send(ctx, msg); err != nil {
			s.logger.Error("failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}

	s.logger.Info("user created", "user_id", user.ID, "role", user.Role)
	return &CreatedUserResponse{User: user, TemporaryPassword: tempPassword}, nil
}

func (s *userService) GetByID(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewUser(actor, user) {
		return nil, NewPermissionError(actor.ID, id, "user", "read", "not owner, assigned teacher or admin")
	}
	return user, nil
}

// List returns active accounts visible to the actor. Archived accounts only
// appear for super admins asking for them explicitly; students see only
// themselves.
func (s *userService) List(ctx context.Context, actor *models.User, query UserListQuery) (*UserListResponse, error) {
	filters := repositories.UserFilters{
		Role:   query.Role,
		Search: query.Search,
		Limit:  query.Limit,
		Offset: query.Offset,
	}

	archived := false
	switch actor.Role {
	case models.RoleSuperAdmin:
		archived = query.Archived
	case models.RoleTeacher:
		student := models.RoleStudent
		filters.Role = &student
		filters.TeacherID = &actor.ID
	case models.RoleStudent:
		self, err := s.loadUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		return &UserListResponse{
			Users:      []*models.User{self},
			Pagination: Pagination{Total: 1, Limit: query.Limit, Offset: query.Offset},
		}, nil
	default:
		return nil, NewPermissionError(actor.ID, "", "user", "list", "unknown role")
	}
	filters.IsArchived = &archived

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return &UserListResponse{
		Users:      users,
		Pagination: Pagination{Total: total, Limit: query.Limit, Offset: query.Offset},
	}, nil
}

func (s *userService) Update(ctx context.Context, actor *models.User, id string, req *UpdateUserRequest) (*models.User, error) {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanUpdateUser(actor, user) {
		return nil, NewPermissionError(actor.ID, id, "user", "update", "not owner, assigned teacher or admin")
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
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Archive soft-deletes an account: the user row is flagged and a snapshot of
// it is written to the archive table in the same transaction.
func (s *userService) Archive(ctx context.Context, actor *models.User, id string, req *ArchiveUserRequest) error {
	if errs := s.validator.Struct(req); len(errs) > 0 {
		return errs
	}
	if actor.ID == id {
		return ErrSelfArchive
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CanArchiveUser(actor, user) {
		return NewPermissionError(actor.ID, id, "user", "archive", "not assigned teacher or admin")
	}
	if user.IsArchived {
		return NewConflictError("user", "archive state", id)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		user.IsArchived = true
		if err := tx.User().Update(ctx, user); err != nil {
			return fmt.Errorf("flag user archived: %w", err)
		}

		record, err := models.NewArchivedUserRecord(user, actor.ID, req.Reason)
		if err != nil {
			return err
		}
		if err := tx.ArchivedUser().Create(ctx, record); err != nil {
			return fmt.Errorf("write archive record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishUserEvent(ctx, events.UserArchived, user, actor.ID, req.Reason)
	s.logger.Info("user archived", "user_id", id, "archived_by", actor.ID)
	return nil
}

// Restore reverses an archive by flipping the flag and removing the archive
// record in one transaction. The live row stays as-is (last write wins); the
// snapshot is audit material, not the restored state.
func (s *userService) Restore(ctx context.Context, actor *models.User, id string) (*models.User, error) {
	if !auth.CanRestoreUser(actor) {
		return nil, NewPermissionError(actor.ID, id, "user", "restore", "admin only")
	}

	if _, err := s.repo.ArchivedUser().GetByUserID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotArchived
		}
		return nil, fmt.Errorf("load archive record: %w", err)
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		user.IsArchived = false
		if err := tx.User().Update(ctx, user); err != nil {
			return fmt.Errorf("restore user: %w", err)
		}
		if err := tx.ArchivedUser().Delete(ctx, id); err != nil {
			return fmt.Errorf("remove archive record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishUserEvent(ctx, events.UserRestored, user, actor.ID, nil)
	s.logger.Info("user restored", "user_id", id, "restored_by", actor.ID)
	return user, nil
}

func (s *userService) ListArchived(ctx context.Context, actor *models.User, limit, offset int) (*ArchivedUserListResponse, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, NewPermissionError(actor.ID, "", "user", "list_archived", "admin only")
	}

	records, total, err := s.repo.ArchivedUser().List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list archived users: %w", err)
	}

	return &ArchivedUserListResponse{
		Users:      records,
		Pagination: Pagination{Total: total, Limit: limit, Offset: offset},
	}, nil
}

func (s *userService) MyStudents(ctx context.Context, actor *models.User, query UserListQuery) (*UserListResponse, error) {
	if actor.Role != models.RoleTeacher {
		return nil, NewPermissionError(actor.ID, "", "user", "list_students", "teachers only")
	}

	student := models.RoleStudent
	archived := false
	users, total, err := s.repo.User().List(ctx, repositories.UserFilters{
		Role:       &student,
		TeacherID:  &actor.ID,
		IsArchived: &archived,
		Search:     query.Search,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return &UserListResponse{
		Users:      users,
		Pagination: Pagination{Total: total, Limit: query.Limit, Offset: query.Offset},
	}, nil
}

// ResetPassword replaces the target's password with a generated temporary
// one, mailed to them and returned to the caller.
func (s *userService) ResetPassword(ctx context.Context, actor *models.User, id string) (string, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return "", err
	}
	if !auth.CanResetPassword(actor, user) {
		return "", NewPermissionError(actor.ID, id, "user", "reset_password", "not assigned teacher or admin")
	}

	tempPassword, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return "", err
	}

	user.Password = hash
	if err := s.repo.User().Update(ctx, user); err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}

	msg := mailer.PasswordResetMessage(user.DisplayName(), user.Email, tempPassword)
	if err := s.mail.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send reset email", "user_id", user.ID, "error", err)
	}

	s.logger.Info("password reset", "user_id", id, "reset_by", actor.ID)
	return tempPassword, nil
}

func (s *userService) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *userService) publishUserEvent(ctx context.Context, eventType string, user *models.User, actorID string, reason *string) {
	err := s.publisher.Publish(ctx, eventType, events.UserEvent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		ActorID:  actorID,
		Reason:   reason,
	})
	if err != nil {
		s.logger.Error("failed to publish user event", "event_type", eventType, "user_id", user.ID, "error", err)
	}
}

func actorID(actor *models.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}

// usernameForRole derives the username from the email local part when none
// was supplied: students land on @student.com, teachers on @teacher.com, and
// admins keep their email.
func usernameForRole(req *CreateUserRequest, role models.UserRole) string {
	if req.Username != nil && *req.Username != "" {
		return *req.Username
	}

	local := req.Email
	if at := strings.Index(req.Email, "@"); at > 0 {
		local = req.Email[:at]
	}

	switch role {
	case models.RoleStudent:
		return local + "@student.com"
	case models.RoleTeacher:
		return local + "@teacher.com"
	default:
		return req.Email
	}
}
