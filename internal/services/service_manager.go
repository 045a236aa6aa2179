package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/events"
	"github.com/itechs-edu/exam-service/internal/mailer"
	"github.com/itechs-edu/exam-service/internal/repositories"
	"github.com/itechs-edu/exam-service/internal/validator"
)

// serviceManager wires the services to their shared dependencies and owns
// their lifecycle.
type serviceManager struct {
	repo      repositories.Repository
	tokens    *auth.TokenService
	publisher events.EventPublisher
	mail      mailer.Mailer
	logger    *slog.Logger
	validator *validator.Validator

	authService   AuthService
	userService   UserService
	examService   ExamService
	reportService ReportService

	initialized bool
	mu          sync.RWMutex
}

func NewServiceManager(repo repositories.Repository, tokens *auth.TokenService, publisher events.EventPublisher, mail mailer.Mailer, logger *slog.Logger, v *validator.Validator) ServiceManager {
	return &serviceManager{
		repo:      repo,
		tokens:    tokens,
		publisher: publisher,
		mail:      mail,
		logger:    logger,
		validator: v,
	}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.tokens, sm.mail, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.publisher, sm.mail, sm.logger, sm.validator)
	sm.examService = NewExamService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.reportService = NewReportService(sm.examService, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("service manager initialized")
	return nil
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Exam() ExamService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.examService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.logger.Info("shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("failed to close event publisher", "error", err)
	}
	if err := sm.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}

	sm.initialized = false
	return nil
}
