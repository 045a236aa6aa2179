package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
	"github.com/itechs-edu/exam-service/internal/services"
	"github.com/itechs-edu/exam-service/internal/utils"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestHandleServiceErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(testLogger())

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid otp", services.ErrInvalidOTP, http.StatusBadRequest},
		{"expired otp", services.ErrOTPExpired, http.StatusBadRequest},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"archived account", services.ErrAccountArchived, http.StatusUnauthorized},
		{"unknown user", services.ErrUserNotFound, http.StatusNotFound},
		{"unknown exam", services.ErrExamNotFound, http.StatusNotFound},
		{"duplicate enrollment", services.ErrAlreadyEnrolled, http.StatusBadRequest},
		{"exam has scores", services.ErrExamHasScores, http.StatusBadRequest},
		{"self archive", services.ErrSelfArchive, http.StatusBadRequest},
		{"not archived", services.ErrNotArchived, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

			h.handleServiceError(c, tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// stubUserRepo backs the auth middleware tests with a fixed account map.
type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (s *stubUserRepo) Delete(ctx context.Context, id string) error         { return nil }

func (s *stubUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (s *stubUserRepo) SetOTP(ctx context.Context, id string, code string, expiry time.Time) error {
	return nil
}

func (s *stubUserRepo) ClearOTP(ctx context.Context, id string) error { return nil }

func TestAuthenticateGatesProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	admin := &models.User{
		ID:       "u1",
		Username: "admin@example.com",
		Email:    "admin@example.com",
		Role:     models.RoleSuperAdmin,
	}
	repo := &stubUserRepo{users: map[string]*models.User{admin.ID: admin}}
	am := NewAuthMiddleware(tokens, repo)

	router := gin.New()
	router.POST("/api/auth/register", am.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	// No token: the account-creation surface stays closed.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/register", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous register status = %d, want 401", w.Code)
	}

	// Valid token passes.
	token, err := tokens.Issue(admin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authenticated register status = %d, want 201", w.Code)
	}

	// A valid token for an archived account is rejected.
	admin.IsArchived = true
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("archived account status = %d, want 401", w.Code)
	}
}
