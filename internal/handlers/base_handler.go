package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/services"
	"github.com/itechs-edu/exam-service/internal/utils"
	"github.com/itechs-edu/exam-service/internal/validator"
)

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failures. Details only leaves the
// process outside release mode; Errors carries field-level validation
// failures.
type ErrorResponse struct {
	Status  string                      `json:"status"`
	Message string                      `json:"message"`
	Details string                      `json:"details,omitempty"`
	Errors  []validator.ValidationError `json:"errors,omitempty"`
}

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, msg string, err error, args ...any) {
	utils.FromContext(c, h.logger).Error(msg, append([]any{"error", err}, args...)...)
}

func (h *BaseHandler) Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{Status: "success", Message: message, Data: data})
}

func (h *BaseHandler) Error(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Status: "error", Message: message}
	if err != nil && gin.IsDebugging() {
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

// BindJSON decodes the body and answers the 400 itself on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.Error(c, http.StatusBadRequest, "Invalid request payload", err)
		return false
	}
	return true
}

// handleServiceError maps service errors onto HTTP statuses and the error
// envelope.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "Validation failed",
			Errors:  validationErrs,
		})
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		h.Error(c, http.StatusForbidden, "You do not have permission to perform this action", err)
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		h.Error(c, http.StatusConflict, conflictErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrExamNotFound):
		h.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		h.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrAccountArchived):
		h.Error(c, http.StatusUnauthorized, "This account has been archived", nil)
	case errors.Is(err, services.ErrNotArchived):
		h.Error(c, http.StatusConflict, err.Error(), nil)
	// OTP failures are request errors, not token failures.
	case errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrAlreadyEnrolled),
		errors.Is(err, services.ErrExamHasScores),
		errors.Is(err, services.ErrSelfArchive),
		errors.Is(err, services.ErrExamInactive),
		errors.Is(err, services.ErrStudentsOnly):
		h.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.LogError(c, "unhandled service error", err)
		h.Error(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// currentUser returns the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
