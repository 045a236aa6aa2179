package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/services"
	"github.com/itechs-edu/exam-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	userService services.UserService
}

func NewAuthHandler(authService services.AuthService, userService services.UserService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		userService: userService,
	}
}

// Register creates an account through the same role gate as user create.
func (h *AuthHandler) Register(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}

	resp, err := h.userService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "user registered", "user_id", resp.User.ID)
	h.Success(c, http.StatusCreated, "Registration successful", resp.User)
}

// Login authenticates with username and password. Teachers get an OTP
// challenge instead of a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if result.RequiresOTP {
		h.Success(c, http.StatusOK, "OTP sent to your email", result)
		return
	}
	h.Success(c, http.StatusOK, "Login successful", result)
}

// VerifyOTP completes a teacher login.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req services.VerifyOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.authService.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Login successful", resp)
}

// RequestOTP issues a fresh passcode. The response is identical whether or
// not the email belongs to a teacher account.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req services.RequestOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.authService.RequestOTP(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "If the account exists, a new OTP has been sent", nil)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Profile updated", updated)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.ID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// RefreshToken reissues a token for the authenticated user.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	token, err := h.authService.RefreshToken(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Token refreshed", gin.H{"token": token})
}

// Logout is stateless: tokens expire on their own and clients drop theirs.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Success(c, http.StatusOK, "Logged out successfully", nil)
}
