package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/services"
	"github.com/itechs-edu/exam-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.userService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "user created", "user_id", resp.User.ID, "created_by", actor.ID)
	h.Success(c, http.StatusCreated, "User created", resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	query := services.UserListQuery{
		Search:   c.Query("search"),
		Archived: c.Query("archived") == "true",
	}
	query.Limit, query.Offset = paginationParams(c)

	if roleParam := c.Query("role"); roleParam != "" {
		role := models.UserRole(roleParam)
		if !role.Valid() {
			h.Error(c, http.StatusBadRequest, "Unknown role filter", nil)
			return
		}
		query.Role = &role
	}

	resp, err := h.userService.List(c.Request.Context(), actor, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", resp)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "User updated", user)
}

// ArchiveUser soft-deletes an account. DELETE on a user never removes the
// row; restore undoes it.
func (h *UserHandler) ArchiveUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req services.ArchiveUserRequest
	if c.Request.ContentLength > 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	if err := h.userService.Archive(c.Request.Context(), actor, c.Param("id"), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "User archived", nil)
}

func (h *UserHandler) RestoreUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	user, err := h.userService.Restore(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "User restored", user)
}

func (h *UserHandler) ListArchivedUsers(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	limit, offset := paginationParams(c)
	resp, err := h.userService.ListArchived(c.Request.Context(), actor, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", resp)
}

// MyStudents lists the calling teacher's assigned students.
func (h *UserHandler) MyStudents(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	query := services.UserListQuery{Search: c.Query("search")}
	query.Limit, query.Offset = paginationParams(c)

	resp, err := h.userService.MyStudents(c.Request.Context(), actor, query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "", resp)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		h.Error(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	temp, err := h.userService.ResetPassword(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.Success(c, http.StatusOK, "Password reset", gin.H{"temporaryPassword": temp})
}

// paginationParams reads limit/offset with sane bounds.
func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
