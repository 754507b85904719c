package api

import (
	"errors"
	"net/http"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/repository"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Repository *repository.Repository
}

type createUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Status     string `json:"status"`
}

type updateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Status     string `json:"status"`
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

// validRoleStatus: пустые значения допустимы, для них берутся значения по умолчанию
func validRoleStatus(c *gin.Context, role, status string) bool {
	if role != "" && !ds.ValidRole(role) {
		respondError(c, http.StatusBadRequest, "invalid role")
		return false
	}
	if status != "" && !ds.ValidStatus(status) {
		respondError(c, http.StatusBadRequest, "invalid status")
		return false
	}
	return true
}

// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} ds.User
// @Failure 403 {object} object "status, message"
// @Router /api/users [get]
func (h *UserHandler) GetUsersAPI(c *gin.Context) {
	users, err := h.Repository.ListUsers(c.Request.Context())
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, users)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} ds.User
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUserAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.Repository.GetUserByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body createUserRequest true "User"
// @Success 201 {object} object "status, message, data: {id}"
// @Failure 400 {object} object "status, message"
// @Failure 409 {object} object "status, message"
// @Router /api/users [post]
func (h *UserHandler) CreateUserAPI(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username, password and name are required")
		return
	}
	if !validRoleStatus(c, req.Role, req.Status) {
		return
	}

	user := &ds.User{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Email:      ds.NullableString(req.Email),
		Department: req.Department,
		Role:       req.Role,
		Status:     req.Status,
	}
	err := h.Repository.CreateUser(c.Request.Context(), user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		respondError(c, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, "user created", gin.H{"id": user.ID})
}

// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body updateUserRequest true "User"
// @Success 200 {object} ds.User
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Failure 409 {object} object "status, message"
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUserAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	ctx := c.Request.Context()

	if _, err := h.Repository.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondServerError(c, err)
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and name are required")
		return
	}
	if !validRoleStatus(c, req.Role, req.Status) {
		return
	}

	user, err := h.Repository.UpdateUser(ctx, id, repository.UserUpdate{
		Username:   req.Username,
		Name:       req.Name,
		Email:      ds.NullableString(req.Email),
		Department: req.Department,
		Role:       req.Role,
		Status:     req.Status,
	})
	switch {
	case errors.Is(err, repository.ErrAlreadyExists):
		respondError(c, http.StatusConflict, "username already exists")
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, "user not found")
	case err != nil:
		respondServerError(c, err)
	default:
		respondMessage(c, http.StatusOK, "user updated", user)
	}
}

// @Summary Reset password
// @Description Admin sets a new password; all sessions of the user are revoked
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param password body resetPasswordRequest true "New password"
// @Success 200 {object} object "status, message"
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/users/{id}/reset-password [post]
func (h *UserHandler) ResetPasswordAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "new password is required")
		return
	}

	err := h.Repository.ChangePassword(c.Request.Context(), id, req.NewPassword)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password reset", nil)
}

// @Summary Delete user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object "status, message"
// @Failure 400 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUserAPI(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == currentUserID(c) {
		respondError(c, http.StatusBadRequest, "cannot delete the current user")
		return
	}

	err := h.Repository.DeleteUser(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "user deleted", nil)
}
