package api

import (
	"errors"
	"net/http"

	"dbmis/internal/app/handler/middleware"
	"dbmis/internal/app/repository"
	"dbmis/internal/app/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Repository *repository.Repository
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// @Summary Login
// @Description Check credentials, issue a JWT and set it as an httpOnly cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} object "status, token, user"
// @Failure 400 {object} object "status, message"
// @Failure 401 {object} object "status, message"
// @Failure 403 {object} object "status, message"
// @Router /api/auth/login [post]
func (h *AuthHandler) LoginAPI(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	token, user, claims, err := h.Repository.LoginUser(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, repository.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	case errors.Is(err, repository.ErrUserDisabled):
		respondError(c, http.StatusForbidden, "account is disabled")
		return
	case err != nil:
		respondServerError(c, err)
		return
	}

	c.SetCookie(middleware.TokenCookie, token, int(utils.TTL(claims).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"token":  token,
		"user":   user,
	})
}

// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} ds.User
// @Failure 404 {object} object "status, message"
// @Router /api/auth/me [get]
func (h *AuthHandler) MeAPI(c *gin.Context) {
	user, err := h.Repository.GetUserByID(c.Request.Context(), currentUserID(c))
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

// @Summary Change own password
// @Description Other sessions of the user are signed out, the current token stays valid
// @Tags auth
// @Accept json
// @Produce json
// @Param passwords body changePasswordRequest true "Old and new password"
// @Success 200 {object} object "status, message"
// @Failure 400 {object} object "status, message"
// @Failure 401 {object} object "status, message"
// @Failure 404 {object} object "status, message"
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePasswordAPI(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "old and new password are required")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Repository.GetUserByID(ctx, currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondServerError(c, err)
		return
	}
	if !user.CheckPassword(req.OldPassword) {
		respondError(c, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	if err := h.Repository.ChangePassword(ctx, user.ID, req.NewPassword); err != nil {
		respondServerError(c, err)
		return
	}
	// ChangePassword отзывает все токены пользователя, текущий возвращаем обратно
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.Repository.SaveSession(ctx, claims); err != nil {
			middleware.Logger(c).Warnf("error restoring current session: %v", err)
		}
	}
	respondMessage(c, http.StatusOK, "password changed", nil)
}

// @Summary Logout
// @Description Revoke the current token and clear the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} object "status, message"
// @Router /api/auth/logout [post]
func (h *AuthHandler) LogoutAPI(c *gin.Context) {
	if claims, ok := middleware.CurrentClaims(c); ok {
		if err := h.Repository.DeleteSession(c.Request.Context(), claims); err != nil {
			respondServerError(c, err)
			return
		}
	}
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	respondMessage(c, http.StatusOK, "logged out", nil)
}
