package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
	ContextClaims   = "claims"

	TokenCookie = "jwt"
)

type TokenParser interface {
	ParseToken(ctx context.Context, token string) (*ds.JWTClaims, error)
}

// AuthMiddleware - проверка JWT из header или куки, сохранение claims в контексте
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "authentication token required"})
			return
		}

		claims, err := tokens.ParseToken(c.Request.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, utils.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "invalid or expired token"})
				return
			}
			Logger(c).Errorf("token check failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "server error"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentClaims returns the claims stored by AuthMiddleware.
func CurrentClaims(c *gin.Context) (*ds.JWTClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*ds.JWTClaims)
	return claims, ok
}
