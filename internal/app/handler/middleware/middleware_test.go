package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"dbmis/internal/app/ds"
	"dbmis/internal/app/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type stubTokens map[string]*ds.JWTClaims

func (s stubTokens) ParseToken(_ context.Context, token string) (*ds.JWTClaims, error) {
	if token == "broken-store" {
		return nil, errors.New("redis: connection refused")
	}
	claims, ok := s[token]
	if !ok {
		return nil, utils.ErrInvalidToken
	}
	return claims, nil
}

func newRouter() *gin.Engine {
	tokens := stubTokens{
		"admin-token": {UserID: 1, Username: "root", Role: ds.RoleAdmin},
		"user-token":  {UserID: 2, Username: "joe", Role: ds.RoleUser},
	}
	r := gin.New()
	r.Use(RequestLogger())
	g := r.Group("/", AuthMiddleware(tokens))
	g.GET("/whoami", func(c *gin.Context) {
		claims, _ := CurrentClaims(c)
		c.String(http.StatusOK, "%s:%d", c.GetString(ContextUsername), claims.UserID)
	})
	g.GET("/admin", RequireRole(ds.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r *gin.Engine, path string, setup func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	rec := serve(r, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication token required")

	rec = serve(r, "/whoami", func(req *http.Request) { req.Header.Set("Authorization", "Token user-token") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, "/whoami", bearer("forged"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")

	rec = serve(r, "/whoami", bearer("broken-store"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(r, "/whoami", bearer("user-token"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "joe:2", rec.Body.String())

	rec = serve(r, "/whoami", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "admin-token"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root:1", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	rec := serve(r, "/admin", bearer("user-token"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin privileges required")

	rec = serve(r, "/admin", bearer("admin-token"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestLogger_RequestID(t *testing.T) {
	r := newRouter()

	rec := serve(r, "/whoami", nil)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = serve(r, "/whoami", func(req *http.Request) { req.Header.Set(RequestIDHeader, "req-42") })
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}
