package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ContextRequestID = "request_id"
	RequestIDHeader  = "X-Request-ID"
)

// RequireRole пропускает только перечисленные роли; ставится после AuthMiddleware
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	message := "insufficient privileges"
	if len(allowedRoles) == 1 {
		message = allowedRoles[0] + " privileges required"
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range allowedRoles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": message})
	}
}

// RequestLogger tags every request with an id and logs it once it is served.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := Logger(c).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// Logger returns a logrus entry carrying the request id and, once authenticated, the user.
func Logger(c *gin.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if id := c.GetString(ContextRequestID); id != "" {
		fields["request_id"] = id
	}
	if user := c.GetString(ContextUsername); user != "" {
		fields["user"] = user
	}
	return logrus.WithFields(fields)
}
