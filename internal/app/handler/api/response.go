package api

import (
	"net/http"
	"strconv"

	"dbmis/internal/app/handler/middleware"
	"dbmis/internal/app/query"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

func respondData(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": statusSuccess, "data": data})
}

func respondMessage(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{"status": statusSuccess, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func respondPage(c *gin.Context, data interface{}, page query.Page, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"data":   data,
		"pagination": gin.H{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
		},
	})
}

func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": statusError, "message": message})
}

// respondServerError логирует причину, а клиенту отдаёт общее сообщение
func respondServerError(c *gin.Context, err error) {
	middleware.Logger(c).WithField("path", c.Request.URL.Path).Error(err)
	respondError(c, http.StatusInternalServerError, "server error")
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt returns 0 for absent or malformed values, which disables the filter.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func currentUserID(c *gin.Context) int {
	if claims, ok := middleware.CurrentClaims(c); ok {
		return claims.UserID
	}
	return 0
}
