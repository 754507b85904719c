package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterStatic hooks the SPA and the JSON 404 into gin's NoRoute.
func (h *Handler) RegisterStatic(router *gin.Engine) {
	router.NoRoute(h.NotFound)
}

// NotFound answers unknown /api routes with JSON and everything else with the SPA.
func (h *Handler) NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	if h.StaticDir == "" || path == "/api" || strings.HasPrefix(path, "/api/") ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "resource not found"})
		return
	}

	// Clean от "/" не даёт выйти за пределы StaticDir
	file := filepath.Join(h.StaticDir, filepath.FromSlash(filepath.Clean("/"+path)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(h.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		h.errorHandler(c, http.StatusNotFound, err)
		return
	}
	c.File(index)
}
