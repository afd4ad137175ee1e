package covers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Cache *Cache
}

func NewHandler(cache *Cache) *Handler {
	return &Handler{Cache: cache}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/covers/:filename", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	name := c.Param("filename")
	// the cache only ever writes flat .jpg files
	if name != filepath.Base(name) || strings.Contains(name, "..") || !strings.HasSuffix(name, ".jpg") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cover name"})
		return
	}
	path := filepath.Join(h.Cache.Dir, name)
	c.File(path)
}
