package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminedge/academy-cms/internal/storage"
	"github.com/luminedge/academy-cms/pkg/logger"
)

// allowed upload content types; the marketing site only serves images and PDFs
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

const maxUploadBytes = 10 << 20 // 10 MiB

// MediaHandler stores uploaded assets in object storage and hands out
// presigned URLs for the site to embed.
type MediaHandler struct {
	store *storage.MediaStorage
}

func NewMediaHandler(store *storage.MediaStorage) *MediaHandler {
	return &MediaHandler{store: store}
}

// Register routes under /media
func (h *MediaHandler) Register(rg *gin.RouterGroup) {
	m := rg.Group("/media")
	m.POST("/upload", h.Upload)
	m.GET("/url/*key", h.URL)
	m.DELETE("/*key", h.Delete)
}

func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	ct := fh.Header.Get("Content-Type")
	if !allowedMediaTypes[ct] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("content type %q not allowed", ct)})
		return
	}
	section := c.DefaultPostForm("section", "misc")
	key := fmt.Sprintf("%s/%d_%s", section, time.Now().UnixMilli(), path.Base(fh.Filename))

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()
	if err := h.store.Upload(c.Request.Context(), key, f, fh.Size, ct); err != nil {
		logger.Errorf("media upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func (h *MediaHandler) URL(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
		return
	}
	url, err := h.store.PresignedURL(c.Request.Context(), key, 1*time.Hour)
	if err != nil {
		logger.Errorf("presign failed for %q: %v", key, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "presign failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expiresIn": 3600})
}

func (h *MediaHandler) Delete(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
		return
	}
	if err := h.store.Delete(c.Request.Context(), key); err != nil {
		logger.Errorf("media delete failed for %q: %v", key, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
