package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"foodgram_backend/internal/storage"
	"foodgram_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler streams stored media. Only the local backend needs it; S3
// URLs point at the bucket directly.
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

func (h *FileHandler) RegisterRoutes(r gin.IRouter) {
	media := r.Group("/media")
	{
		media.GET("/*path", h.ServeFile)
		media.HEAD("/*path", h.ServeFile)
	}
}

// ServeFile streams a stored file by key.
func (h *FileHandler) ServeFile(c *gin.Context) {
	key, err := storage.CleanKey(strings.TrimPrefix(c.Param("path"), "/"))
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrNotFound(err))
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			apperrors.HandleError(c, apperrors.ErrNotFound(err))
			return
		}
		h.HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000")
	c.Header("ETag", fmt.Sprintf(`"%s"`, path.Base(key)))
	c.Header("Content-Disposition", "inline")
	c.Status(http.StatusOK)

	if c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// headers are already sent
		_ = c.Error(err)
	}
}
