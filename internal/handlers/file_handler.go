package handlers

import (
	"io"
	"net/http"
	"strings"

	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/storage"
	"agrodocs_backend/internal/validator"
	"agrodocs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler serves signed local-storage downloads. When the object backend
// is active the presigned URLs point at the bucket and these routes see no
// traffic, but they stay registered so the URL shape is one thing to operate.
type FileHandler struct {
	*BaseHandler
	local *storage.LocalStorage
}

func NewFileHandler(v *validator.Validator, local *storage.LocalStorage) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(v),
		local:       local,
	}
}

func (h *FileHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	if h.local != nil {
		router.GET("/files/*path", h.Serve)
	}
}

func (h *FileHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Serve validates the URL signature before touching the disk. An expired or
// tampered signature gets 403 without revealing whether the path exists.
func (h *FileHandler) Serve(c *gin.Context) {
	relativePath := strings.TrimPrefix(c.Param("path"), "/")
	exp := c.Query("exp")
	sig := c.Query("sig")

	if !h.local.Signer().Verify(relativePath, exp, sig) {
		apperrors.HandleError(c, apperrors.NewForbiddenError("Download link is invalid or expired"))
		return
	}

	reader, err := h.local.Get(c.Request.Context(), relativePath)
	if err != nil {
		if apperrors.Is(err, storage.ErrObjectNotFound) {
			apperrors.HandleError(c, apperrors.ErrNotFound(err))
			return
		}
		h.HandleServiceError(c, apperrors.StorageError(err))
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", "attachment")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		logger.CtxWithError(c.Request.Context(), "failed to stream file", err, "path", relativePath)
	}
}
