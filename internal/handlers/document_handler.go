package handlers

import (
	"net/http"

	"agrodocs_backend/internal/middleware"
	"agrodocs_backend/internal/services"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/internal/validator"
	"agrodocs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	*BaseHandler
	documentService services.DocumentService
	authMW          gin.HandlerFunc
	adminMW         gin.HandlerFunc
}

func NewDocumentHandler(v *validator.Validator, documentService services.DocumentService, authMW, adminMW gin.HandlerFunc) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(v),
		documentService: documentService,
		authMW:          authMW,
		adminMW:         adminMW,
	}
}

func (h *DocumentHandler) RegisterRoutes(api *gin.RouterGroup) {
	documents := api.Group("/documents")
	documents.Use(h.authMW)
	{
		documents.GET("", h.List)
		documents.GET("/highlighted", h.ListHighlighted)
		documents.GET("/:id", h.Get)
		documents.GET("/:id/download", h.Download)

		documents.POST("", h.adminMW, h.Upload)
		documents.PUT("/:id", h.adminMW, h.Update)
		documents.DELETE("/:id", h.adminMW, h.Delete)
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	var req dto.UploadDocumentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Missing file part in multipart form"))
		return
	}

	document, err := h.documentService.Upload(c.Request.Context(), h.GetDB(c), principal, &req, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

func (h *DocumentHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	documents, err := h.documentService.List(h.GetDB(c), principal, c.Query("category"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

func (h *DocumentHandler) ListHighlighted(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	documents, err := h.documentService.ListHighlighted(h.GetDB(c), principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	document, err := h.documentService.Get(h.GetDB(c), principal, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": document})
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	document, err := h.documentService.Update(c.Request.Context(), h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documentService.Delete(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// Download never streams bytes; it hands the client a time-limited URL that is
// backend-shaped the same whether files live on disk or in object storage.
func (h *DocumentHandler) Download(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	resp, err := h.documentService.Download(c.Request.Context(), h.GetDB(c), principal, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
