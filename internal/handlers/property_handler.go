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

type PropertyHandler struct {
	*BaseHandler
	propertyService services.PropertyService
	authMW          gin.HandlerFunc
	adminMW         gin.HandlerFunc
}

func NewPropertyHandler(v *validator.Validator, propertyService services.PropertyService, authMW, adminMW gin.HandlerFunc) *PropertyHandler {
	return &PropertyHandler{
		BaseHandler:     NewBaseHandler(v),
		propertyService: propertyService,
		authMW:          authMW,
		adminMW:         adminMW,
	}
}

func (h *PropertyHandler) RegisterRoutes(api *gin.RouterGroup) {
	properties := api.Group("/properties")
	properties.Use(h.authMW)
	{
		properties.GET("", h.List)
		properties.GET("/:id", h.Get)

		properties.POST("", h.adminMW, h.Create)
		properties.PUT("/:id", h.adminMW, h.Update)
		properties.DELETE("/:id", h.adminMW, h.Delete)
	}
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req dto.CreatePropertyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"property": property})
}

func (h *PropertyHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	properties, err := h.propertyService.List(h.GetDB(c), principal)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

func (h *PropertyHandler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	property, err := h.propertyService.Get(h.GetDB(c), principal, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

func (h *PropertyHandler) Update(c *gin.Context) {
	var req dto.UpdatePropertyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": property})
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.propertyService.Delete(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}
