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

type CategoryHandler struct {
	*BaseHandler
	categoryService services.CategoryService
	authMW          gin.HandlerFunc
	adminMW         gin.HandlerFunc
}

func NewCategoryHandler(v *validator.Validator, categoryService services.CategoryService, authMW, adminMW gin.HandlerFunc) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     NewBaseHandler(v),
		categoryService: categoryService,
		authMW:          authMW,
		adminMW:         adminMW,
	}
}

func (h *CategoryHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.PUT("/categories-order", h.authMW, h.adminMW, h.Reorder)

	categories := api.Group("/categories")
	categories.Use(h.authMW)
	{
		categories.GET("", h.List)
		categories.GET("/:id", h.Get)

		categories.POST("", h.adminMW, h.Create)
		categories.PUT("/:id", h.adminMW, h.Update)
		categories.DELETE("/:id", h.adminMW, h.Delete)
	}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *CategoryHandler) List(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	categories, err := h.categoryService.List(h.GetDB(c), principal, c.Query("property"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}

	category, err := h.categoryService.Get(h.GetDB(c), principal, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CategoryHandler) Reorder(c *gin.Context) {
	var req dto.ReorderCategoriesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.categoryService.Reorder(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Categories reordered"})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
