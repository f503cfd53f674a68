package routes

import (
	"agrodocs_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the versioned API plus the unversioned file and health
// endpoints.
func RegisterRoutes(router *gin.Engine, appHandlers *handlers.AppHandlers) {
	api := router.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.PropertyHandler.RegisterRoutes(api)
		appHandlers.CategoryHandler.RegisterRoutes(api)
		appHandlers.DocumentHandler.RegisterRoutes(api)
	}

	appHandlers.FileHandler.RegisterRoutes(router)
}
