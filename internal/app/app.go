package app

import (
	"errors"
	"fmt"
	"time"

	"agrodocs_backend/internal/auth"
	"agrodocs_backend/internal/config"
	"agrodocs_backend/internal/handlers"
	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/middleware"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/internal/routes"
	"agrodocs_backend/internal/services"
	"agrodocs_backend/internal/storage"
	"agrodocs_backend/internal/validator"
	"agrodocs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	cfg := config.Load()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Env != "production")

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Category{},
		&models.Document{},
	); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ginRouter := SetupRouter(cfg, gormDB, redisClient)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the fully wired gin engine. Tests call it directly with
// their own database and redis client.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		BasePath:      cfg.Storage.BasePath,
		BaseURL:       cfg.Storage.BaseURL,
		SigningKey:    cfg.Storage.SigningKey,
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Endpoint:      cfg.Storage.Endpoint,
		RequireObject: cfg.Storage.Type == "object",
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	tokenManager, err := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	if err != nil {
		logger.Fatal("Failed to initialize token manager", "error", err)
	}

	serviceContainer := initializeServices(cfg, storageInstance, redisClient)
	appHandlers := initializeHandlers(cfg, serviceContainer, storageInstance, redisClient, tokenManager)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	return ginRouter
}

// ServiceContainer holds every constructed service plus the shared deps the
// handler layer also needs.
type ServiceContainer struct {
	AuthService     services.AuthService
	UserService     services.UserService
	PropertyService services.PropertyService
	CategoryService services.CategoryService
	DocumentService services.DocumentService
	FileService     services.FileService

	UserRepo       repositories.UserRepository
	Registry       repositories.RefreshTokenRegistry
	PrincipalCache *middleware.PrincipalCache
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, redisClient *redis.Client) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	propertyRepo := repositories.NewPropertyRepository()
	categoryRepo := repositories.NewCategoryRepository()
	documentRepo := repositories.NewDocumentRepository()
	registry := repositories.NewRefreshTokenRegistry(redisClient)

	principalCache := middleware.NewPrincipalCache(middleware.DefaultPrincipalTTL)

	urlTTL := time.Duration(cfg.App.DownloadURLTTL) * time.Minute
	fileService := services.NewFileService(storageInstance, urlTTL)

	userService := services.NewUserService(userRepo, registry, principalCache)
	propertyService := services.NewPropertyService(propertyRepo, categoryRepo, documentRepo, fileService)
	categoryService := services.NewCategoryService(categoryRepo, propertyRepo, documentRepo, fileService)
	documentService := services.NewDocumentService(documentRepo, categoryRepo, fileService)

	return &ServiceContainer{
		UserService:     userService,
		PropertyService: propertyService,
		CategoryService: categoryService,
		DocumentService: documentService,
		FileService:     fileService,
		UserRepo:        userRepo,
		Registry:        registry,
		PrincipalCache:  principalCache,
	}
}

func initializeHandlers(cfg *config.Config, container *ServiceContainer, storageInstance storage.Storage, redisClient *redis.Client, tokenManager *auth.TokenManager) *handlers.AppHandlers {
	customValidator := validator.New()

	authService := services.NewAuthService(container.UserRepo, container.Registry, tokenManager, cfg.App.DefaultProperty)
	container.AuthService = authService

	authMW := middleware.AuthMiddleware(tokenManager, container.UserRepo, container.PrincipalCache)
	adminMW := middleware.AdminMiddleware()

	var limiterMW gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.Limit, time.Duration(cfg.RateLimit.Window)*time.Second)
		limiterMW = limiter.Middleware()
	}

	cookies := handlers.CookieSettings{Secure: cfg.Server.Env == "production"}

	// The file handler streams signed local downloads only; with the object
	// backend active it serves health checks alone.
	localStorage, _ := storageInstance.(*storage.LocalStorage)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(customValidator, authService, cookies, authMW, limiterMW),
		UserHandler:     handlers.NewUserHandler(customValidator, container.UserService, authMW, adminMW),
		PropertyHandler: handlers.NewPropertyHandler(customValidator, container.PropertyService, authMW, adminMW),
		CategoryHandler: handlers.NewCategoryHandler(customValidator, container.CategoryService, authMW, adminMW),
		DocumentHandler: handlers.NewDocumentHandler(customValidator, container.DocumentService, authMW, adminMW),
		FileHandler:     handlers.NewFileHandler(customValidator, localStorage),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.App.FrontendOrigin))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.App.FirstAdminEmail
	adminPassword := cfg.App.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)
	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	hashed, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Name:         "Administrator",
		Email:        adminEmail,
		PasswordHash: hashed,
		Role:         models.UserRoleAdmin,
	}
	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", adminEmail)
	return nil
}
