package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/config"
	"foodgram_backend/internal/database"
	"foodgram_backend/internal/handlers"
	"foodgram_backend/internal/imageprocessor"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/middleware"
	"foodgram_backend/internal/repositories"
	"foodgram_backend/internal/routes"
	"foodgram_backend/internal/services"
	"foodgram_backend/internal/storage"
	"foodgram_backend/internal/validator"
	"foodgram_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	logger.Init(cfg.Server.Env, cfg.Logging.Level)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	defer sqlDB.Close()
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
		logger.Info("Database migrated")
	}

	ctx := context.Background()
	if err := seedCatalog(ctx, gormDB, cfg.Catalog.FixturePath); err != nil {
		logger.Fatal("Failed to seed ingredient catalog", "error", err)
	}

	ginRouter, err := SetupRouter(ctx, cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server shutdown complete")
}

// SetupRouter wires storage, services and handlers into a gin engine.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, error) {
	apperrors.SetDebug(cfg.Server.DebugErrors)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	storageInstance, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", storageInstance.Backend())

	revoked, err := initializeRevocationStore(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	policy, err := auth.NewPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to load access policy: %w", err)
	}
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	// 1. Services
	serviceContainer := initializeServices(cfg, storageInstance, tokens, revoked, policy)

	// 2. Handlers
	appHandlers := initializeHandlers(cfg, serviceContainer, storageInstance)

	// 3. Gin
	ginRouter := initializeGinRouter(cfg, gormDB)

	// 4. Routes
	routes.RegisterRoutes(ginRouter, appHandlers, middleware.NewAuthenticator(tokens, revoked), policy, storageInstance.Backend() == "local")

	return ginRouter, nil
}

// initializeRevocationStore uses Redis when configured and falls back to
// process memory otherwise.
func initializeRevocationStore(ctx context.Context, cfg config.RedisConfig) (auth.RevocationStore, error) {
	if cfg.Addr == "" {
		logger.Warn("Redis is not configured; revoked tokens are kept in memory")
		return auth.NewMemoryRevocationStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Redis connected", "addr", cfg.Addr)
	return auth.NewRedisRevocationStore(client), nil
}

func initializeServices(
	cfg *config.Config,
	storageInstance storage.Storage,
	tokens *auth.TokenManager,
	revoked auth.RevocationStore,
	policy *auth.Policy,
) *services.ServiceContainer {
	// --- Repositories ---
	userRepo := repositories.NewUserRepository()
	ingredientRepo := repositories.NewIngredientRepository()
	recipeRepo := repositories.NewRecipeRepository()
	membershipRepo := repositories.NewMembershipRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()

	// --- Services ---
	processor := imageprocessor.NewProcessor(cfg.Upload.MaxImageBytes, cfg.Upload.MaxImageDimension, cfg.Upload.MaxImagePixels, cfg.Upload.ImageQuality)
	uploadService := services.NewUploadService(storageInstance, processor)

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, tokens, revoked),
		UserService:         services.NewUserService(userRepo, subscriptionRepo, uploadService),
		SubscriptionService: services.NewSubscriptionService(subscriptionRepo, userRepo, recipeRepo, uploadService),
		IngredientService:   services.NewIngredientService(ingredientRepo),
		RecipeService:       services.NewRecipeService(recipeRepo, ingredientRepo, membershipRepo, subscriptionRepo, uploadService, policy),
		MembershipService:   services.NewMembershipService(membershipRepo, recipeRepo, uploadService, policy),
		ShoppingListService: services.NewShoppingListService(membershipRepo, userRepo, time.Now),
		UploadService:       uploadService,
	}
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer, storageInstance storage.Storage) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	var loginLimiter gin.HandlerFunc
	if !cfg.RateLimit.Disabled {
		loginLimiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window).Middleware()
	}

	return &handlers.AppHandlers{
		AuthHandler:       handlers.NewAuthHandler(baseHandler, svc.AuthService, loginLimiter),
		UserHandler:       handlers.NewUserHandler(baseHandler, svc.UserService, svc.SubscriptionService),
		IngredientHandler: handlers.NewIngredientHandler(baseHandler, svc.IngredientService),
		RecipeHandler:     handlers.NewRecipeHandler(baseHandler, svc.RecipeService, svc.MembershipService, svc.ShoppingListService, cfg.Server.BaseURL),
		FileHandler:       handlers.NewFileHandler(baseHandler, storageInstance),
		HealthHandler:     handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}
