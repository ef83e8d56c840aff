package routes

import (
	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/handlers"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts every HTTP route. serveMedia is false when files
// are served by an object store.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authenticator *middleware.Authenticator,
	policy *auth.Policy,
	serveMedia bool,
) {
	api := ginRouter.Group("/api")
	api.Use(authenticator.OptionalAuth())
	{
		appHandlers.AuthHandler.RegisterRoutes(api, policy)
		appHandlers.UserHandler.RegisterRoutes(api, policy)
		appHandlers.IngredientHandler.RegisterRoutes(api, policy)
		appHandlers.RecipeHandler.RegisterRoutes(api, policy)
	}

	appHandlers.RecipeHandler.RegisterShortLinks(ginRouter)
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if serveMedia {
		appHandlers.FileHandler.RegisterRoutes(ginRouter)
		logger.Info("Media route /media registered")
	}
}
