package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/handlers"
	"github.com/wso2/customize-validation-api/internal/middleware"
	"github.com/wso2/customize-validation-api/internal/service"
)

// SetupRouter configures all API routes
func SetupRouter(
	cfg *config.Config,
	customizeService *service.CustomizeService,
	healthChecker handlers.HealthChecker,
	logger *logrus.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLogger(logger))

	if cfg.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(cfg.CORS))
	}

	// Health check and metrics stay outside authentication
	healthHandler := handlers.NewHealthHandler(healthChecker)
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	customizeHandler := handlers.NewCustomizeHandler(customizeService)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.Security.IsBasicAuthEnabled() {
		v1.Use(middleware.BasicAuthMiddleware(cfg.Security))
	}
	{
		customize := v1.Group("/customize")
		{
			customize.POST("/save", customizeHandler.Save)
			customize.POST("/validate", customizeHandler.Validate)
			customize.GET("/settings", customizeHandler.ListSettings)
			customize.GET("/settings/:settingId", customizeHandler.GetSetting)
			customize.GET("/changesets", customizeHandler.ListChangesets)
			customize.GET("/changesets/:changesetId", customizeHandler.GetChangeset)
		}
	}

	return router
}
