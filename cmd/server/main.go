package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wso2/customize-validation-api/internal/config"
	"github.com/wso2/customize-validation-api/internal/dao"
	"github.com/wso2/customize-validation-api/internal/database"
	extensionclient "github.com/wso2/customize-validation-api/internal/extension-client"
	"github.com/wso2/customize-validation-api/internal/hooks"
	"github.com/wso2/customize-validation-api/internal/metrics"
	"github.com/wso2/customize-validation-api/internal/router"
	"github.com/wso2/customize-validation-api/internal/service"
	"github.com/wso2/customize-validation-api/internal/settings"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Set Gin to release mode by default (can be overridden by GIN_MODE env var)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Customize Validation API Server...")

	// Load configuration; an empty path searches ./configs, ../configs and the working directory
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	configureLogger(logger, cfg.Logging)

	logger.WithFields(logrus.Fields{
		"config_path":       configPath,
		"log_level":         logger.GetLevel().String(),
		"presentation_mode": cfg.Validation.PresentationMode,
		"setting_count":     len(cfg.Settings),
	}).Info("Configuration loaded successfully")

	// Build the setting registry before touching the database so bad definitions fail fast
	registry, err := settings.NewRegistryFromConfig(cfg.Settings, nil)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build setting registry")
	}

	// Initialize database
	db, err := database.Initialize(&cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to prepare database schema")
	}
	db.LogStats()

	logger.Info("Database connection established successfully")

	// Initialize DAOs
	settingValueDAO := dao.NewSettingValueDAO(db)
	changesetDAO := dao.NewChangesetDAO(db)

	// Save response filters
	filters := hooks.NewRegistry(logger)
	service.RegisterDefaultFilters(filters)

	if cfg.ServiceExtension.Enabled {
		extensionClient := extensionclient.NewExtensionClient(&cfg.ServiceExtension, logger)
		extensionClient.Register(filters)
		logger.WithField("base_url", cfg.ServiceExtension.BaseURL).Info("Extension client initialized")
	}

	customizeService := service.NewCustomizeService(
		registry,
		settingValueDAO,
		changesetDAO,
		db,
		filters,
		logger,
		service.WithMetrics(metrics.NewMetrics()),
		service.WithInvalidValueMessage(cfg.Validation.GetInvalidValueMessage()),
		service.WithPresentationMode(cfg.Validation.PresentationMode),
	)

	logger.Info("Services initialized successfully")

	// Setup router
	ginRouter := router.SetupRouter(cfg, customizeService, db, logger)

	// Configure HTTP server
	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        ginRouter,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("Server is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited gracefully")
}

// configureLogger applies level, format and output from configuration
func configureLogger(logger *logrus.Logger, cfg config.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.WithError(err).Warn("Failed to open log file, logging to stdout")
			return
		}
		logger.SetOutput(f)
	}
}
