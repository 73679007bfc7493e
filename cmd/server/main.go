package main

import (
	"log"

	"order_tracker/internal/config"
	"order_tracker/internal/database"
	"order_tracker/internal/dates"
	"order_tracker/internal/export"
	"order_tracker/internal/handlers"
	"order_tracker/internal/logger"
	"order_tracker/internal/metrics"
	"order_tracker/internal/migrations"
	"order_tracker/internal/pricing"
	"order_tracker/internal/redis"
	"order_tracker/internal/repository"
	"order_tracker/internal/services"
	"order_tracker/pkg/source"
	"order_tracker/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	reg := metrics.NewRegistry()

	// Lookup audit log is optional
	var lookupLogs repository.LookupLogRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Initialize(cfg.DatabaseURL, cfg.DatabaseOptions())
		if err != nil {
			zlog.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.Close(db)
		if err := migrations.RunMigrations(db, false); err != nil {
			zlog.Fatal("Failed to migrate database", zap.Error(err))
		}
		lookupLogs = repository.NewLookupLogRepository(db)
	} else {
		zlog.Info("DATABASE_URL not set, keeping the lookup audit log in memory")
		lookupLogs = repository.NewMemoryLookupLogRepository(repository.DefaultMemoryLogCapacity)
	}

	// Last input lives in Redis when configured, in memory otherwise
	var lastInputStore services.LastInputStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL, cfg.StorageKey)
		if err != nil {
			zlog.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		lastInputStore = redisClient
	} else {
		zlog.Info("REDIS_URL not set, keeping last inputs in memory")
		lastInputStore = redis.NewMemoryStore()
	}

	var sender services.MessageSender
	if cfg.WhatsAppGatewayEnabled() {
		sender = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath, cfg.HTTPTimeoutDuration())
	}

	// Upstream sources
	httpClient := source.NewClient(cfg.HTTPTimeoutDuration())
	sheetSource := source.NewSheet(httpClient, cfg.CSVURL)
	pricingSource := source.NewPricing(httpClient, cfg.PricesURL, cfg.PromoURL)

	// Initialize services
	loc := cfg.Location()
	trackerService := services.NewTrackerService(sheetSource, pricingSource, pricing.NewCalculator(), dates.NewFormatter(loc), lookupLogs, reg)
	backupService := services.NewBackupService(pricingSource, sender, reg)
	lastInputService := services.NewLastInputService(lastInputStore, cfg.LastInputTTLDuration())
	auditService := services.NewAuditService(lookupLogs, loc)

	trackerHandler := handlers.NewTrackerHandler(trackerService, backupService, lastInputService, auditService, export.NewExporter(loc), services.NewSession(cfg.ResultTTLDuration()))

	// Setup routes
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware())
	trackerHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	// Start server
	zlog.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("time_zone", loc.String()))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}
