package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayadmin/homestay-editor/internal/config"
	"github.com/stayadmin/homestay-editor/internal/database"
	"github.com/stayadmin/homestay-editor/internal/handlers"
	"github.com/stayadmin/homestay-editor/internal/middleware"
	"github.com/stayadmin/homestay-editor/internal/services"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting homestay admin API")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	homestayRepository := database.NewHomestayRepository(db)

	var publisher services.EventPublisher = services.NoopPublisher{}
	if cfg.Queue.Enabled {
		amqpPublisher := services.NewAMQPPublisher(cfg.Queue.URL, cfg.Queue.Queue, cfg.Queue.DialTimeout, logger)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.WithField("queue", cfg.Queue.Queue).Info("Publishing homestay events to RabbitMQ")
	}

	homestayService := services.NewHomestayService(homestayRepository, publisher, logger)
	homestayHandler := handlers.NewHomestayHandler(homestayService, logger)

	cronService := services.NewCronService(
		homestayRepository,
		cfg.Maintenance.PurgeSchedule,
		cfg.Maintenance.AvailabilityRetentionDays,
		logger,
	)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))

	api := router.Group("/api")
	homestayHandler.RegisterRoutes(api)
	api.POST("/maintenance/purge-availability", func(c *gin.Context) {
		purged, err := cronService.RunPurgeNow()
		if err != nil {
			logger.WithError(err).Error("Manual availability purge failed")
			c.JSON(http.StatusInternalServerError, handlers.ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to purge availability",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"purged": purged})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler reports database reachability
func healthCheckHandler(db database.Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

// browsers refuse credentialed responses for a wildcard origin
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
