package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeMaestro5/Khronos-api-sub001/internal/api/handlers"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/api/middleware"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/api/routes"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/domain/calendar"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/domain/content"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/infrastructure/cache"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/infrastructure/persistence/postgres/connection"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/infrastructure/persistence/postgres/migrations"
	"github.com/DeMaestro5/Khronos-api-sub001/pkg/config"
	"github.com/DeMaestro5/Khronos-api-sub001/pkg/logger"
	"github.com/DeMaestro5/Khronos-api-sub001/pkg/security/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("") // Empty string will make it search in default locations
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Set up Gin
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Type",
			"Authorization",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize Redis
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize rate limiter with Redis client
	rateLimiter := auth.NewRedisRateLimiter(redisClient.GetClient(), 1*time.Minute, 1000)

	// Audit logger for schedule mutations
	auditLogger := logrus.New()
	auditLogger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "production" {
		auditLogger.SetLevel(logrus.InfoLevel)
	} else {
		auditLogger.SetLevel(logrus.DebugLevel)
	}

	// Initialize repositories
	calendarRepo := calendar.NewRepository(db.DB)
	contentRepo := content.NewRepository(db.DB)

	// Initialize services
	scheduleService := calendar.NewService(calendarRepo, calendar.DefaultScoringConfig(), redisClient, log.Logger)

	// Initialize handlers
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, contentRepo, auditLogger)

	// Health check routes (no /api prefix as these are system endpoints)
	routes.SetupHealthRoutes(router, db.DB, redisClient)
	log.Info("Registered health check routes at /health, /health/ready and /health/cache")

	// Apply rate limiting middleware globally
	router.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Schedule routes (protected)
	scheduleRoutes := routes.NewScheduleRoutes(scheduleHandler, cfg.Auth.JWTSecret)
	scheduleRoutes.RegisterRoutes(router)
	log.Info("Registered schedule routes at /api/schedule")

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
