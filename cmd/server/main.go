package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/SergeySenin/user-service/internal/auth"
	"github.com/SergeySenin/user-service/internal/avatar"
	"github.com/SergeySenin/user-service/internal/cache"
	"github.com/SergeySenin/user-service/internal/config"
	"github.com/SergeySenin/user-service/internal/database"
	"github.com/SergeySenin/user-service/internal/handlers"
	"github.com/SergeySenin/user-service/internal/logger"
	"github.com/SergeySenin/user-service/internal/metrics"
	"github.com/SergeySenin/user-service/internal/middleware"
	"github.com/SergeySenin/user-service/internal/repository"
	"github.com/SergeySenin/user-service/internal/storage"
	"github.com/SergeySenin/user-service/internal/telemetry"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log.Println("=== User service starting ===")

	if len(cfg.JWTSecret) == 0 {
		log.Fatalf("JWT_SECRET environment variable is required")
	}

	// Initialize database
	if err := database.Initialize(cfg.Database); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize object storage
	s3Client, err := storage.NewS3Client(context.Background(), cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 client: %v", err)
	}

	if err := s3Client.CheckBucketAccess(context.Background()); err != nil {
		log.Printf("Warning: S3 bucket access failed: %v", err)
		log.Println("Continuing without verified storage - avatar uploads will fail")
	}

	// Optional Redis-backed presign cache
	var presignCache *cache.PresignCache
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password)
		if err != nil {
			log.Printf("Warning: Redis unavailable, presigned URLs will not be cached: %v", err)
		} else {
			defer redisClient.Close()
			presignCache = cache.NewPresignCache(redisClient, cfg.S3.PresignExpiry)
		}
	}

	// Optional OTLP tracing
	tracerProvider, err := telemetry.InitTracer(cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	}
	if tracerProvider != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracerProvider.Shutdown(ctx)
		}()
	}

	m := metrics.Initialize()
	s3Client.SetMetrics(m)

	// Wire the avatar pipeline
	userRepo := repository.NewUserRepository(database.DB)
	countryRepo := repository.NewCountryRepository(database.DB)

	avatarService := avatar.NewService(userRepo, s3Client, avatar.NewImageResizer(), cfg.Avatar)
	avatarService.SetPresignCache(presignCache)
	avatarService.SetMetrics(m)

	authService := auth.NewService(cfg.JWTSecret)
	h := handlers.NewHandlers(userRepo, countryRepo, avatarService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if tracerProvider != nil {
		r.Use(otelgin.Middleware("user-service"))
	}

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "user-service",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		countries := api.Group("/countries")
		{
			countries.GET("", h.ListCountries)
			countries.GET("/:countryId", h.GetCountry)
		}

		users := api.Group("/users")
		{
			users.POST("", authService.Middleware(), h.CreateUser)
			users.GET("/:userId", authService.Middleware(), h.GetUser)
			users.PUT("/:userId", authService.Middleware(), h.UpdateUser)

			avatars := users.Group("/:userId/avatar")
			{
				avatars.Use(authService.Middleware())
				avatars.POST("", h.UploadAvatar)
				avatars.GET("", h.GetAvatar)
				avatars.DELETE("", h.DeleteAvatar)
			}
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("🚀 User service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
