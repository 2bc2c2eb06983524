package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/leadcrm/config"
	"github.com/jordanlanch/leadcrm/pkg/api/handlers"
	custommw "github.com/jordanlanch/leadcrm/pkg/api/middleware"
	"github.com/jordanlanch/leadcrm/pkg/auth"
	"github.com/jordanlanch/leadcrm/pkg/cache"
	"github.com/jordanlanch/leadcrm/pkg/database"
	"github.com/jordanlanch/leadcrm/pkg/export"
	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/lifecycle"
	"github.com/jordanlanch/leadcrm/pkg/logger"
	"github.com/jordanlanch/leadcrm/pkg/metrics"
	custommiddleware "github.com/jordanlanch/leadcrm/pkg/middleware"
	"github.com/jordanlanch/leadcrm/pkg/reporting"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel)
	appLog.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// Sentry error tracking (optional)
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			appLog.Warn("failed to initialize sentry", "error", err)
		} else {
			appLog.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		appLog.Info("sentry disabled, no DSN configured")
	}

	// MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		if err := database.Disconnect(context.Background(), db); err != nil {
			appLog.Error("mongodb disconnect failed", "error", err)
		}
	}()

	leadStore := leads.NewMongoStore(db)
	userStore := users.NewMongoStore(db)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := leadStore.EnsureIndexes(idxCtx); err != nil {
		log.Fatalf("failed to ensure lead indexes: %v", err)
	}
	if err := userStore.EnsureIndexes(idxCtx); err != nil {
		log.Fatalf("failed to ensure user indexes: %v", err)
	}
	idxCancel()
	appLog.Info("mongodb connected", "database", cfg.MongoDatabase)

	// Redis (token blacklist)
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)

	// Services
	leadService := leads.NewService(leadStore)
	lifecycleService := lifecycle.NewService(leadStore)
	reportingService := reporting.NewService(leadStore)
	exportService := export.NewService(leadStore, userStore)

	// Handlers
	authHandler := handlers.NewAuthHandler(userStore, cfg, tokenBlacklist)
	leadHandler := handlers.NewLeadHandler(leadService, lifecycleService, userStore)
	adminHandler := handlers.NewAdminHandler(lifecycleService, exportService, userStore)
	statsHandler := handlers.NewStatsHandler(reportingService, userStore)
	fieldsHandler := handlers.NewFieldsHandler()

	// Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLog.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.Middleware())

	// Public endpoints
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		if err := db.Client().Ping(ctx, nil); err != nil {
			dbStatus = "down"
		}
		redisStatus := "up"
		if _, err := redisClient.Exists(ctx, "health_check"); err != nil {
			redisStatus = "down"
		}

		code := http.StatusOK
		health := "healthy"
		if dbStatus == "down" || redisStatus == "down" {
			code = http.StatusServiceUnavailable
			health = "unhealthy"
		}
		return c.JSON(code, map[string]any{
			"status":   health,
			"database": dbStatus,
			"redis":    redisStatus,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
	})

	// Authentication (public, tighter rate limits on credential endpoints)
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register, authRateLimiter.Middleware())
		authRoutes.POST("/login", authHandler.Login, authRateLimiter.Middleware())
		authRoutes.GET("/me", authHandler.Me, custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, userStore))
		authRoutes.POST("/logout", authHandler.Logout, custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, userStore))
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist, userStore))
	{
		leadsGroup := protected.Group("/leads")
		{
			leadsGroup.POST("", leadHandler.Create)
			leadsGroup.GET("", leadHandler.List)
			leadsGroup.GET("/stats", statsHandler.Get) // must precede /:id
			leadsGroup.GET("/:id", leadHandler.Get)
			leadsGroup.GET("/:id/history", leadHandler.History)
			leadsGroup.PUT("/:id", leadHandler.Update)
			leadsGroup.DELETE("/:id", leadHandler.Delete)
		}

		fieldsGroup := protected.Group("/fields")
		{
			fieldsGroup.GET("", fieldsHandler.Types)
			fieldsGroup.GET("/:applicationType", fieldsHandler.Get)
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(custommw.RequireAdmin())
		{
			adminGroup.PUT("/leads/:id/status", adminHandler.UpdateStatus)
			adminGroup.GET("/leads/export", adminHandler.Export)
		}
	}

	// Start server with graceful shutdown
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	appLog.Info("starting server", "address", address,
		"rate_limit_per_minute", cfg.RateLimitRequestsPerMinute,
		"jwt_expiration_hours", cfg.JWTExpirationHours)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	appLog.Info("server stopped")
}
