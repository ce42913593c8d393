package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/handlers"
	"github.com/NightSight1044/legalCRM1/logger"
	"github.com/NightSight1044/legalCRM1/middleware"
	"github.com/NightSight1044/legalCRM1/services"
	"github.com/NightSight1044/legalCRM1/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if _, flush, err := logger.Install(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	} else {
		defer flush()
	}

	if err := config.ValidateSessionSecret(cfg.SessionSecret, cfg.Environment); err != nil {
		zap.L().Fatal("invalid session secret", zap.Error(err))
	}

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		zap.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		zap.L().Fatal("failed to run migrations", zap.Error(err))
	}

	if err := services.SeedFirmFromEnv(context.Background(), db.DB); err != nil {
		zap.L().Fatal("failed to seed firm", zap.Error(err))
	}

	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echomiddleware.BodyLimit("12M"))
	e.Use(middleware.RequestLogger())
	e.Use(handlers.ConfigMiddleware(cfg))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	handlers.RegisterRoutes(e)

	// Background jobs
	scheduler, err := jobs.StartScheduler(db.DB, cfg)
	if err != nil {
		zap.L().Fatal("failed to start scheduler", zap.Error(err))
	}

	// Start server
	go func() {
		zap.L().Info("server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
}
