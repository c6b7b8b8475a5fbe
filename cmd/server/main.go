package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/config"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/database"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/handlers"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/middleware"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/models"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/realtime"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/routes"
	"github.com/Eugene-maposa/gweru-link-ups-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting Gweru Link-Ups backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Connect()
	database.InitRedis()

	logger.Info().Msg("Running database migrations...")
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	logger.Info().Msg("Database migrations complete")

	// Live sync: hub carries session interests, fan-out bridges the store
	// change feed onto it.
	hub := realtime.NewHub()
	handlers.ChatHub = hub
	fanout := realtime.NewFanout(hub, database.Events)
	fanout.Start()
	defer fanout.Stop()
	defer hub.Close()

	r := gin.New()
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.GeneralRateLimit())

	api := r.Group("/api")
	{
		routes.RegisterJobRoutes(api)
		routes.RegisterChatRoutes(api)
	}

	r.GET("/ws", handlers.ChatSocket)

	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" || (redisStatus != "ok" && redisStatus != "not configured") {
			status = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status": status,
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
