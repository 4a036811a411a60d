package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/sundaiclub/pitch-service/config"
	"github.com/sundaiclub/pitch-service/internal/dto"
	"github.com/sundaiclub/pitch-service/internal/handler"
	"github.com/sundaiclub/pitch-service/internal/middleware"
	"github.com/sundaiclub/pitch-service/internal/repository"
	"github.com/sundaiclub/pitch-service/internal/service"
	"github.com/sundaiclub/pitch-service/internal/ws"
	"github.com/sundaiclub/pitch-service/pkg/database"
	"github.com/sundaiclub/pitch-service/pkg/logger"
	"github.com/sundaiclub/pitch-service/pkg/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		// Fan-out is best effort; the queue itself works without it.
		zlog.Warn("rabbitmq unavailable, continuing without fan-out", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	queueRepo := repository.NewQueueRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)

	// Services
	queueSvc := service.NewQueueService(queueRepo, eventRepo, projectRepo, publisher, zlog)
	eventSvc := service.NewEventService(eventRepo, memberRepo, publisher, zlog)

	// Live update hub
	hub := ws.NewHub()
	go hub.Run()

	// Echo
	e := echo.New()
	e.Validator = dto.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zlog.Info("request", zap.String("method", v.Method), zap.String("uri", v.URI), zap.Int("status", v.Status))
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "pitch-service"})
	})

	api := e.Group("/api/v1", middleware.Auth(cfg.JWTSecret, memberRepo))
	handler.NewEventHandler(eventSvc).RegisterRoutes(api)
	handler.NewQueueHandler(queueSvc, hub).RegisterRoutes(api)

	// WebSocket auth happens at upgrade via the same group middleware
	api.GET("/events/:id/queue/ws", ws.Handler(hub))

	zlog.Info("pitch service starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
