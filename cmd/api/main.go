// Package main is the entry point for the auth service.
package main

import (
	"fmt"

	"github.com/fieldstack/auth-service/internal/config"
	"github.com/fieldstack/auth-service/internal/database"
	"github.com/fieldstack/auth-service/internal/handlers"
	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/fieldstack/auth-service/internal/routes"
	"github.com/fieldstack/auth-service/internal/service"
	"github.com/fieldstack/auth-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	store := repository.NewStore(db, redisClient)

	jwtService := service.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	mailer := service.NewSMTPMailer(service.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	dispatcher := service.NewMailDispatcher(mailer, logger, cfg.MailQueueSize)
	defer dispatcher.Close()

	authService := service.NewAuthService(store, jwtService, dispatcher, logger, cfg.OTPExpiry)

	authHandler := handlers.NewAuthHandler(authService, logger)
	healthHandler := handlers.NewHealthHandler()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	routes.Setup(router, cfg, store, jwtService, authHandler, healthHandler, logger)

	logger.Info("starting auth service", zap.String("port", cfg.Port))
	if err := router.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
