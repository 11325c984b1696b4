// Package routes defines HTTP routes for the auth service.
package routes

import (
	"github.com/fieldstack/auth-service/internal/config"
	"github.com/fieldstack/auth-service/internal/handlers"
	"github.com/fieldstack/auth-service/internal/middleware"
	"github.com/fieldstack/auth-service/internal/registry"
	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/fieldstack/auth-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Setup configures all HTTP routes for the application.
func Setup(
	router *gin.Engine,
	cfg *config.Config,
	store repository.Store,
	tokens service.JWTService,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	logger *zap.Logger,
) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))
	router.Use(middleware.RequestLogger(store.APILogs(), logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.Authenticate(tokens, store.Blacklist(), logger))

	router.GET("/health", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/authenticate-user-otp", authHandler.RequestOTP)
		auth.POST("/authenticate-admin-user", authHandler.RequestAdminOTP)
		auth.POST("/verify-otp", authHandler.VerifyOTP)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		protected := auth.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/change-password",
				middleware.RequireService(registry.ServiceChangePassword, store.Roles(), store.Profiles()),
				authHandler.ChangePassword)
		}
	}
}
