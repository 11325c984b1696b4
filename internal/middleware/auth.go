// Package middleware provides HTTP middleware for the auth service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/fieldstack/auth-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by Authenticate for downstream handlers and gates.
const (
	CtxAuthenticated = "authenticated"
	CtxUserID        = "user_id"
	CtxUserEmail     = "user_email"
	CtxRoleID        = "role_id"
	CtxRoleName      = "role_name"
	CtxProfileID     = "profile_id"
)

// Authenticate resolves the bearer token on every request.
//
// A blacklisted token is rejected outright. A missing or invalid token is
// not an error here: the request continues unauthenticated and the
// RequireAuth gate on protected routes turns that into a 401.
func Authenticate(tokens service.JWTService, blacklist repository.BlacklistRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		blacklisted, err := blacklist.Contains(c.Request.Context(), token)
		if err != nil {
			logger.Error("blacklist check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Something went wrong."})
			return
		}
		if blacklisted {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token is expired."})
			return
		}

		claims, err := tokens.VerifyAccess(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(CtxAuthenticated, true)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxRoleID, claims.RoleID)
		c.Set(CtxRoleName, claims.RoleName)
		c.Next()
	}
}

// RequireAuth aborts unauthenticated requests on protected routes.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxAuthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required."})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
