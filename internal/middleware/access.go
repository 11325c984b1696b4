package middleware

import (
	"errors"
	"net/http"

	"github.com/fieldstack/auth-service/internal/models"
	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/mileusna/useragent"
)

// mobileOnlyRoles must present a mobile user agent on gated operations.
var mobileOnlyRoles = map[string]bool{
	models.RoleTechnician:               true,
	models.RoleFieldRelationshipManager: true,
}

// RequireService gates an operation behind the caller role's permitted
// service set. The code name is the operation's declared identifier, the
// same one the registration routine reconciles into the services table.
func RequireService(codeName string, roles repository.RoleRepository, profiles repository.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName := c.GetString(CtxRoleName)

		role, err := roles.FindByName(c.Request.Context(), roleName)
		if errors.Is(err, repository.ErrNotFound) {
			// Should not happen for a valid token; defensive.
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Role not found."})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Something went wrong."})
			return
		}

		allowed, err := roles.HasActiveService(c.Request.Context(), role.ID, codeName)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Something went wrong."})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "This service is not accessible."})
			return
		}

		if !resolveProfile(c, profiles) {
			return
		}
		if !enforceDevicePolicy(c) {
			return
		}
		c.Next()
	}
}

// resolveProfile loads the acting identity's active profile and records it
// in the request context for downstream use.
func resolveProfile(c *gin.Context, profiles repository.ProfileRepository) bool {
	email := c.GetString(CtxUserEmail)
	if email == "" {
		return true
	}

	profile, err := profiles.FindActiveByEmail(c.Request.Context(), email)
	if errors.Is(err, repository.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "We can't find an account for that email address."})
		return false
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Something went wrong."})
		return false
	}

	c.Set(CtxProfileID, profile.ID)
	c.Set(CtxRoleName, profile.Role.Name)
	return true
}

// enforceDevicePolicy rejects mobile-only roles presenting a non-mobile
// user agent. An unparseable user agent is treated as non-mobile.
func enforceDevicePolicy(c *gin.Context) bool {
	roleName := c.GetString(CtxRoleName)
	if !mobileOnlyRoles[roleName] {
		return true
	}

	ua := useragent.Parse(c.GetHeader("User-Agent"))
	if !ua.Mobile && !ua.Tablet {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Access restricted to mobile devices only."})
		return false
	}
	return true
}
