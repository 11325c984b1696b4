// Package handlers contains HTTP request handlers for the auth service.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fieldstack/auth-service/internal/httperr"
	"github.com/fieldstack/auth-service/internal/middleware"
	"github.com/fieldstack/auth-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthHandler handles authentication HTTP requests.
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// OTPLoginRequest requests a login or sign-up OTP.
type OTPLoginRequest struct {
	Username string `json:"username" binding:"required,email,max=255"`
}

// AdminLoginRequest requests a two-factor OTP after a password check.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=15"`
}

// VerifyOTPRequest submits an OTP for verification.
type VerifyOTPRequest struct {
	Username string `json:"username" binding:"required,email,max=255"`
	OTP      string `json:"otp" binding:"required,len=6,numeric"`
}

// LogoutRequest carries the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest changes a logged-in user's password.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	Password        string `json:"password" binding:"required,min=8,max=15,alphanum"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// ForgotPasswordRequest starts the admin password-recovery flow.
type ForgotPasswordRequest struct {
	Username string `json:"username" binding:"required,email,max=255"`
}

// ResetPasswordRequest completes password recovery with an OTP.
type ResetPasswordRequest struct {
	Username        string `json:"username" binding:"required,email,max=255"`
	OTP             string `json:"otp" binding:"required,len=6,numeric"`
	Password        string `json:"password" binding:"required,min=8,max=15,alphanum"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// RequestOTP handles POST /auth/authenticate-user-otp.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req OTPLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	message, err := h.authService.RequestLoginOTP(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// RequestAdminOTP handles POST /auth/authenticate-admin-user.
func (h *AuthHandler) RequestAdminOTP(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	message, err := h.authService.RequestAdminLoginOTP(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// VerifyOTP handles POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.authService.VerifyOTP(c.Request.Context(), req.Username, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":                          result.Token,
		"message":                        result.Message,
		"user_role":                      result.UserRole,
		"is_first_time_password_changed": result.IsFirstTimePasswordChanged,
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	message, err := h.authService.Logout(c.Request.Context(), req.RefreshToken, extractToken(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ChangePassword handles POST /auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID := c.GetInt64(middleware.CtxUserID)
	message, err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	message, err := h.authService.ForgotPassword(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	message, err := h.authService.ResetPassword(c.Request.Context(), req.Username, req.OTP, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// respondError renders a typed boundary error, or a generic 422 when the
// error carries no taxonomy entry. Internal detail never reaches the body.
func respondError(c *gin.Context, err error) {
	if he, ok := httperr.From(err); ok {
		c.JSON(he.Status, gin.H{"detail": he.Detail})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Something went wrong."})
}

// respondValidationError converts binding failures into the 422 messages
// the API contract promises, before any side effect has occurred.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetail(err)})
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body."
	}

	fe := verrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "numeric":
		return fmt.Sprintf("In %s, enter numbers only.", field)
	case "len":
		return fmt.Sprintf("%s must be %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s should have at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds character limit.", field)
	case "alphanum":
		return fmt.Sprintf("%s must be alphanumeric.", field)
	case "eqfield":
		return "Password does not match with confirm password"
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

// fieldLabel turns a struct field name into the label used in messages,
// e.g. ConfirmPassword -> "Confirm Password", OTP -> "OTP".
func fieldLabel(name string) string {
	if name == "OTP" {
		return "OTP"
	}
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if parts := strings.Split(bearerToken, " "); len(parts) == 2 {
		return parts[1]
	}
	return ""
}
