package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fieldstack/auth-service/internal/httperr"
	"github.com/fieldstack/auth-service/internal/middleware"
	"github.com/fieldstack/auth-service/internal/models"
	"github.com/fieldstack/auth-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// =============================================================================
// Mocks
// =============================================================================

type mockAuthService struct {
	requestLoginOTPFunc      func(ctx context.Context, username string) (string, error)
	requestAdminLoginOTPFunc func(ctx context.Context, username, password string) (string, error)
	verifyOTPFunc            func(ctx context.Context, username, code string) (*service.VerifyOTPResult, error)
	logoutFunc               func(ctx context.Context, refreshToken, accessToken string) (string, error)
	changePasswordFunc       func(ctx context.Context, userID int64, oldPassword, newPassword string) (string, error)
	forgotPasswordFunc       func(ctx context.Context, username string) (string, error)
	resetPasswordFunc        func(ctx context.Context, username, code, password string) (string, error)
}

func (m *mockAuthService) RequestLoginOTP(ctx context.Context, username string) (string, error) {
	return m.requestLoginOTPFunc(ctx, username)
}

func (m *mockAuthService) RequestAdminLoginOTP(ctx context.Context, username, password string) (string, error) {
	return m.requestAdminLoginOTPFunc(ctx, username, password)
}

func (m *mockAuthService) VerifyOTP(ctx context.Context, username, code string) (*service.VerifyOTPResult, error) {
	return m.verifyOTPFunc(ctx, username, code)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken, accessToken string) (string, error) {
	return m.logoutFunc(ctx, refreshToken, accessToken)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (string, error) {
	return m.changePasswordFunc(ctx, userID, oldPassword, newPassword)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, username string) (string, error) {
	return m.forgotPasswordFunc(ctx, username)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, username, code, password string) (string, error) {
	return m.resetPasswordFunc(ctx, username, code, password)
}

// =============================================================================
// Test Helpers
// =============================================================================

func postJSON(t *testing.T, handler gin.HandlerFunc, body string, setup ...func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	for _, fn := range setup {
		fn(c)
	}
	handler(c)
	return w
}

func expectDetail(t *testing.T, w *httptest.ResponseRecorder, status int, detail string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d, body = %s", w.Code, status, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp["detail"] != detail {
		t.Errorf("detail = %q, want %q", resp["detail"], detail)
	}
}

// =============================================================================
// RequestOTP Tests
// =============================================================================

func TestRequestOTP_Success(t *testing.T) {
	svc := &mockAuthService{
		requestLoginOTPFunc: func(ctx context.Context, username string) (string, error) {
			if username != "user@example.com" {
				t.Errorf("username = %q, want user@example.com", username)
			}
			return "An OTP has been sent to your email address to login.", nil
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	w := postJSON(t, h.RequestOTP, `{"username": "user@example.com"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "An OTP has been sent to your email address to login.") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRequestOTP_ValidationMessages(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"missing username", `{}`, "Username is required."},
		{"bad email", `{"username": "not-an-email"}`, "Username must be a valid email address."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.RequestOTP, tt.body)
			expectDetail(t, w, http.StatusUnprocessableEntity, tt.detail)
		})
	}
}

func TestRequestOTP_ServiceErrorPassedThrough(t *testing.T) {
	svc := &mockAuthService{
		requestLoginOTPFunc: func(ctx context.Context, username string) (string, error) {
			return "", httperr.Conflict("Username is already reserved!")
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	w := postJSON(t, h.RequestOTP, `{"username": "admin@example.com"}`)
	expectDetail(t, w, http.StatusConflict, "Username is already reserved!")
}

// =============================================================================
// RequestAdminOTP Tests
// =============================================================================

func TestRequestAdminOTP_PasswordLengthValidation(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	w := postJSON(t, h.RequestAdminOTP, `{"username": "admin@example.com", "password": "short"}`)
	expectDetail(t, w, http.StatusUnprocessableEntity, "Password should have at least 8 characters.")
}

func TestRequestAdminOTP_WrongPassword(t *testing.T) {
	svc := &mockAuthService{
		requestAdminLoginOTPFunc: func(ctx context.Context, username, password string) (string, error) {
			return "", httperr.Unauthorized("Provided password is incorrect.")
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	w := postJSON(t, h.RequestAdminOTP, `{"username": "admin@example.com", "password": "wrongpass123"}`)
	expectDetail(t, w, http.StatusUnauthorized, "Provided password is incorrect.")
}

// =============================================================================
// VerifyOTP Tests
// =============================================================================

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockAuthService{
		verifyOTPFunc: func(ctx context.Context, username, code string) (*service.VerifyOTPResult, error) {
			return &service.VerifyOTPResult{
				Token:                      &service.TokenPair{Access: "acc", Refresh: "ref"},
				Message:                    "Login Successful.",
				UserRole:                   models.RoleNormalUser,
				IsFirstTimePasswordChanged: true,
			}, nil
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	w := postJSON(t, h.VerifyOTP, `{"username": "user@example.com", "otp": "123456"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"token"`
		Message                    string `json:"message"`
		UserRole                   string `json:"user_role"`
		IsFirstTimePasswordChanged bool   `json:"is_first_time_password_changed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Token.Access != "acc" || resp.Token.Refresh != "ref" {
		t.Errorf("token = %+v", resp.Token)
	}
	if resp.UserRole != models.RoleNormalUser {
		t.Errorf("user_role = %q", resp.UserRole)
	}
	if !resp.IsFirstTimePasswordChanged {
		t.Error("is_first_time_password_changed should be true")
	}
}

func TestVerifyOTP_CodeValidation(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"non numeric", `{"username": "user@example.com", "otp": "12a456"}`, "In OTP, enter numbers only."},
		{"wrong length", `{"username": "user@example.com", "otp": "1234"}`, "OTP must be 6 characters."},
		{"missing", `{"username": "user@example.com"}`, "OTP is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.VerifyOTP, tt.body)
			expectDetail(t, w, http.StatusUnprocessableEntity, tt.detail)
		})
	}
}

// =============================================================================
// Logout Tests
// =============================================================================

func TestLogout_PassesBothTokens(t *testing.T) {
	svc := &mockAuthService{
		logoutFunc: func(ctx context.Context, refreshToken, accessToken string) (string, error) {
			if refreshToken != "the-refresh" {
				t.Errorf("refresh = %q, want the-refresh", refreshToken)
			}
			if accessToken != "the-access" {
				t.Errorf("access = %q, want the-access", accessToken)
			}
			return "Logout successful.", nil
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	w := postJSON(t, h.Logout, `{"refresh_token": "the-refresh"}`, func(c *gin.Context) {
		c.Request.Header.Set("Authorization", "Bearer the-access")
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
}

func TestLogout_InvalidToken(t *testing.T) {
	svc := &mockAuthService{
		logoutFunc: func(ctx context.Context, refreshToken, accessToken string) (string, error) {
			return "", httperr.Unprocessable("Token is not valid.")
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	w := postJSON(t, h.Logout, `{"refresh_token": "expired"}`)
	expectDetail(t, w, http.StatusUnprocessableEntity, "Token is not valid.")
}

// =============================================================================
// ChangePassword Tests
// =============================================================================

func TestChangePassword_UsesAuthenticatedUserID(t *testing.T) {
	svc := &mockAuthService{
		changePasswordFunc: func(ctx context.Context, userID int64, oldPassword, newPassword string) (string, error) {
			if userID != 42 {
				t.Errorf("userID = %d, want 42", userID)
			}
			return "Your password has been changed successfully", nil
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	body := `{"old_password": "oldpass123", "password": "newpass456", "confirm_password": "newpass456"}`
	w := postJSON(t, h.ChangePassword, body, func(c *gin.Context) {
		c.Set(middleware.CtxUserID, int64(42))
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
}

func TestChangePassword_ConfirmMismatch(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	body := `{"old_password": "oldpass123", "password": "newpass456", "confirm_password": "different1"}`
	w := postJSON(t, h.ChangePassword, body)
	expectDetail(t, w, http.StatusUnprocessableEntity, "Password does not match with confirm password")
}

func TestChangePassword_NonAlphanumericPassword(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, zap.NewNop())

	body := `{"old_password": "oldpass123", "password": "newpass-456", "confirm_password": "newpass-456"}`
	w := postJSON(t, h.ChangePassword, body)
	expectDetail(t, w, http.StatusUnprocessableEntity, "Password must be alphanumeric.")
}

// =============================================================================
// ResetPassword Tests
// =============================================================================

func TestResetPassword_Success(t *testing.T) {
	svc := &mockAuthService{
		resetPasswordFunc: func(ctx context.Context, username, code, password string) (string, error) {
			if code != "123456" {
				t.Errorf("code = %q, want 123456", code)
			}
			return "Success! Your password has been updated securely.", nil
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	body := `{"username": "admin@example.com", "otp": "123456", "password": "newpass456", "confirm_password": "newpass456"}`
	w := postJSON(t, h.ResetPassword, body)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200, body = %s", w.Code, w.Body.String())
	}
}

func TestResetPassword_UnexpectedErrorIsGeneric(t *testing.T) {
	svc := &mockAuthService{
		resetPasswordFunc: func(ctx context.Context, username, code, password string) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	h := NewAuthHandler(svc, zap.NewNop())

	body := `{"username": "admin@example.com", "otp": "123456", "password": "newpass456", "confirm_password": "newpass456"}`
	w := postJSON(t, h.ResetPassword, body)
	expectDetail(t, w, http.StatusUnprocessableEntity, "Something went wrong.")
}

// =============================================================================
// Field Label Tests
// =============================================================================

func TestFieldLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Username", "Username"},
		{"OTP", "OTP"},
		{"OldPassword", "Old Password"},
		{"ConfirmPassword", "Confirm Password"},
	}
	for _, tt := range tests {
		if got := fieldLabel(tt.in); got != tt.want {
			t.Errorf("fieldLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
