package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/fieldstack/auth-service/internal/httperr"
	"github.com/fieldstack/auth-service/internal/models"
	"github.com/fieldstack/auth-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Messages surfaced to callers. Wording is part of the API contract.
const (
	msgOTPSentLogin      = "An OTP has been sent to your email address to login."
	msgOTPSentAdminLogin = "An OTP has been sent to your email address for login."
	msgOTPSentRecover    = "An OTP has been sent to your email address to recover password."
	msgLoginSuccessful   = "Login Successful."
	msgLogoutSuccessful  = "Logout successful."
	msgPasswordChanged   = "Your password has been changed successfully"
	msgPasswordReset     = "Success! Your password has been updated securely."
)

// VerifyOTPResult is returned on successful OTP verification.
type VerifyOTPResult struct {
	Token                      *TokenPair
	Message                    string
	UserRole                   string
	IsFirstTimePasswordChanged bool
}

// AuthService orchestrates OTP issuance, verification, session token
// minting and password lifecycle operations.
type AuthService interface {
	// RequestLoginOTP issues a sign-in OTP for a known profile or creates
	// an inactive identity and issues a sign-up OTP. The returned message
	// never reveals whether the account was new.
	RequestLoginOTP(ctx context.Context, username string) (string, error)
	// RequestAdminLoginOTP verifies an admin/manager password and issues a
	// two-factor OTP.
	RequestAdminLoginOTP(ctx context.Context, username, password string) (string, error)
	VerifyOTP(ctx context.Context, username, code string) (*VerifyOTPResult, error)
	Logout(ctx context.Context, refreshToken, accessToken string) (string, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (string, error)
	ForgotPassword(ctx context.Context, username string) (string, error)
	ResetPassword(ctx context.Context, username, code, password string) (string, error)
}

type authService struct {
	store     repository.Store
	tokens    JWTService
	mail      *MailDispatcher
	logger    *zap.Logger
	otpExpiry time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(store repository.Store, tokens JWTService, mail *MailDispatcher, logger *zap.Logger, otpExpiry time.Duration) AuthService {
	return &authService{
		store:     store,
		tokens:    tokens,
		mail:      mail,
		logger:    logger,
		otpExpiry: otpExpiry,
		now:       time.Now,
	}
}

// generateOTP returns a 6-digit numeric code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashSecret(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

func secretMatches(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (s *authService) RequestLoginOTP(ctx context.Context, username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", s.normalize(err, "RequestLoginOTP", httperr.Internal("Something went wrong."))
	}
	if user != nil && user.IsStaff {
		return "", httperr.Conflict("Username is already reserved!")
	}

	code, err := generateOTP()
	if err != nil {
		return "", s.normalize(err, "RequestLoginOTP", httperr.Internal("Something went wrong."))
	}
	codeHash, err := hashSecret(code)
	if err != nil {
		return "", s.normalize(err, "RequestLoginOTP", httperr.Internal("Something went wrong."))
	}

	var otpType models.OTPType
	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		profile, err := tx.Profiles().FindByEmail(ctx, username)
		switch {
		case err == nil:
			if profile.Role.Name != models.RoleNormalUser && profile.Role.Name != models.RoleTechnician {
				return httperr.Unauthorized("You are not authorized to login from this service.")
			}
		case errors.Is(err, repository.ErrNotFound):
			profile, err = s.createIdentity(ctx, tx, username)
			if err != nil {
				return err
			}
		default:
			return err
		}

		if profile.IsActive {
			otpType = models.OTPTypeSignIn
		} else {
			otpType = models.OTPTypeSignUp
		}

		if err := tx.OTPs().DeleteForProfile(ctx, profile.ID); err != nil {
			return err
		}
		return tx.OTPs().Create(ctx, &models.OTPRecord{
			ProfileID: profile.ID,
			CodeHash:  codeHash,
			Type:      otpType,
			ExpiresAt: s.now().Add(s.otpExpiry),
		})
	})
	if err != nil {
		return "", s.normalize(err, "RequestLoginOTP", httperr.Internal("Something went wrong."))
	}

	event := EmailSignInOTP
	if otpType == models.OTPTypeSignUp {
		event = EmailSignUpOTP
	}
	s.dispatchOTP(event, username, code)

	return msgOTPSentLogin, nil
}

// createIdentity provisions a new inactive User and Profile with the
// NORMAL_USER role. The standing password starts as a random value the
// user has never seen; it only becomes meaningful after a password change.
func (s *authService) createIdentity(ctx context.Context, tx repository.Store, username string) (*models.Profile, error) {
	role, err := tx.Roles().FindByName(ctx, models.RoleNormalUser)
	if err != nil {
		return nil, err
	}

	passwordHash, err := hashSecret(uuid.NewString())
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        username,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := tx.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:   user.ID,
		Email:    username,
		RoleID:   role.ID,
		IsActive: false,
	}
	if err := tx.Profiles().Create(ctx, profile); err != nil {
		return nil, err
	}
	profile.User = *user
	profile.Role = *role
	return profile, nil
}

func (s *authService) RequestAdminLoginOTP(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	profile, err := s.checkAdminAccountStatus(ctx, username)
	if err != nil {
		return "", s.normalize(err, "RequestAdminLoginOTP", httperr.Unprocessable("Something went wrong."))
	}

	if !secretMatches(password, profile.User.PasswordHash) {
		return "", httperr.Unauthorized("Provided password is incorrect.")
	}

	code, err := generateOTP()
	if err != nil {
		return "", s.normalize(err, "RequestAdminLoginOTP", httperr.Unprocessable("Something went wrong."))
	}
	codeHash, err := hashSecret(code)
	if err != nil {
		return "", s.normalize(err, "RequestAdminLoginOTP", httperr.Unprocessable("Something went wrong."))
	}

	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.OTPs().DeleteForProfile(ctx, profile.ID); err != nil {
			return err
		}
		return tx.OTPs().Create(ctx, &models.OTPRecord{
			ProfileID: profile.ID,
			CodeHash:  codeHash,
			Type:      models.OTPTypeTwoFactor,
			ExpiresAt: s.now().Add(s.otpExpiry),
		})
	})
	if err != nil {
		return "", s.normalize(err, "RequestAdminLoginOTP", httperr.Unprocessable("Something went wrong."))
	}

	s.dispatchOTP(EmailSignInOTP, username, code)
	return msgOTPSentAdminLogin, nil
}

func (s *authService) VerifyOTP(ctx context.Context, username, code string) (*VerifyOTPResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	profile, err := s.store.Profiles().FindByEmail(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed login attempt: user not found", zap.String("username", username))
		return nil, httperr.NotFound("We cannot find this account in our database. Please register first.")
	}
	if err != nil {
		return nil, s.normalize(err, "VerifyOTP", httperr.Unprocessable("Something went wrong."))
	}

	isActivation := !profile.IsActive
	roleName := profile.Role.Name

	// Admins authenticate with their password first; the OTP is the second
	// factor.
	var otpType models.OTPType
	switch {
	case isActivation:
		otpType = models.OTPTypeSignUp
	case roleName == models.RoleAdmin:
		otpType = models.OTPTypeTwoFactor
	default:
		otpType = models.OTPTypeSignIn
	}

	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		record, err := s.checkOTP(ctx, tx, profile.ID, code, otpType)
		if err != nil {
			return err
		}
		record.Used = true
		if err := tx.OTPs().Update(ctx, record); err != nil {
			return err
		}
		if isActivation {
			profile.IsActive = true
			return tx.Profiles().Update(ctx, profile)
		}
		return nil
	})
	if err != nil {
		return nil, s.normalize(err, "VerifyOTP", httperr.Unprocessable("Something went wrong."))
	}

	pair, err := s.tokens.MintPair(&profile.User, roleName, profile.RoleID)
	if err != nil {
		return nil, s.normalize(err, "VerifyOTP", httperr.Unprocessable("Something went wrong. Please try again."))
	}

	s.logger.Info("user logged in",
		zap.String("username", username),
		zap.String("role", roleName))

	return &VerifyOTPResult{
		Token:                      pair,
		Message:                    msgLoginSuccessful,
		UserRole:                   roleName,
		IsFirstTimePasswordChanged: profile.User.IsFirstTimePasswordChanged,
	}, nil
}

// checkOTP applies the verification rule: code match, then expiry, then
// single use. The record is returned for the caller to consume or delete.
func (s *authService) checkOTP(ctx context.Context, tx repository.Store, profileID int64, code string, otpType models.OTPType) (*models.OTPRecord, error) {
	record, err := tx.OTPs().FindByProfileAndType(ctx, profileID, otpType)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, httperr.Unprocessable("Incorrect verification code.")
	}
	if err != nil {
		return nil, err
	}
	if !secretMatches(code, record.CodeHash) {
		return nil, httperr.Unprocessable("Incorrect verification code.")
	}
	if !record.ExpiresAt.After(s.now()) {
		return nil, httperr.Unprocessable("This Otp is expired. Please get a new OTP.")
	}
	if record.Used {
		return nil, httperr.Unprocessable("This Otp is already used.")
	}
	return record, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken, accessToken string) (string, error) {
	if _, err := s.tokens.VerifyRefresh(refreshToken); err != nil {
		return "", httperr.Unprocessable("Token is not valid.")
	}

	if err := s.store.Blacklist().Add(ctx, refreshToken, accessToken); err != nil {
		return "", s.normalize(err, "Logout", httperr.Unprocessable("Something went wrong. Please try again."))
	}
	return msgLogoutSuccessful, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (string, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return "", s.normalize(err, "ChangePassword", httperr.Internal("Something went wrong. Please try again."))
	}

	if !secretMatches(oldPassword, user.PasswordHash) {
		return "", httperr.Unauthorized("Old password is incorrect")
	}
	if oldPassword == newPassword {
		return "", httperr.Unprocessable("New password cannot be same.")
	}

	passwordHash, err := hashSecret(newPassword)
	if err != nil {
		return "", s.normalize(err, "ChangePassword", httperr.Internal("Something went wrong. Please try again."))
	}
	user.PasswordHash = passwordHash
	user.IsFirstTimePasswordChanged = true
	if err := s.store.Users().Update(ctx, user); err != nil {
		return "", s.normalize(err, "ChangePassword", httperr.Internal("Something went wrong. Please try again."))
	}

	s.logger.Info("password changed", zap.String("username", user.Username))
	return msgPasswordChanged, nil
}

func (s *authService) ForgotPassword(ctx context.Context, username string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	profile, err := s.checkAdminAccountStatus(ctx, username)
	if err != nil {
		return "", s.normalize(err, "ForgotPassword", httperr.Unprocessable("Something went wrong."))
	}

	code, err := generateOTP()
	if err != nil {
		return "", s.normalize(err, "ForgotPassword", httperr.Unprocessable("Something went wrong."))
	}
	codeHash, err := hashSecret(code)
	if err != nil {
		return "", s.normalize(err, "ForgotPassword", httperr.Unprocessable("Something went wrong."))
	}

	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.OTPs().DeleteForProfile(ctx, profile.ID); err != nil {
			return err
		}
		return tx.OTPs().Create(ctx, &models.OTPRecord{
			ProfileID: profile.ID,
			CodeHash:  codeHash,
			Type:      models.OTPTypeForgotPassword,
			ExpiresAt: s.now().Add(s.otpExpiry),
		})
	})
	if err != nil {
		return "", s.normalize(err, "ForgotPassword", httperr.Unprocessable("Something went wrong."))
	}

	s.dispatchOTP(EmailForgotPassword, username, code)
	return msgOTPSentRecover, nil
}

func (s *authService) ResetPassword(ctx context.Context, username, code, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	profile, err := s.checkAdminAccountStatus(ctx, username)
	if err != nil {
		return "", s.normalize(err, "ResetPassword", httperr.Unprocessable("Something went wrong."))
	}

	passwordHash, err := hashSecret(password)
	if err != nil {
		return "", s.normalize(err, "ResetPassword", httperr.Unprocessable("Something went wrong."))
	}

	err = s.store.Atomically(ctx, func(tx repository.Store) error {
		record, err := s.checkOTP(ctx, tx, profile.ID, code, models.OTPTypeForgotPassword)
		if err != nil {
			return err
		}
		record.Used = true
		if err := tx.OTPs().Update(ctx, record); err != nil {
			return err
		}

		user := &profile.User
		user.PasswordHash = passwordHash
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		return tx.OTPs().Delete(ctx, record)
	})
	if err != nil {
		return "", s.normalize(err, "ResetPassword", httperr.Unprocessable("Something went wrong."))
	}

	return msgPasswordReset, nil
}

// checkAdminAccountStatus gates flows reserved for admin/manager accounts.
func (s *authService) checkAdminAccountStatus(ctx context.Context, username string) (*models.Profile, error) {
	profile, err := s.store.Profiles().FindByEmail(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, httperr.NotFound("We cannot find this account in our database.")
	}
	if err != nil {
		return nil, err
	}

	if !profile.IsActive {
		return nil, httperr.Unprocessable("Account is deactivated.")
	}
	if profile.Role.Name != models.RoleAdmin && profile.Role.Name != models.RoleManager {
		return nil, httperr.Unprocessable("You are not authorized to use this service.")
	}
	return profile, nil
}

func (s *authService) dispatchOTP(event EmailEvent, username, code string) {
	s.mail.Enqueue(event, username, MailData{
		Name:          username,
		OTP:           code,
		ExpiryMinutes: int(s.otpExpiry.Minutes()),
	})
}

// normalize passes typed boundary errors through unchanged and replaces
// anything unexpected with a generic message after logging it with context.
func (s *authService) normalize(err error, operation string, generic *httperr.Error) error {
	if he, ok := httperr.From(err); ok {
		return he
	}
	s.logger.Error("unexpected error",
		zap.String("operation", operation),
		zap.Error(err))
	return generic
}
