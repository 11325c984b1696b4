package service

import (
	"errors"
	"time"

	"github.com/fieldstack/auth-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims represents JWT token claims. Role name and role id ride along so
// the access guard can authorize without a user lookup.
type Claims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	RoleID    int64  `json:"role_id"`
	RoleName  string `json:"role_name"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the session token pair returned on successful verification.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTService defines JWT token operations.
type JWTService interface {
	MintPair(user *models.User, roleName string, roleID int64) (*TokenPair, error)
	// VerifyAccess validates signature, expiry and token type for a bearer
	// access token.
	VerifyAccess(tokenString string) (*Claims, error)
	// VerifyRefresh validates signature, expiry and token type for a
	// refresh token presented at logout.
	VerifyRefresh(tokenString string) (*Claims, error)
}

type jwtService struct {
	secret        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

// NewJWTService creates a new JWTService instance.
func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) JWTService {
	return &jwtService{
		secret:        secret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

func (s *jwtService) MintPair(user *models.User, roleName string, roleID int64) (*TokenPair, error) {
	access, err := s.generateToken(user, roleName, roleID, tokenTypeAccess, s.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, roleName, roleID, tokenTypeRefresh, s.refreshExpiry)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *jwtService) generateToken(user *models.User, roleName string, roleID int64, tokenType string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		RoleID:    roleID,
		RoleName:  roleName,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *jwtService) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(tokenString, tokenTypeAccess)
}

func (s *jwtService) VerifyRefresh(tokenString string) (*Claims, error) {
	return s.verify(tokenString, tokenTypeRefresh)
}

func (s *jwtService) verify(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != expectedType {
		return nil, errors.New("unexpected token type")
	}
	return claims, nil
}
