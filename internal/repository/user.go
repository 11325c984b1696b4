// Package repository provides the data access layer for the auth service.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldstack/auth-service/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested row does not exist. Callers
// translate it into the boundary error appropriate for their flow.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for credential-identity operations.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, err)
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id %d: %w", id, err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user id %d: %w", user.ID, err)
	}
	return nil
}

// ProfileRepository defines the interface for profile operations.
// Email lookups are case-insensitive, matching the login flows.
type ProfileRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindActiveByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository instance.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.findByEmail(ctx, email, false)
}

func (r *profileRepository) FindActiveByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.findByEmail(ctx, email, true)
}

func (r *profileRepository) findByEmail(ctx context.Context, email string, activeOnly bool) (*models.Profile, error) {
	var profile models.Profile
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Role").
		Where("LOWER(profiles.email) = ?", strings.ToLower(email))
	if activeOnly {
		query = query.Where("profiles.is_active = ?", true)
	}
	err := query.First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by email %s: %w", email, err)
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update profile id %d: %w", profile.ID, err)
	}
	return nil
}
