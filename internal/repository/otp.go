package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldstack/auth-service/internal/models"
	"gorm.io/gorm"
)

// OTPRepository defines the interface for the one-time-credential ledger.
type OTPRepository interface {
	// FindByProfileAndType returns the live record for a profile and flow
	// type. At most one exists per profile by invariant.
	FindByProfileAndType(ctx context.Context, profileID int64, otpType models.OTPType) (*models.OTPRecord, error)
	DeleteForProfile(ctx context.Context, profileID int64) error
	Create(ctx context.Context, record *models.OTPRecord) error
	Update(ctx context.Context, record *models.OTPRecord) error
	Delete(ctx context.Context, record *models.OTPRecord) error
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTPRepository instance.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) FindByProfileAndType(ctx context.Context, profileID int64, otpType models.OTPType) (*models.OTPRecord, error) {
	var record models.OTPRecord
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND type = ?", profileID, otpType).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find otp for profile %d: %w", profileID, err)
	}
	return &record, nil
}

func (r *otpRepository) DeleteForProfile(ctx context.Context, profileID int64) error {
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Delete(&models.OTPRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete otp records for profile %d: %w", profileID, err)
	}
	return nil
}

func (r *otpRepository) Create(ctx context.Context, record *models.OTPRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create otp record: %w", err)
	}
	return nil
}

func (r *otpRepository) Update(ctx context.Context, record *models.OTPRecord) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("failed to update otp record %d: %w", record.ID, err)
	}
	return nil
}

func (r *otpRepository) Delete(ctx context.Context, record *models.OTPRecord) error {
	if err := r.db.WithContext(ctx).Delete(record).Error; err != nil {
		return fmt.Errorf("failed to delete otp record %d: %w", record.ID, err)
	}
	return nil
}
