package repository

import (
	"context"
	"fmt"

	"github.com/fieldstack/auth-service/internal/models"
	"gorm.io/gorm"
)

// APILogRepository persists request/response log lines.
type APILogRepository interface {
	Create(ctx context.Context, log *models.APILog) error
}

type apiLogRepository struct {
	db *gorm.DB
}

// NewAPILogRepository creates a new APILogRepository instance.
func NewAPILogRepository(db *gorm.DB) APILogRepository {
	return &apiLogRepository{db: db}
}

func (r *apiLogRepository) Create(ctx context.Context, log *models.APILog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create api log: %w", err)
	}
	return nil
}
