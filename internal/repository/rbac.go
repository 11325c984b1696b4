package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldstack/auth-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository defines the interface for role and permission lookups.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	GetOrCreate(ctx context.Context, name string) (*models.Role, error)
	// HasActiveService reports whether the role's permitted-service set
	// contains an active entry with the given code name.
	HasActiveService(ctx context.Context, roleID int64, codeName string) (bool, error)
	GrantService(ctx context.Context, roleID, serviceID int64) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository instance.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find role %s: %w", name, err)
	}
	return &role, nil
}

func (r *roleRepository) GetOrCreate(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Where(models.Role{Name: name}).
		Attrs(models.Role{IsActive: true}).
		FirstOrCreate(&role).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create role %s: %w", name, err)
	}
	return &role, nil
}

func (r *roleRepository) HasActiveService(ctx context.Context, roleID int64, codeName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("role_services").
		Joins("JOIN services ON services.id = role_services.service_id").
		Where("role_services.role_id = ? AND services.code_name = ? AND services.is_active = ?",
			roleID, codeName, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check service access for role %d: %w", roleID, err)
	}
	return count > 0, nil
}

func (r *roleRepository) GrantService(ctx context.Context, roleID, serviceID int64) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Table("role_services").
		Create(map[string]interface{}{"role_id": roleID, "service_id": serviceID}).Error
	if err != nil {
		return fmt.Errorf("failed to grant service %d to role %d: %w", serviceID, roleID, err)
	}
	return nil
}

// ServiceRepository defines the interface for service registrations.
type ServiceRepository interface {
	FindByCodeName(ctx context.Context, codeName string) (*models.Service, error)
	DeactivateAll(ctx context.Context) error
	UpsertActive(ctx context.Context, codeName string) error
}

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new ServiceRepository instance.
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) FindByCodeName(ctx context.Context, codeName string) (*models.Service, error) {
	var service models.Service
	err := r.db.WithContext(ctx).Where("code_name = ?", codeName).First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find service %s: %w", codeName, err)
	}
	return &service, nil
}

func (r *serviceRepository) DeactivateAll(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("1 = 1").
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate services: %w", err)
	}
	return nil
}

func (r *serviceRepository) UpsertActive(ctx context.Context, codeName string) error {
	service := models.Service{CodeName: codeName, IsActive: true}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code_name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
		}).
		Create(&service).Error
	if err != nil {
		return fmt.Errorf("failed to upsert service %s: %w", codeName, err)
	}
	return nil
}
