// Package models contains data models for the auth service.
package models

import "time"

// Role names seeded at setup. Roles are never created per-request.
const (
	RoleAdmin                    = "ADMIN"
	RoleManager                  = "MANAGER"
	RoleTechnician               = "TECHNICIAN"
	RoleNormalUser               = "NORMAL_USER"
	RoleFieldRelationshipManager = "FIELD_RELATIONSHIP_MANAGER"
)

// SeededRoles is the full set of role names created by the seeding command.
var SeededRoles = []string{
	RoleAdmin,
	RoleManager,
	RoleTechnician,
	RoleNormalUser,
	RoleFieldRelationshipManager,
}

// Role is a named permission category bound to the set of services it may
// invoke.
type Role struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	Services  []Service `json:"-" gorm:"many2many:role_services"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// Service is a named invokable operation gated by role permission.
// Registration is idempotent: re-registering deactivates every entry and
// re-activates only the currently declared set, so removed operations
// become inactive rather than deleted.
type Service struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	CodeName  string    `json:"code_name" gorm:"uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for the Service model.
func (Service) TableName() string {
	return "services"
}
