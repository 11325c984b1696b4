// Package models contains data models for the auth service.
package models

import "time"

// User holds the credential identity: login name, password hash and
// account lifecycle flags. Usernames are email-shaped and stored lowercase.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	// IsStaff marks administrative identities whose usernames are reserved
	// and may never be claimed through the public OTP sign-up flow.
	IsStaff                    bool      `json:"is_staff" gorm:"not null;default:false"`
	IsActive                   bool      `json:"is_active" gorm:"not null;default:true"`
	IsFirstTimePasswordChanged bool      `json:"is_first_time_password_changed" gorm:"not null;default:false"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Profile is the application-level user record, one-to-one with User.
// Its IsActive flag is distinct from the User flag: a profile becomes
// active only once its first sign-up OTP is verified. The same flag is
// later reused for administrative deactivation.
type Profile struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Email     string    `json:"email" gorm:"index;not null"`
	RoleID    int64     `json:"role_id" gorm:"not null"`
	Role      Role      `json:"-" gorm:"foreignKey:RoleID"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for the Profile model.
func (Profile) TableName() string {
	return "profiles"
}
