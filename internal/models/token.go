package models

import "time"

// BlacklistedToken records a session token that must no longer be honored.
// The set is append-only and never purged; a token present here is
// permanently disqualified regardless of its own expiry.
type BlacklistedToken struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for the BlacklistedToken model.
func (BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
