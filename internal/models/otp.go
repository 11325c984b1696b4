package models

import "time"

// OTPType distinguishes the flow an OTP was issued for. Verification only
// accepts a code of the type the flow expects.
type OTPType string

const (
	OTPTypeSignUp         OTPType = "SIGN_UP"
	OTPTypeSignIn         OTPType = "SIGN_IN"
	OTPTypeTwoFactor      OTPType = "TWO_FACTOR"
	OTPTypeForgotPassword OTPType = "FORGOT_PASSWORD"
)

// OTPRecord is a one-time credential issued to a profile. The code is
// stored as a bcrypt hash and compared with the same constant-time
// primitive used for passwords; the plaintext only ever leaves the
// process inside the dispatched email.
//
// Invariant: at most one record exists per profile at any time. Issuing a
// new OTP deletes all prior records inside the same transaction.
type OTPRecord struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProfileID int64     `json:"profile_id" gorm:"index;not null"`
	Profile   Profile   `json:"-" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	CodeHash  string    `json:"-" gorm:"not null"`
	Type      OTPType   `json:"type" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for the OTPRecord model.
func (OTPRecord) TableName() string {
	return "otp_records"
}
