package models

import "time"

// OTPPurpose scopes a one-time code to the flow it was issued for.
type OTPPurpose string

const (
	PurposeRegistration  OTPPurpose = "REGISTRATION"
	PurposePasswordReset OTPPurpose = "PASSWORD_RESET"
)

// Valid reports whether p is one of the known purposes.
func (p OTPPurpose) Valid() bool {
	return p == PurposeRegistration || p == PurposePasswordReset
}

// OTPLifetime is how long an issued code stays usable.
const OTPLifetime = 10 * time.Minute

type OTPVerification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:254;not null;index:idx_otp_email_purpose" json:"email"`
	Code      string     `gorm:"column:otp;size:6;not null" json:"-"`
	Purpose   OTPPurpose `gorm:"size:20;not null;index:idx_otp_email_purpose" json:"purpose"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	Verified  bool       `gorm:"column:is_verified;not null;default:false" json:"is_verified"`
}

// IsValid mirrors the verification rule: unused and not past expiry.
func (o *OTPVerification) IsValid(now time.Time) bool {
	return !o.Verified && !now.After(o.ExpiresAt)
}
