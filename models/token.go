package models

import "time"

// OutstandingToken records every refresh token handed out so it can be
// checked on refresh and blacklisted on logout.
type OutstandingToken struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	JTI           string     `gorm:"column:jti;uniqueIndex;size:64;not null" json:"jti"`
	Token         string     `gorm:"type:text;not null" json:"-"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`
	BlacklistedAt *time.Time `json:"blacklisted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
