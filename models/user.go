package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account that registers with an email address and is activated
// once the registration OTP is verified.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string `gorm:"index;size:254;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Password  string `gorm:"size:255" json:"-"` // bcrypt hash
	IsActive  bool   `gorm:"not null;default:false;index" json:"is_active"`
	IsStaff   bool   `gorm:"not null;default:false" json:"is_staff"`

	// DateJoined doubles as the creation timestamp used to pick the most
	// recent account when several share an email.
	DateJoined time.Time      `gorm:"autoCreateTime;index" json:"date_joined"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
