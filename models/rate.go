package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DestinationRate is the rate card for a destination: a price per adult,
// child and kid. One per destination.
type DestinationRate struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DestinationID uint            `gorm:"uniqueIndex;not null" json:"destination"`
	AdultRate     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"adult_rate"`
	ChildRate     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"child_rate"`
	KidRate       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"kid_rate"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Destination Destination `gorm:"foreignKey:DestinationID;constraint:OnDelete:CASCADE" json:"-"`
}
