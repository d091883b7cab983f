package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MaxAmount is the largest value a decimal(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// RateSnapshot is a copy of the rate card a tour was priced with.
type RateSnapshot struct {
	AdultRate decimal.Decimal `json:"adult_rate"`
	ChildRate decimal.Decimal `json:"child_rate"`
	KidRate   decimal.Decimal `json:"kid_rate"`
}

type Tour struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user"`
	Title         string    `gorm:"size:200;not null" json:"title"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	DestinationID uint      `gorm:"index;not null" json:"destination"`
	StartDate     time.Time `gorm:"not null;index" json:"start_date"`
	EndDate       time.Time `gorm:"not null" json:"end_date"`

	Adults   int `gorm:"not null;default:0" json:"adults"`
	Children int `gorm:"not null;default:0" json:"children"`
	Kids     int `gorm:"not null;default:0" json:"kids"`

	CurrentParticipants int `gorm:"not null;default:0" json:"current_participants"`

	// Price is computed once at creation and never rewritten.
	Price       decimal.Decimal                  `gorm:"type:decimal(10,2);not null" json:"price"`
	PricedRates datatypes.JSONType[RateSnapshot] `json:"priced_rates"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Destination Destination `gorm:"foreignKey:DestinationID;constraint:OnDelete:CASCADE" json:"-"`
	User        User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TotalParticipants is the sum of every participant category.
func (t Tour) TotalParticipants() int {
	return t.Adults + t.Children + t.Kids
}
