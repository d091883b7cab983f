package models

import (
	"time"

	"gorm.io/gorm"
)

type Destination struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Name        string   `gorm:"size:200;not null;index" json:"name"`
	Slug        string   `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Description string   `gorm:"type:text" json:"description"`
	CategoryID  uint     `gorm:"index;not null" json:"category"`
	City        string   `gorm:"size:100;not null;default:Lahore" json:"city"`
	Address     string   `gorm:"size:255;not null" json:"address"`
	Latitude    *float64 `gorm:"type:decimal(9,6)" json:"latitude"`
	Longitude   *float64 `gorm:"type:decimal(9,6)" json:"longitude"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Category Category         `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	Rate     *DestinationRate `gorm:"foreignKey:DestinationID" json:"-"`
}

// HasCoordinates is true once both latitude and longitude are known.
func (d Destination) HasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil && (*d.Latitude != 0 || *d.Longitude != 0)
}
