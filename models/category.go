package models

import (
	"time"

	"gorm.io/gorm"
)

// Predefined category names. CategoryOther is paired with CustomName.
const (
	CategoryInstitutions = "institutions"
	CategoryNationalPark = "national_park"
	CategoryCamping      = "camping"
	CategoryRockClimbing = "rock_climbing"
	CategoryOther        = "other"
)

// CategoryLabels maps each predefined name to its display label.
var CategoryLabels = map[string]string{
	CategoryInstitutions: "Institutions",
	CategoryNationalPark: "National Park",
	CategoryCamping:      "Camping",
	CategoryRockClimbing: "Rock Climbing",
	CategoryOther:        "Other",
}

type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	CustomName  *string        `gorm:"size:100" json:"custom_name,omitempty"`
	Slug        string         `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// DisplayName is the custom name for "other" categories, else the label.
func (c Category) DisplayName() string {
	if c.Name == CategoryOther && c.CustomName != nil && *c.CustomName != "" {
		return *c.CustomName
	}
	if label, ok := CategoryLabels[c.Name]; ok {
		return label
	}
	return c.Name
}
