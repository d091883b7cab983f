package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-backend/models"

	"gorm.io/gorm"
)

// DestinationRef names a destination either by numeric ID or by name.
// In JSON it is a bare integer or a string.
type DestinationRef struct {
	ID   uint
	Name string
}

func (r DestinationRef) IsZero() bool { return r.ID == 0 && strings.TrimSpace(r.Name) == "" }

func (r DestinationRef) String() string {
	if r.ID != 0 {
		return fmt.Sprintf("%d", r.ID)
	}
	return r.Name
}

var errDestinationRefType = errors.New("destination must be either an ID (integer) or name (string)")

func (r *DestinationRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = DestinationRef{}
		return nil
	}
	if b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*r = DestinationRef{Name: name}
		return nil
	}
	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return errDestinationRefType
	}
	*r = DestinationRef{ID: id}
	return nil
}

func (r DestinationRef) MarshalJSON() ([]byte, error) {
	if r.ID != 0 {
		return json.Marshal(r.ID)
	}
	return json.Marshal(r.Name)
}

// TourInput is a booking request before validation.
type TourInput struct {
	Title       string         `json:"title" validate:"notblank,max=200"`
	Description string         `json:"description" validate:"notblank"`
	Destination DestinationRef `json:"destination"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Adults      int            `json:"adults" validate:"participants,max=10000"`
	Children    int            `json:"children" validate:"participants,max=10000"`
	Kids        int            `json:"kids" validate:"participants,max=10000"`
}

// ResolveDestination finds a destination by ID or case-insensitive name,
// with its rate card loaded. It returns nil, nil when nothing matches.
func ResolveDestination(db *gorm.DB, ref DestinationRef) (*models.Destination, error) {
	if ref.IsZero() {
		return nil, nil
	}
	q := db.Preload("Rate")
	if ref.ID != 0 {
		q = q.Where("id = ?", ref.ID)
	} else {
		q = q.Where("LOWER(name) = LOWER(?)", strings.TrimSpace(ref.Name))
	}

	var dest models.Destination
	err := q.Order("id ASC").First(&dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load destination: %w", err)
	}
	return &dest, nil
}

// ValidateTour runs every booking check and returns all failures. dest is
// the destination resolved from in.Destination, or nil.
func ValidateTour(in TourInput, dest *models.Destination, now time.Time) ValidationErrors {
	var ve ValidationErrors
	_ = checkStruct(&ve, in)

	switch {
	case dest == nil && in.Destination.IsZero():
		ve.Add("destination", CodeRequired, "Destination is required")
	case dest == nil:
		ve.Add("destination", CodeDestinationNotFound, fmt.Sprintf("Destination '%s' not found", in.Destination))
	case dest.Rate == nil:
		ve.Add("destination", CodeRatesNotConfigured,
			fmt.Sprintf("Rates not set for destination '%s'. Please contact administrator.", dest.Name))
	}

	validateDates(&ve, in.StartDate, in.EndDate, now, true)
	return ve
}

func validateText(ve *ValidationErrors, title, description string) {
	_ = checkVar(ve, "title", title, "notblank,max=200")
	_ = checkVar(ve, "description", description, "notblank")
}

// validateDates skips the past-start check when checkPast is false, so an
// update that keeps an already started schedule is not rejected.
func validateDates(ve *ValidationErrors, start, end, now time.Time, checkPast bool) {
	if start.IsZero() {
		ve.Add("start_date", CodeRequired, "Start date is required")
	}
	if end.IsZero() {
		ve.Add("end_date", CodeRequired, "End date is required")
	}
	if start.IsZero() || end.IsZero() {
		return
	}
	if checkPast && start.Before(now) {
		ve.Add("start_date", CodeStartInPast, "Start date cannot be in the past")
	}
	if !end.After(start) {
		ve.Add("end_date", CodeEndBeforeStart, "End date must be after start date")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
