package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-backend/models"
	"travel-backend/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DestinationService manages destinations. When a destination is saved
// without coordinates the Geocoder, if any, is asked for them.
type DestinationService struct {
	DB       *gorm.DB
	Geocoder Geocoder
}

func NewDestinationService(db *gorm.DB, geocoder Geocoder) *DestinationService {
	return &DestinationService{DB: db, Geocoder: geocoder}
}

// DestinationFilter narrows List. Empty fields are ignored.
type DestinationFilter struct {
	Category string // category slug
	City     string // case-insensitive exact match
	Search   string // substring of name, description, address or city
}

type DestinationInput struct {
	Name        string   `json:"name" validate:"notblank"`
	Slug        string   `json:"slug"`
	Description string   `json:"description" validate:"notblank"`
	CategoryID  uint     `json:"category" validate:"required"`
	City        string   `json:"city"`
	Address     string   `json:"address" validate:"notblank"`
	Latitude    *float64 `json:"latitude" validate:"omitnil,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitnil,min=-180,max=180"`
}

const defaultCity = "Lahore"

func (s *DestinationService) List(ctx context.Context, f DestinationFilter) ([]models.Destination, error) {
	q := s.DB.WithContext(ctx).Model(&models.Destination{}).Preload("Category").Preload("Rate")

	if cat := strings.TrimSpace(f.Category); cat != "" {
		q = q.Joins("JOIN categories ON categories.id = destinations.category_id AND categories.deleted_at IS NULL").
			Where("categories.slug = ?", cat)
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(destinations.city) = LOWER(?)", city)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"LOWER(destinations.name) LIKE ? OR LOWER(destinations.description) LIKE ? OR LOWER(destinations.address) LIKE ? OR LOWER(destinations.city) LIKE ?",
			like, like, like, like,
		)
	}

	var out []models.Destination
	if err := q.Order("destinations.created_at DESC, destinations.id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DestinationService) Get(ctx context.Context, slug string) (*models.Destination, error) {
	var dest models.Destination
	err := s.DB.WithContext(ctx).Preload("Category").Preload("Rate").Where("slug = ?", slug).First(&dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return &dest, nil
}

func (s *DestinationService) Create(ctx context.Context, in DestinationInput) (*models.Destination, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	dest := models.Destination{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		CategoryID:  in.CategoryID,
		City:        strings.TrimSpace(in.City),
		Address:     strings.TrimSpace(in.Address),
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	}
	if dest.Slug == "" {
		dest.Slug = utils.Slugify(dest.Name)
	}
	if dest.City == "" {
		dest.City = defaultCity
	}
	if err := s.save(ctx, &dest, true); err != nil {
		return nil, err
	}
	return s.Get(ctx, dest.Slug)
}

// Update replaces the destination's fields. An empty slug keeps the current one.
func (s *DestinationService) Update(ctx context.Context, slug string, in DestinationInput) (*models.Destination, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	dest, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	addressChanged := strings.TrimSpace(in.Address) != dest.Address
	dest.Name = strings.TrimSpace(in.Name)
	dest.Description = in.Description
	dest.CategoryID = in.CategoryID
	dest.Address = strings.TrimSpace(in.Address)
	dest.City = strings.TrimSpace(in.City)
	if dest.City == "" {
		dest.City = defaultCity
	}
	if newSlug := strings.TrimSpace(in.Slug); newSlug != "" {
		dest.Slug = newSlug
	}
	if in.Latitude != nil || in.Longitude != nil || addressChanged {
		dest.Latitude, dest.Longitude = in.Latitude, in.Longitude
	}
	dest.Category = models.Category{}
	dest.Rate = nil

	if err := s.save(ctx, dest, false); err != nil {
		return nil, err
	}
	return s.Get(ctx, dest.Slug)
}

func (s *DestinationService) Delete(ctx context.Context, slug string) error {
	res := s.DB.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Destination{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDestinationNotFound
	}
	return nil
}

func (s *DestinationService) validate(ctx context.Context, in DestinationInput) error {
	var ve ValidationErrors
	if err := checkStruct(&ve, in); err != nil {
		return err
	}
	if in.CategoryID != 0 {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			ve.Add("category", CodeInvalid, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.CategoryID))
		}
	}
	return ve.Err()
}

func (s *DestinationService) save(ctx context.Context, dest *models.Destination, create bool) error {
	if err := checkSlug(dest.Slug); err != nil {
		return err
	}
	db := s.DB.WithContext(ctx)

	var taken int64
	q := db.Unscoped().Model(&models.Destination{}).Where("slug = ?", dest.Slug)
	if !create {
		q = q.Where("id <> ?", dest.ID)
	}
	if err := q.Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return ErrSlugTaken.WithMessage("destination with slug %q already exists", dest.Slug)
	}

	s.fillCoordinates(ctx, dest)

	var err error
	if create {
		err = db.Create(dest).Error
	} else {
		err = db.Omit("Category", "Rate").Save(dest).Error
	}
	if isDuplicateKey(err) {
		return ErrSlugTaken
	}
	return err
}

// fillCoordinates geocodes the address when either coordinate is missing.
// Lookup failures are logged and the destination is saved without them.
func (s *DestinationService) fillCoordinates(ctx context.Context, dest *models.Destination) {
	if s.Geocoder == nil || dest.HasCoordinates() || dest.Address == "" {
		return
	}
	lat, lon, ok, err := s.Geocoder.Geocode(ctx, dest.Address)
	if err != nil {
		log.Warn().Err(err).Str("address", dest.Address).Msg("geocoding failed")
		return
	}
	if !ok {
		log.Info().Str("address", dest.Address).Msg("geocoding returned no match")
		return
	}
	dest.Latitude, dest.Longitude = &lat, &lon
}
