package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-backend/metrics"
	"travel-backend/models"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TourService books and manages tours. Price is computed once on create.
type TourService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewTourService(db *gorm.DB) *TourService {
	return &TourService{DB: db, now: time.Now}
}

// TourUpdate carries the fields that may change after booking. Nil fields
// are left untouched.
type TourUpdate struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (s *TourService) withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Destination.Category").Preload("Destination.Rate")
}

// List returns every tour, latest start first.
func (s *TourService) List(ctx context.Context) ([]models.Tour, error) {
	var tours []models.Tour
	if err := s.withDetails(s.DB.WithContext(ctx)).Order("start_date DESC, id DESC").Find(&tours).Error; err != nil {
		return nil, err
	}
	return tours, nil
}

func (s *TourService) Get(ctx context.Context, id uint) (*models.Tour, error) {
	var tour models.Tour
	if err := s.withDetails(s.DB.WithContext(ctx)).First(&tour, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	return &tour, nil
}

// Create validates the booking, prices it against the destination's rate
// card and stores it for userID. Nothing is written when validation fails.
func (s *TourService) Create(ctx context.Context, userID uint, in TourInput) (*models.Tour, error) {
	var tour models.Tour
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dest, err := ResolveDestination(tx, in.Destination)
		if err != nil {
			return err
		}
		if ve := ValidateTour(in, dest, s.now()); len(ve) > 0 {
			return ve
		}

		price, err := ComputePrice(in.Adults, in.Children, in.Kids, dest.Rate)
		if err != nil {
			return err
		}
		if price.GreaterThan(models.MaxAmount) {
			var ve ValidationErrors
			ve.Add("price", CodePriceOutOfRange, fmt.Sprintf("Total price %s exceeds the maximum of %s",
				price.StringFixed(2), models.MaxAmount.StringFixed(2)))
			return ve
		}

		tour = models.Tour{
			UserID:        userID,
			Title:         in.Title,
			Description:   in.Description,
			DestinationID: dest.ID,
			StartDate:     in.StartDate.UTC(),
			EndDate:       in.EndDate.UTC(),
			Adults:        in.Adults,
			Children:      in.Children,
			Kids:          in.Kids,
			Price:         price,
			PricedRates:   datatypes.NewJSONType(snapshotRates(dest.Rate)),
		}
		tour.CurrentParticipants = tour.TotalParticipants()

		if err := tx.Create(&tour).Error; err != nil {
			return fmt.Errorf("create tour: %w", err)
		}
		tour.Destination = *dest
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ToursCreated.Inc()
	log.Info().Uint("tour_id", tour.ID).Uint("user_id", userID).Str("price", tour.Price.StringFixed(2)).Msg("tour booked")
	return &tour, nil
}

// Update changes the descriptive fields and schedule of a tour owned by
// userID. Destination and party size are fixed once priced.
func (s *TourService) Update(ctx context.Context, userID, id uint, in TourUpdate) (*models.Tour, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tour models.Tour
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&tour, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTourNotFound
			}
			return err
		}
		if tour.UserID != userID {
			return ErrNotOwner
		}

		if in.Title != nil {
			tour.Title = *in.Title
		}
		if in.Description != nil {
			tour.Description = *in.Description
		}
		startChanged := in.StartDate != nil && !in.StartDate.Equal(tour.StartDate)
		if in.StartDate != nil {
			tour.StartDate = in.StartDate.UTC()
		}
		if in.EndDate != nil {
			tour.EndDate = in.EndDate.UTC()
		}

		var ve ValidationErrors
		validateText(&ve, tour.Title, tour.Description)
		validateDates(&ve, tour.StartDate, tour.EndDate, s.now(), startChanged)
		if len(ve) > 0 {
			return ve
		}

		return tx.Model(&tour).Select("title", "description", "start_date", "end_date").Updates(&tour).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a tour owned by userID.
func (s *TourService) Delete(ctx context.Context, userID, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tour models.Tour
		if err := tx.First(&tour, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTourNotFound
			}
			return err
		}
		if tour.UserID != userID {
			return ErrNotOwner
		}
		return tx.Delete(&tour).Error
	})
}
