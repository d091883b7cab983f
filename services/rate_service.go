package services

import (
	"context"
	"errors"
	"fmt"

	"travel-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateService maintains the per-destination rate card.
type RateService struct {
	DB *gorm.DB
}

func NewRateService(db *gorm.DB) *RateService {
	return &RateService{DB: db}
}

type RateInput struct {
	AdultRate decimal.Decimal `json:"adult_rate" validate:"min=0,max=99999999.99"`
	ChildRate decimal.Decimal `json:"child_rate" validate:"min=0,max=99999999.99"`
	KidRate   decimal.Decimal `json:"kid_rate" validate:"min=0,max=99999999.99"`
}

func (s *RateService) destinationID(db *gorm.DB, slug string) (uint, error) {
	var dest models.Destination
	if err := db.Select("id").Where("slug = ?", slug).First(&dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrDestinationNotFound
		}
		return 0, err
	}
	return dest.ID, nil
}

func (s *RateService) Get(ctx context.Context, slug string) (*models.DestinationRate, error) {
	db := s.DB.WithContext(ctx)
	destID, err := s.destinationID(db, slug)
	if err != nil {
		return nil, err
	}
	var rate models.DestinationRate
	if err := db.Where("destination_id = ?", destID).First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRateNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// Put creates or replaces the rate card of the destination at slug. Tours
// already booked keep the price they were created with.
func (s *RateService) Put(ctx context.Context, slug string, in RateInput) (*models.DestinationRate, bool, error) {
	if err := checkFields(in); err != nil {
		return nil, false, err
	}

	var (
		rate    models.DestinationRate
		created bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		destID, err := s.destinationID(tx, slug)
		if err != nil {
			return err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("destination_id = ?", destID).First(&rate).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			rate = models.DestinationRate{DestinationID: destID}
		case err != nil:
			return err
		}

		rate.AdultRate = in.AdultRate.Round(2)
		rate.ChildRate = in.ChildRate.Round(2)
		rate.KidRate = in.KidRate.Round(2)

		if created {
			if err := tx.Create(&rate).Error; err != nil {
				return fmt.Errorf("create rate: %w", err)
			}
			return nil
		}
		return tx.Omit("Destination").Save(&rate).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &rate, created, nil
}
