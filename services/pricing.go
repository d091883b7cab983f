package services

import (
	"travel-backend/models"

	"github.com/shopspring/decimal"
)

// ComputePrice prices a party against a rate card:
// adults*adult_rate + children*child_rate + kids*kid_rate, to two places.
// A missing rate card is ErrRatesNotConfigured, never a zero price.
func ComputePrice(adults, children, kids int, rate *models.DestinationRate) (decimal.Decimal, error) {
	if rate == nil {
		return decimal.Zero, ErrRatesNotConfigured
	}
	total := rate.AdultRate.Mul(decimal.NewFromInt(int64(adults))).
		Add(rate.ChildRate.Mul(decimal.NewFromInt(int64(children)))).
		Add(rate.KidRate.Mul(decimal.NewFromInt(int64(kids))))
	return total.Round(2), nil
}

// snapshotRates copies the rate card a price was computed with.
func snapshotRates(rate *models.DestinationRate) models.RateSnapshot {
	return models.RateSnapshot{
		AdultRate: rate.AdultRate,
		ChildRate: rate.ChildRate,
		KidRate:   rate.KidRate,
	}
}
