package services

import (
	"context"
	"testing"
	"time"

	"travel-backend/config"
	"travel-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- fixtures ---

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(context.Background(), db))
	return db
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func createUser(t *testing.T, db *gorm.DB, username, email string, active bool, joined time.Time) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Username:   username,
		Email:      email,
		Password:   string(hash),
		IsActive:   active,
		DateJoined: joined,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createDestination(t *testing.T, db *gorm.DB, name string, rates *models.RateSnapshot) *models.Destination {
	t.Helper()
	cat := models.Category{Name: models.CategoryCamping, Slug: "camping-" + name}
	require.NoError(t, db.Create(&cat).Error)

	dest := models.Destination{
		Name:        name,
		Slug:        name,
		Description: "somewhere nice",
		CategoryID:  cat.ID,
		City:        "Lahore",
		Address:     "1 Mall Road",
	}
	require.NoError(t, db.Create(&dest).Error)

	if rates != nil {
		rate := models.DestinationRate{
			DestinationID: dest.ID,
			AdultRate:     rates.AdultRate,
			ChildRate:     rates.ChildRate,
			KidRate:       rates.KidRate,
		}
		require.NoError(t, db.Create(&rate).Error)
		dest.Rate = &rate
	}
	return &dest
}

func snapshot(adult, child, kid string) *models.RateSnapshot {
	return &models.RateSnapshot{
		AdultRate: decimal.RequireFromString(adult),
		ChildRate: decimal.RequireFromString(child),
		KidRate:   decimal.RequireFromString(kid),
	}
}
