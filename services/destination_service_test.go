package services

import (
	"context"
	"errors"
	"testing"

	"travel-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGeocoder struct{ mock.Mock }

func (m *mockGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(float64), args.Get(1).(float64), args.Bool(2), args.Error(3)
}

func seedCategory(t *testing.T, svc *CategoryService, name string) *models.Category {
	t.Helper()
	cat, err := svc.Create(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return cat
}

func TestCreateDestination_SlugCityAndGeocode(t *testing.T) {
	db := newTestDB(t)
	geo := &mockGeocoder{}
	geo.On("Geocode", mock.Anything, "Badshahi Mosque Road").Return(31.588, 74.31, true, nil).Once()
	svc := NewDestinationService(db, geo)
	cat := seedCategory(t, NewCategoryService(db), models.CategoryInstitutions)

	dest, err := svc.Create(context.Background(), DestinationInput{
		Name:        "Badshahi Mosque",
		Description: "Mughal era mosque",
		CategoryID:  cat.ID,
		Address:     "Badshahi Mosque Road",
	})
	require.NoError(t, err)

	assert.Equal(t, "badshahi-mosque", dest.Slug)
	assert.Equal(t, "Lahore", dest.City)
	require.True(t, dest.HasCoordinates())
	assert.InDelta(t, 31.588, *dest.Latitude, 1e-6)
	assert.Equal(t, models.CategoryInstitutions, dest.Category.Name)
	geo.AssertExpectations(t)
}

func TestCreateDestination_GeocodeFailureIgnored(t *testing.T) {
	db := newTestDB(t)
	geo := &mockGeocoder{}
	geo.On("Geocode", mock.Anything, mock.Anything).Return(0.0, 0.0, false, errors.New("timeout"))
	svc := NewDestinationService(db, geo)
	cat := seedCategory(t, NewCategoryService(db), models.CategoryCamping)

	dest, err := svc.Create(context.Background(), DestinationInput{
		Name: "Lake", Description: "d", CategoryID: cat.ID, Address: "Somewhere",
	})
	require.NoError(t, err)
	assert.False(t, dest.HasCoordinates())
}

func TestCreateDestination_KeepsGivenCoordinates(t *testing.T) {
	db := newTestDB(t)
	geo := &mockGeocoder{}
	svc := NewDestinationService(db, geo)
	cat := seedCategory(t, NewCategoryService(db), models.CategoryCamping)
	lat, lon := 35.0, 74.0

	_, err := svc.Create(context.Background(), DestinationInput{
		Name: "Peak", Description: "d", CategoryID: cat.ID, Address: "North", Latitude: &lat, Longitude: &lon,
	})
	require.NoError(t, err)
	geo.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestCreateDestination_Validation(t *testing.T) {
	svc := NewDestinationService(newTestDB(t), nil)

	_, err := svc.Create(context.Background(), DestinationInput{CategoryID: 42})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("name", CodeBlank))
	assert.True(t, ve.Has("address", CodeBlank))
	assert.True(t, ve.Has("category", CodeInvalid))
}

func TestCreateDestination_DuplicateSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewDestinationService(db, nil)
	cat := seedCategory(t, NewCategoryService(db), models.CategoryCamping)
	in := DestinationInput{Name: "Lake Saif", Description: "d", CategoryID: cat.ID, Address: "Naran"}

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreateDestination_UnusableSlug(t *testing.T) {
	db := newTestDB(t)
	svc := NewDestinationService(db, nil)
	cat := seedCategory(t, NewCategoryService(db), models.CategoryCamping)
	ctx := context.Background()

	for _, name := range []string{"北京", "!!!"} {
		_, err := svc.Create(ctx, DestinationInput{Name: name, Description: "d", CategoryID: cat.ID, Address: "a"})
		ve, ok := AsValidation(err)
		require.True(t, ok, name)
		assert.True(t, ve.Has("slug", CodeRequired), name)
	}

	_, err := svc.Create(ctx, DestinationInput{Name: "東京", Slug: "To Kyo", Description: "d", CategoryID: cat.ID, Address: "a"})
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("slug", CodeInvalid))

	beijing, err := svc.Create(ctx, DestinationInput{Name: "北京", Slug: "beijing", Description: "d", CategoryID: cat.ID, Address: "a"})
	require.NoError(t, err)
	tokyo, err := svc.Create(ctx, DestinationInput{Name: "東京", Slug: "tokyo", Description: "d", CategoryID: cat.ID, Address: "a"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "beijing")
	require.NoError(t, err)
	assert.Equal(t, beijing.ID, got.ID)
	assert.NotEqual(t, beijing.ID, tokyo.ID)

	var empty int64
	require.NoError(t, db.Unscoped().Model(&models.Destination{}).Where("slug = ?", "").Count(&empty).Error)
	assert.Zero(t, empty)
}

func TestListDestinations_Filters(t *testing.T) {
	db := newTestDB(t)
	cats := NewCategoryService(db)
	svc := NewDestinationService(db, nil)
	camping := seedCategory(t, cats, models.CategoryCamping)
	park := seedCategory(t, cats, models.CategoryNationalPark)
	ctx := context.Background()

	for _, in := range []DestinationInput{
		{Name: "Lake Saif ul Malook", Description: "alpine lake", CategoryID: camping.ID, City: "Naran", Address: "Kaghan"},
		{Name: "Margalla Hills", Description: "trails", CategoryID: park.ID, City: "Islamabad", Address: "E-7"},
		{Name: "Jallo Park", Description: "family park", CategoryID: park.ID, Address: "Canal Road"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, DestinationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Jallo Park", all[0].Name, "newest first")

	byCat, err := svc.List(ctx, DestinationFilter{Category: "national_park"})
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	byCity, err := svc.List(ctx, DestinationFilter{City: "islamabad"})
	require.NoError(t, err)
	require.Len(t, byCity, 1)
	assert.Equal(t, "Margalla Hills", byCity[0].Name)

	bySearch, err := svc.List(ctx, DestinationFilter{Search: "LAKE"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)

	byDefaultCity, err := svc.List(ctx, DestinationFilter{Search: "lahore"})
	require.NoError(t, err)
	assert.Len(t, byDefaultCity, 1)
}

func TestUpdateAndDeleteDestination(t *testing.T) {
	db := newTestDB(t)
	svc := NewDestinationService(db, nil)
	cat := seedCategory(t, NewCategoryService(db), models.CategoryCamping)
	ctx := context.Background()
	dest, err := svc.Create(ctx, DestinationInput{Name: "Old", Description: "d", CategoryID: cat.ID, Address: "a"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, dest.Slug, DestinationInput{Name: "New", Description: "d2", CategoryID: cat.ID, Address: "a", City: "Skardu"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "old", updated.Slug, "slug is kept when not supplied")
	assert.Equal(t, "Skardu", updated.City)

	require.NoError(t, svc.Delete(ctx, "old"))
	assert.ErrorIs(t, svc.Delete(ctx, "old"), ErrDestinationNotFound)
	_, err = svc.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrDestinationNotFound)
}
