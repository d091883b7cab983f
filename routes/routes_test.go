package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-backend/config"
	"travel-backend/controllers"
	"travel-backend/middleware"
	"travel-backend/models"
	"travel-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type nopMailer struct{}

func (nopMailer) Send(string, string, string) error { return nil }

func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(context.Background(), db))

	otp := services.NewOTPService(db, nopMailer{})
	accounts := services.NewAccountService(db, otp)
	tokens := services.NewTokenService(db, "routes-test-key", 5*time.Minute, time.Hour)

	r := SetupRouter(Controllers{
		Auth:         controllers.NewAuthController(accounts, tokens),
		Categories:   controllers.NewCategoryController(services.NewCategoryService(db)),
		Destinations: controllers.NewDestinationController(services.NewDestinationService(db, nil)),
		Rates:        controllers.NewRateController(services.NewRateService(db)),
		Tours:        controllers.NewTourController(services.NewTourService(db)),
	}, Options{Tokens: tokens, Users: accounts, Limiter: limiter})
	return r, db
}

func request(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, r http.Handler, db *gorm.DB, username string, staff bool) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw-"+username), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Username: username, Email: username + "@example.com", Password: string(hash),
		IsActive: true, IsStaff: staff,
	}).Error)

	rr := request(r, http.MethodPost, "/api/token", "", gin.H{"username": username, "password": "pw-" + username})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var pair struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.Access)
	return pair.Access
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rr := request(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = request(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestAuthGuards(t *testing.T) {
	r, db := newTestRouter(t, nil)

	rr := request(r, http.MethodGet, "/api/schedule", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = request(r, http.MethodGet, "/api/destinations", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	member := login(t, r, db, "member", false)
	rr = request(r, http.MethodGet, "/api/schedule", member, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = request(r, http.MethodGet, "/api/destinations/anything/rates", member, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	staff := login(t, r, db, "staff", true)
	rr = request(r, http.MethodGet, "/api/destinations/anything/rates", staff, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOTPEndpointsAreThrottled(t *testing.T) {
	r, _ := newTestRouter(t, middleware.NewRateLimiter(rate.Every(time.Hour), 2))

	for i := 0; i < 2; i++ {
		rr := request(r, http.MethodPost, "/api/auth/request-otp", "", gin.H{"email": "nobody@example.com"})
		assert.NotEqual(t, http.StatusTooManyRequests, rr.Code)
	}
	rr := request(r, http.MethodPost, "/api/auth/request-otp", "", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// the token endpoints share the per-IP budget
	rr = request(r, http.MethodPost, "/api/token", "", gin.H{"username": "x", "password": "y"})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
