package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel-backend/config"
	"travel-backend/middleware"
	"travel-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

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

// asUser stands in for the JWT middleware.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// fieldCodes indexes a validation_error body by field.
func fieldCodes(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	body := decode(t, rr)
	require.Equal(t, "validation_error", body["code"], rr.Body.String())
	fields, ok := body["fields"].([]any)
	require.True(t, ok, rr.Body.String())

	codes := map[string]string{}
	for _, raw := range fields {
		fe := raw.(map[string]any)
		codes[fe["field"].(string)] = fe["code"].(string)
	}
	return codes
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
