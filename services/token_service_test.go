package services

import (
	"context"
	"testing"
	"time"

	"travel-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTokenService(t *testing.T) (*TokenService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewTokenService(db, "test-signing-key", 5*time.Minute, time.Hour), db
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, db := newTokenService(t)
	user := createUser(t, db, "alice", "alice@example.com", true, t0)

	for _, id := range []string{"alice", "alice@example.com"} {
		pair, err := svc.Login(context.Background(), id, "password")
		require.NoError(t, err, id)

		claims, err := svc.ParseAccess(pair.Access)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	}

	var n int64
	require.NoError(t, db.Model(&models.OutstandingToken{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestLogin_Rejects(t *testing.T) {
	svc, db := newTokenService(t)
	createUser(t, db, "alice", "alice@example.com", true, t0)
	createUser(t, db, "bob", "bob@example.com", false, t0)

	_, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "bob", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	svc, db := newTokenService(t)
	createUser(t, db, "alice", "alice@example.com", true, t0)
	pair, err := svc.Login(context.Background(), "alice", "password")
	require.NoError(t, err)

	_, err = svc.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefresh(t *testing.T) {
	svc, db := newTokenService(t)
	user := createUser(t, db, "alice", "alice@example.com", true, t0)
	pair, err := svc.Login(context.Background(), "alice", "password")
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	claims, err := svc.ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenMissing)
	_, err = svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRefresh_DeletedUserBlacklistsToken(t *testing.T) {
	svc, db := newTokenService(t)
	user := createUser(t, db, "alice", "alice@example.com", true, t0)
	pair, err := svc.Login(context.Background(), "alice", "password")
	require.NoError(t, err)
	require.NoError(t, db.Delete(user).Error)

	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var tok models.OutstandingToken
	require.NoError(t, db.Where("token = ?", pair.Refresh).First(&tok).Error)
	assert.NotNil(t, tok.BlacklistedAt)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	svc, db := newTokenService(t)
	createUser(t, db, "alice", "alice@example.com", true, t0)
	pair, err := svc.Login(context.Background(), "alice", "password")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLogout(t *testing.T) {
	svc, db := newTokenService(t)
	alice := createUser(t, db, "alice", "alice@example.com", true, t0)
	bob := createUser(t, db, "bob", "bob@example.com", true, t0)
	pair, err := svc.Login(context.Background(), "alice", "password")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Logout(context.Background(), bob.ID, pair.Refresh), ErrTokenUserMismatch)
	assert.ErrorIs(t, svc.Logout(context.Background(), alice.ID, ""), ErrTokenMissing)
	require.NoError(t, svc.Logout(context.Background(), alice.ID, pair.Refresh))

	_, err = svc.Refresh(context.Background(), pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
