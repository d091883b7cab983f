package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"travel-backend/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues HS256 JWTs. Refresh tokens are recorded so they can be
// revoked on logout.
type TokenService struct {
	DB         *gorm.DB
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func NewTokenService(db *gorm.DB, signingKey string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		DB:         db,
		signingKey: []byte(signingKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Login checks credentials of an active account, by username or email.
func (s *TokenService) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := s.DB.WithContext(ctx).
		Where("(username = ? OR email = ?) AND is_active = ?", identifier, identifier, true).
		Order("date_joined DESC, id DESC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	access, err := s.sign(user.ID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, claims, err := s.signWithClaims(user.ID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	outstanding := models.OutstandingToken{
		UserID:    user.ID,
		JTI:       claims.ID,
		Token:     refresh,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.DB.WithContext(ctx).Create(&outstanding).Error; err != nil {
		return nil, fmt.Errorf("record refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token. A token
// whose owner was deleted is blacklisted on the way out.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (string, error) {
	refresh = strings.TrimSpace(refresh)
	if refresh == "" {
		return "", ErrTokenMissing
	}

	db := s.DB.WithContext(ctx)
	var outstanding models.OutstandingToken
	if err := db.Where("token = ?", refresh).First(&outstanding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenInvalid
		}
		return "", err
	}

	var user models.User
	if err := db.First(&user, outstanding.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if bErr := s.blacklist(db, &outstanding); bErr != nil {
				return "", bErr
			}
			return "", ErrUserNotFound
		}
		return "", err
	}

	if outstanding.BlacklistedAt != nil {
		return "", ErrTokenInvalid
	}
	claims, err := s.parse(refresh, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	if claims.ID != outstanding.JTI {
		return "", ErrTokenInvalid
	}

	return s.sign(user.ID, TokenTypeAccess, s.accessTTL)
}

// Logout blacklists a refresh token owned by userID.
func (s *TokenService) Logout(ctx context.Context, userID uint, refresh string) error {
	refresh = strings.TrimSpace(refresh)
	if refresh == "" {
		return ErrTokenMissing
	}

	db := s.DB.WithContext(ctx)
	var outstanding models.OutstandingToken
	if err := db.Where("token = ?", refresh).First(&outstanding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if outstanding.UserID != userID {
		return ErrTokenUserMismatch
	}
	return s.blacklist(db, &outstanding)
}

// ParseAccess validates an access token and returns its claims.
func (s *TokenService) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, TokenTypeAccess)
}

func (s *TokenService) blacklist(db *gorm.DB, t *models.OutstandingToken) error {
	if t.BlacklistedAt != nil {
		return nil
	}
	now := s.now().UTC()
	if err := db.Model(t).Update("blacklisted_at", now).Error; err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	t.BlacklistedAt = &now
	return nil
}

func (s *TokenService) sign(userID uint, tokenType string, ttl time.Duration) (string, error) {
	token, _, err := s.signWithClaims(userID, tokenType, ttl)
	return token, err
}

func (s *TokenService) signWithClaims(userID uint, tokenType string, ttl time.Duration) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

func (s *TokenService) parse(token, tokenType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid.Wrap(err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
