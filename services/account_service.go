package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travel-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService owns registration and password recovery. Both flows go
// through OTPService; the account change runs inside the verification
// transaction.
type AccountService struct {
	DB  *gorm.DB
	OTP *OTPService
}

func NewAccountService(db *gorm.DB, otp *OTPService) *AccountService {
	return &AccountService{DB: db, OTP: otp}
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// Register creates an inactive account and sends the registration code.
// When the mail cannot be delivered the account is kept and the error is
// returned alongside it so the client can ask for a new code.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkFields(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  string(hash),
		IsActive:  false,
	}

	db := s.DB.WithContext(ctx)
	var existing int64
	if err := db.Unscoped().Model(&models.User{}).Where("username = ?", user.Username).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAccountExists
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.OTP.Issue(ctx, user.Email, models.PurposeRegistration); err != nil {
		return &user, err
	}
	return &user, nil
}

// RequestRegistrationOTP re-sends a code to an account still awaiting verification.
func (s *AccountService) RequestRegistrationOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return err
	}
	ok, err := s.hasAccount(ctx, email, false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoPendingAccount
	}
	_, err = s.OTP.Issue(ctx, email, models.PurposeRegistration)
	return err
}

// VerifyRegistration activates the most recently joined inactive account
// for email.
func (s *AccountService) VerifyRegistration(ctx context.Context, email, code string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := checkFields(verifyFields{Email: email, OTP: code}); err != nil {
		return nil, err
	}

	var user models.User
	_, err := s.OTP.Verify(ctx, email, code, models.PurposeRegistration, func(tx *gorm.DB) error {
		found, err := latestAccount(tx, email, false)
		if err != nil {
			return err
		}
		if found == nil {
			return ErrNoPendingAccount
		}
		if err := tx.Model(found).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("activate user: %w", err)
		}
		found.IsActive = true
		user = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset mails a reset code when an active account uses email.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return err
	}
	ok, err := s.hasAccount(ctx, email, true)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoActiveAccount
	}
	_, err = s.OTP.Issue(ctx, email, models.PurposePasswordReset)
	return err
}

// ResetPassword verifies a reset code and sets newPassword on the most
// recently joined active account for email.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.TrimSpace(email)
	if err := checkFields(resetFields{Email: email, OTP: code, NewPassword: newPassword}); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.OTP.Verify(ctx, email, code, models.PurposePasswordReset, func(tx *gorm.DB) error {
		found, err := latestAccount(tx, email, true)
		if err != nil {
			return err
		}
		if found == nil {
			return ErrNoActiveAccount
		}
		if err := tx.Model(found).Update("password", string(hash)).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
	return err
}

func (s *AccountService) hasAccount(ctx context.Context, email string, active bool) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND is_active = ?", email, active).
		Count(&n).Error
	return n > 0, err
}

// latestAccount returns nil, nil when no account matches.
func latestAccount(tx *gorm.DB, email string, active bool) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ? AND is_active = ?", email, active).
		Order("date_joined DESC, id DESC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

type verifyFields struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type resetFields struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// FindActiveUser loads an active account by ID.
func (s *AccountService) FindActiveUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
