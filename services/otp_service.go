package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-backend/metrics"
	"travel-backend/models"
	"travel-backend/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPCodeLength is the number of digits in an issued code.
const OTPCodeLength = 6

// OTPService issues and verifies emailed one-time codes.
type OTPService struct {
	DB     *gorm.DB
	Mailer utils.Mailer

	now func() time.Time
}

func NewOTPService(db *gorm.DB, mailer utils.Mailer) *OTPService {
	return &OTPService{DB: db, Mailer: mailer, now: time.Now}
}

func otpMessage(purpose models.OTPPurpose, code string) (subject, body string) {
	minutes := int(models.OTPLifetime / time.Minute)
	switch purpose {
	case models.PurposePasswordReset:
		return "Reset your password",
			fmt.Sprintf("Your password reset code is: %s\n\nThis code will expire in %d minutes.", code, minutes)
	default:
		return "Verify your email",
			fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %d minutes.", code, minutes)
	}
}

// Issue replaces any code held for (email, purpose) with a fresh one and
// mails it. The record is committed before the mail is sent, so a mail
// failure leaves a usable code behind and is reported as ErrEmailSendFailed.
func (s *OTPService) Issue(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPVerification, error) {
	email = strings.TrimSpace(email)
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose.WithMessage("unknown OTP purpose %q", purpose)
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	code, err := utils.GenerateNumericCode(OTPCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.now().UTC()
	record := models.OTPVerification{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(models.OTPLifetime),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND purpose = ?", email, purpose).
			Delete(&models.OTPVerification{}).Error; err != nil {
			return fmt.Errorf("delete previous otp: %w", err)
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("create otp: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.OTPIssued.WithLabelValues(string(purpose), metrics.OutcomeError).Inc()
		return nil, err
	}

	subject, body := otpMessage(purpose, code)
	if err := s.Mailer.Send(email, subject, body); err != nil {
		metrics.OTPIssued.WithLabelValues(string(purpose), metrics.OutcomeError).Inc()
		log.Error().Err(err).Str("email", utils.MaskEmail(email)).Str("purpose", string(purpose)).Msg("otp email not delivered")
		return &record, ErrEmailSendFailed.Wrap(err)
	}

	metrics.OTPIssued.WithLabelValues(string(purpose), metrics.OutcomeOK).Inc()
	log.Info().Str("email", utils.MaskEmail(email)).Str("purpose", string(purpose)).Msg("otp issued")
	return &record, nil
}

// Verify consumes the code for (email, purpose). onVerified runs inside the
// same transaction before the code is marked used; if it fails nothing is
// committed and the code stays usable.
func (s *OTPService) Verify(
	ctx context.Context,
	email, code string,
	purpose models.OTPPurpose,
	onVerified func(tx *gorm.DB) error,
) (*models.OTPVerification, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if !purpose.Valid() {
		return nil, ErrInvalidPurpose.WithMessage("unknown OTP purpose %q", purpose)
	}
	if !utils.IsNumericCode(code, OTPCodeLength) {
		metrics.OTPVerified.WithLabelValues(string(purpose), metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidCode
	}

	var record models.OTPVerification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ? AND otp = ? AND purpose = ? AND is_verified = ?", email, code, purpose, false).
			Order("id DESC").
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		if err != nil {
			return fmt.Errorf("load otp: %w", err)
		}

		if !record.IsValid(s.now().UTC()) {
			return ErrExpired
		}

		if onVerified != nil {
			if err := onVerified(tx); err != nil {
				return err
			}
		}

		if err := tx.Model(&record).Update("is_verified", true).Error; err != nil {
			return fmt.Errorf("mark otp verified: %w", err)
		}
		record.Verified = true
		return nil
	})
	if err != nil {
		metrics.OTPVerified.WithLabelValues(string(purpose), verifyOutcome(err)).Inc()
		return nil, err
	}

	metrics.OTPVerified.WithLabelValues(string(purpose), metrics.OutcomeOK).Inc()
	return &record, nil
}

func verifyOutcome(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCode):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrExpired):
		return metrics.OutcomeExpired
	default:
		if _, ok := AsError(err); ok {
			return metrics.OutcomeRejected
		}
		return metrics.OutcomeError
	}
}
