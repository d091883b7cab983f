package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"travel-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newOTPService(t *testing.T) (*OTPService, *mockMailer, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	mailer := &mockMailer{}
	svc := NewOTPService(db, mailer)
	svc.now = fixedClock(t0)
	return svc, mailer, db
}

func countOTPs(t *testing.T, db *gorm.DB, email string, purpose models.OTPPurpose) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.OTPVerification{}).Where("email = ? AND purpose = ?", email, purpose).Count(&n).Error)
	return n
}

func TestIssue_NewRegistrationCode(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	mailer.On("Send", "user@example.com", "Verify your email", mock.MatchedBy(func(body string) bool {
		return strings.HasPrefix(body, "Your verification code is: ") &&
			strings.HasSuffix(body, "This code will expire in 10 minutes.")
	})).Return(nil).Once()

	otp, err := svc.Issue(context.Background(), "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	assert.Len(t, otp.Code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, otp.Code)
	assert.Equal(t, otp.CreatedAt.Add(10*time.Minute), otp.ExpiresAt)
	assert.False(t, otp.Verified)
	mailer.AssertExpectations(t)
}

func TestIssue_PasswordResetTemplate(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	var body string
	mailer.On("Send", "user@example.com", "Reset your password", mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).
		Return(nil).Once()

	otp, err := svc.Issue(context.Background(), "user@example.com", models.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "Your password reset code is: "+otp.Code+"\n\nThis code will expire in 10 minutes.", body)
}

func TestIssue_ReplacesOnlySamePair(t *testing.T) {
	svc, mailer, db := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "user@example.com", models.PurposePasswordReset)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, "other@example.com", models.PurposeRegistration)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countOTPs(t, db, "user@example.com", models.PurposeRegistration))
	assert.EqualValues(t, 1, countOTPs(t, db, "user@example.com", models.PurposePasswordReset))
	assert.EqualValues(t, 1, countOTPs(t, db, "other@example.com", models.PurposeRegistration))

	var stored models.OTPVerification
	require.NoError(t, db.Where("email = ? AND purpose = ?", "user@example.com", models.PurposeRegistration).First(&stored).Error)
	assert.Equal(t, second.Code, stored.Code)
}

func TestIssue_MailFailureKeepsRecord(t *testing.T) {
	svc, mailer, db := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	otp, err := svc.Issue(context.Background(), "user@example.com", models.PurposeRegistration)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailSendFailed)
	require.NotNil(t, otp)
	assert.EqualValues(t, 1, countOTPs(t, db, "user@example.com", models.PurposeRegistration))
}

func TestIssue_UnknownPurpose(t *testing.T) {
	svc, mailer, _ := newOTPService(t)

	_, err := svc.Issue(context.Background(), "user@example.com", models.OTPPurpose("LOGIN"))
	assert.ErrorIs(t, err, ErrInvalidPurpose)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_WrongCode(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	otp, err := svc.Issue(context.Background(), "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "111111"
	}
	_, err = svc.Verify(context.Background(), "user@example.com", wrong, models.PurposeRegistration, nil)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.Verify(context.Background(), "user@example.com", "12ab", models.PurposeRegistration, nil)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_SingleUse(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	otp, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	calls := 0
	onVerified := func(*gorm.DB) error { calls++; return nil }

	got, err := svc.Verify(ctx, "user@example.com", otp.Code, models.PurposeRegistration, onVerified)
	require.NoError(t, err)
	assert.True(t, got.Verified)

	_, err = svc.Verify(ctx, "user@example.com", otp.Code, models.PurposeRegistration, onVerified)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, 1, calls)
}

func TestVerify_Expired(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	otp, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	svc.now = fixedClock(t0.Add(10*time.Minute + time.Second))
	_, err = svc.Verify(ctx, "user@example.com", otp.Code, models.PurposeRegistration, func(*gorm.DB) error {
		t.Fatal("side effect must not run for an expired code")
		return nil
	})
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_AtExpiryStillValid(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	otp, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	svc.now = fixedClock(t0.Add(10 * time.Minute))
	_, err = svc.Verify(ctx, "user@example.com", otp.Code, models.PurposeRegistration, nil)
	assert.NoError(t, err)
}

func TestVerify_PurposeMismatch(t *testing.T) {
	svc, mailer, _ := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	otp, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "user@example.com", otp.Code, models.PurposePasswordReset, nil)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerify_SideEffectFailureLeavesCodeUnused(t *testing.T) {
	svc, mailer, db := newOTPService(t)
	mailer.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()
	otp, err := svc.Issue(ctx, "user@example.com", models.PurposeRegistration)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, "user@example.com", otp.Code, models.PurposeRegistration, func(*gorm.DB) error {
		return ErrNoPendingAccount
	})
	assert.ErrorIs(t, err, ErrNoPendingAccount)

	var stored models.OTPVerification
	require.NoError(t, db.First(&stored, otp.ID).Error)
	assert.False(t, stored.Verified)
}
