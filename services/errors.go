package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind groups service errors by how a caller should treat them.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindExpired      Kind = "expired"
	KindConflict     Kind = "conflict"
	KindUpstream     Kind = "upstream"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error is a structured failure carrying a machine-readable code.
// Two Errors match under errors.Is when their codes are equal, so wrapped
// copies with a different message still match the sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a different human-readable message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

var (
	ErrInvalidCode      = &Error{Kind: KindValidation, Code: "invalid_code", Message: "Invalid OTP"}
	ErrExpired          = &Error{Kind: KindExpired, Code: "otp_expired", Message: "OTP has expired"}
	ErrInvalidPurpose   = &Error{Kind: KindValidation, Code: "invalid_purpose", Message: "Unknown OTP purpose"}
	ErrNoPendingAccount = &Error{Kind: KindNotFound, Code: "no_pending_account", Message: "No pending verification found for this email"}
	ErrNoActiveAccount  = &Error{Kind: KindNotFound, Code: "no_active_account", Message: "No active account found with this email"}
	ErrEmailSendFailed  = &Error{Kind: KindUpstream, Code: "email_send_failed", Message: "Failed to send email"}
	ErrAccountExists    = &Error{Kind: KindConflict, Code: "account_exists", Message: "An account with this username already exists"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Code: "invalid_credentials", Message: "No active account found with the given credentials"}
	ErrTokenMissing       = &Error{Kind: KindValidation, Code: "token_missing", Message: "Refresh token is required"}
	ErrTokenInvalid       = &Error{Kind: KindUnauthorized, Code: "token_not_valid", Message: "Token is invalid or expired"}
	ErrUserNotFound       = &Error{Kind: KindUnauthorized, Code: "user_not_found", Message: "User no longer exists"}
	ErrTokenUserMismatch  = &Error{Kind: KindUnauthorized, Code: "token_user_mismatch", Message: "Token does not belong to the current user"}

	ErrDestinationNotFound = &Error{Kind: KindNotFound, Code: "destination_not_found", Message: "Destination not found"}
	ErrRatesNotConfigured  = &Error{Kind: KindConflict, Code: "rates_not_configured", Message: "Rates not set for destination"}
	ErrRateNotFound        = &Error{Kind: KindNotFound, Code: "rate_not_found", Message: "No rate card for this destination"}
	ErrCategoryNotFound    = &Error{Kind: KindNotFound, Code: "category_not_found", Message: "Category not found"}
	ErrTourNotFound        = &Error{Kind: KindNotFound, Code: "tour_not_found", Message: "Tour not found"}
	ErrNotOwner            = &Error{Kind: KindForbidden, Code: "not_owner", Message: "You do not have permission to modify this tour"}
	ErrSlugTaken           = &Error{Kind: KindConflict, Code: "slug_taken", Message: "Slug already in use"}
)

// Field validation codes.
const (
	CodeBlank                = "blank"
	CodeRequired             = "required"
	CodeInvalid              = "invalid"
	CodeReadOnly             = "read_only"
	CodeStartInPast          = "start_in_past"
	CodeEndBeforeStart       = "end_before_start"
	CodeNegativeParticipants = "negative_participants"
	CodeDestinationNotFound  = "destination_not_found"
	CodeRatesNotConfigured   = "rates_not_configured"
	CodePriceOutOfRange      = "price_out_of_range"
)

// FieldError is one failed field-level check.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed check of a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, code, message string) {
	*v = append(*v, FieldError{Field: field, Code: code, Message: message})
}

// Has reports whether a given field/code pair was recorded.
func (v ValidationErrors) Has(field, code string) bool {
	for _, fe := range v {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was collected, so callers can return it directly.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AsValidation extracts ValidationErrors from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsError extracts a structured *Error from err.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
