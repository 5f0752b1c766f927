package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed domain error carrying an HTTP status and optional
// structured context so callers can explain a denial without re-deriving
// the calendar rule.
type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so sentinels survive Clone/WithDetails copies.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinel errors for the booking engine and its surrounding surface.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrNotOwner           = New("NOT_OWNER", http.StatusForbidden, "booking belongs to another sponsor")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// ErrBlockedDay rejects bookings on days where no tutoring happens.
	ErrBlockedDay = New("INVALID_DATE", http.StatusBadRequest, "no tutoring allowed on the requested date")
	// ErrSlotTaken is the compare-and-set failure on concurrent creates.
	ErrSlotTaken = New("SLOT_TAKEN", http.StatusConflict, "an active booking already exists for this learner and date")
	// ErrStaleOverride means the booking being overridden is no longer active.
	ErrStaleOverride = New("STALE_OVERRIDE", http.StatusConflict, "the booking to override is no longer active")
	// ErrSlotDenied is a non-overridable denial: the holder keeps the slot.
	ErrSlotDenied = New("SLOT_DENIED", http.StatusForbidden, "another sponsor holds this learner for the requested date")
	// ErrOverrideRequired is the recoverable two-phase condition; the caller
	// resubmits with override confirmed after obtaining consent.
	ErrOverrideRequired = New("OVERRIDE_REQUIRED", http.StatusConflict, "learner already booked by another sponsor, but you have priority")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// WithDetails copies the error and attaches structured context.
func WithDetails(err *Error, details map[string]interface{}) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Details = details
	return &clone
}
