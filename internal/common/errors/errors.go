package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeForbidden  ErrorCode = "FORBIDDEN"
	ErrCodeConflict   ErrorCode = "CONFLICT"

	// Tier and admission errors
	ErrCodeUnknownTier        ErrorCode = "UNKNOWN_TIER"
	ErrCodeQuotaExceeded      ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeValueLimitExceeded ErrorCode = "VALUE_LIMIT_EXCEEDED"
	ErrCodePaidEntriesDenied  ErrorCode = "PAID_ENTRIES_DENIED"

	// Purchase errors
	ErrCodeGiveawayNotActive ErrorCode = "GIVEAWAY_NOT_ACTIVE"
	ErrCodeGiveawayExpired   ErrorCode = "GIVEAWAY_EXPIRED"
	ErrCodeCapacityExceeded  ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeInvalidSlotCount  ErrorCode = "INVALID_SLOT_COUNT"

	// Draw errors
	ErrCodeNoEntries    ErrorCode = "NO_ENTRIES"
	ErrCodeAlreadyDrawn ErrorCode = "ALREADY_DRAWN"

	// State machine errors
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// Storage errors
	ErrCodeStorageError    ErrorCode = "STORAGE_ERROR"
	ErrCodeVersionConflict ErrorCode = "VERSION_CONFLICT"

	// A stored invariant observed broken (e.g. sold count above capacity).
	// Fatal to the operation, never silently corrected.
	ErrCodeDataIntegrity ErrorCode = "DATA_INTEGRITY"
)

// AppError is the typed application error carried across layers.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is match on the error code, so callers can compare
// against sentinel AppErrors without caring about details.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// IsRecoverable reports whether the error is a caller mistake that should be
// surfaced for user-facing messaging (as opposed to an internal failure).
func (e *AppError) IsRecoverable() bool {
	switch e.Code {
	case ErrCodeInternal, ErrCodeStorageError, ErrCodeDataIntegrity:
		return false
	}
	return true
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new application error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AsAppError extracts an AppError from err, if present.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Constructors for frequently used errors

// NewUnknownTierError is returned for a tier outside the known set. The tier
// is never silently defaulted: under-privileging and over-privileging are
// both quota bypasses.
func NewUnknownTierError(tier string) *AppError {
	return Newf(ErrCodeUnknownTier, "unknown trust tier: %q", tier).
		WithDetail("tier", tier)
}

// NewQuotaExceededError is returned when a creator hit the monthly quota.
func NewQuotaExceededError(limit, current int) *AppError {
	return Newf(ErrCodeQuotaExceeded, "monthly giveaway quota of %d reached", limit).
		WithDetail("limit", limit).
		WithDetail("current", current)
}

// NewValueLimitExceededError is returned when a proposed value exceeds the
// tier's maximum giveaway value.
func NewValueLimitExceededError(limit, proposed int64) *AppError {
	return Newf(ErrCodeValueLimitExceeded, "giveaway value %d exceeds tier limit %d", proposed, limit).
		WithDetail("limit", limit).
		WithDetail("proposed", proposed)
}

// NewNotFoundError creates a "not found" error.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return Newf(ErrCodeNotFound, "%s not found", resource).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewCapacityExceededError is returned when a purchase does not fit into the
// remaining capacity.
func NewCapacityExceededError(capacity, sold, requested int) *AppError {
	return New(ErrCodeCapacityExceeded, "not enough entry slots remaining").
		WithDetail("capacity", capacity).
		WithDetail("sold", sold).
		WithDetail("requested", requested)
}

// NewDataIntegrityError reports a broken stored invariant. Must be logged as
// a data-integrity alert by the caller.
func NewDataIntegrityError(message string) *AppError {
	return New(ErrCodeDataIntegrity, message)
}

// NewStorageError wraps a persistence failure.
func NewStorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageError, fmt.Sprintf("storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewInvalidTransitionError is returned for an illegal lifecycle transition.
func NewInvalidTransitionError(from, to string) *AppError {
	return Newf(ErrCodeInvalidTransition, "illegal status transition %s -> %s", from, to).
		WithDetail("from", from).
		WithDetail("to", to)
}
