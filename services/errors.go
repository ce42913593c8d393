package services

import (
	"errors"
	"fmt"

	"github.com/NightSight1044/legalCRM1/metrics"
)

var (
	// ErrNotAuthenticated is returned when no actor is attached to the request
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrProfileNotFound means the actor is authenticated but not yet attached to a firm
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNotFound covers both missing ids and ids owned by another firm
	ErrNotFound = errors.New("not found")
	// ErrInvalidTimeRange is returned when an event does not end after it starts
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	// ErrCrossTenantAccess signals a row from another firm reached the scoped store
	ErrCrossTenantAccess = errors.New("cross-tenant access denied")
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned by Login for a bad email or password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionExpired is returned for unknown or expired session tokens
	ErrSessionExpired = errors.New("session expired")
)

// ValidationError reports a single user-correctable field problem
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any field
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError and counts it
func NewValidationError(field, reason string) *ValidationError {
	metrics.RecordValidationFailure(field)
	return &ValidationError{Field: field, Reason: reason}
}
