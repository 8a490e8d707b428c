package application

import (
	"errors"
	"fmt"

	"github.com/hilloIsTheBest/Reservation-hub/internal/persistence"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a uniqueness constraint rejects an entity.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrConflict is returned when a requested booking overlaps an existing reservation.
	ErrConflict = errors.New("application: booking conflict")
	// ErrInvalidCredentials is returned when authentication input cannot be verified.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a session token has been revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
	// ErrResourceInUse is returned when deleting a resource that still has reservations.
	ErrResourceInUse = errors.New("application: resource has reservations")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// Reconciliation stages reported by SyncError.
const (
	SyncStageFetchResources = "fetch-resources"
	SyncStageFetchCalendar  = "fetch-calendar"
	SyncStageApply          = "apply"
)

// SyncError wraps a reconciliation failure with the stage it occurred in so
// callers can tell a remote fetch problem from a local apply problem.
type SyncError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// mapRepoError converts persistence sentinels into application errors.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrResourceInUse
	}
	return err
}
