package solarledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("solarledger: not found")
	ErrInvalidInput = errors.New("solarledger: invalid input")

	// Accrual errors
	ErrInvalidRange = errors.New("solarledger: as-of date precedes join date")

	// Member errors
	ErrMemberNotFound  = errors.New("solarledger: member not found")
	ErrDuplicateHandle = errors.New("solarledger: handle already registered")
	ErrHandleConflict  = errors.New("solarledger: handle belongs to a different member")
	ErrNegativeBalance = errors.New("solarledger: balance below zero")

	// Trade errors
	ErrTradeNotFound   = errors.New("solarledger: trade not found")
	ErrInvalidQuantity = errors.New("solarledger: trade quantity must be positive")
	ErrInvalidPrice    = errors.New("solarledger: trade price must be positive")

	// Market errors
	ErrListingNotFound = errors.New("solarledger: listing not found")
	ErrInvalidListing  = errors.New("solarledger: listing must have positive kwh and price")
	ErrUnknownKind     = errors.New("solarledger: unknown listing kind")

	// Protocol errors
	ErrProtocolDrift   = errors.New("solarledger: protocol constants drifted from pinned hash")
	ErrInvalidProtocol = errors.New("solarledger: invalid protocol constants")

	// Store errors
	ErrStoreNotReady     = errors.New("solarledger: store not ready")
	ErrStoreClosed       = errors.New("solarledger: store is closed")
	ErrMigrationFailed   = errors.New("solarledger: migration failed")
	ErrTransactionFailed = errors.New("solarledger: transaction failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("solarledger: validation failed for %s: %s", e.Field, e.Message)
}

// MemberError wraps an error with the member it occurred on, so that
// batch operations can report which member failed.
type MemberError struct {
	MemberID string
	Handle   string
	Err      error
}

func (e MemberError) Error() string {
	return fmt.Sprintf("solarledger: member %s (%s): %v", e.MemberID, e.Handle, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e MemberError) Unwrap() error { return e.Err }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "solarledger: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("solarledger: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrTradeNotFound) ||
		errors.Is(err, ErrListingNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateHandle) ||
		errors.Is(err, ErrHandleConflict)
}

// IsInvalid returns true if the error is a caller input problem.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidListing)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
