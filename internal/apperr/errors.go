package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure classes the ledger distinguishes.
// Callers branch on these with errors.Is.
var (
	// ErrValidation covers bad input: non-positive amounts, missing required
	// fields, malformed Zelle references, entity-type/identity mismatches.
	// Never retried; nothing is persisted.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers operations referencing a missing account,
	// installment or plan id.
	ErrNotFound = errors.New("record not found")

	// ErrConflict covers state-machine violations, e.g. paying an already
	// settled account or cancelling a completed plan.
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrPersistence covers transient store failures. This is the only class
	// for which caller-level retry with backoff is appropriate.
	ErrPersistence = errors.New("persistence failure")
)

// Error wraps one of the sentinel classes with human-readable detail
type Error struct {
	Kind    error
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Details)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation builds a validation error with formatted detail
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Details: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error with formatted detail
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Details: fmt.Sprintf(format, args...)}
}

// Conflict builds a conflict error with formatted detail
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Details: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store error, keeping the cause in the detail string
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrPersistence, Details: err.Error()}
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsPersistence reports whether err is a transient persistence error
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
