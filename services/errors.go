package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/repository"
)

var (
	// ErrStoreUnavailable means the document store could not be reached
	ErrStoreUnavailable = repository.ErrUnavailable
	// ErrStoreTimeout means a store call did not finish within its deadline
	ErrStoreTimeout = repository.ErrTimeout
	// ErrOrderNotFound is returned by order lookups that match nothing
	ErrOrderNotFound = errors.New("order not found")
	// ErrConcurrentUpdate is returned when a cart write kept losing to writers
	// in other processes
	ErrConcurrentUpdate = errors.New("cart was modified concurrently, try again")
)

// ValidationError reports malformed input. It is always returned before any
// mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// storeError annotates err with the failing operation and makes deadline
// expiry distinguishable as ErrStoreTimeout.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrStoreTimeout) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
