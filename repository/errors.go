package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects an insert
	ErrDuplicate = errors.New("duplicate document")
	// ErrVersionConflict is returned when a conditional write matched nothing
	ErrVersionConflict = errors.New("document version conflict")
	// ErrUnavailable is returned when the store cannot be reached
	ErrUnavailable = errors.New("document store unavailable")
	// ErrTimeout is returned when a store call exceeded its deadline
	ErrTimeout = errors.New("document store timeout")
)

// classify maps driver errors onto the package's sentinel errors
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case strings.Contains(strings.ToLower(err.Error()), "server selection"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// ctxErr reports a cancelled or expired context the same way classify does
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return classify(err)
	}
	return nil
}
