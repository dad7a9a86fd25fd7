// Package failure defines the error kinds shared by the KPI and maintenance
// contexts. Domain packages declare their own sentinels that wrap one of these
// kinds, so callers can branch with errors.Is on either.
package failure

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for bad caller input, before any storage call.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a concurrent writer won a race.
	ErrConflict = errors.New("conflict")
	// ErrNoData is returned when a metric is well-defined but has no valid samples.
	ErrNoData = errors.New("no data")
	// ErrUnavailable is returned when storage timed out or failed.
	ErrUnavailable = errors.New("unavailable")
)

// Unavailable wraps a storage error so it matches ErrUnavailable while
// keeping the original cause. Errors that already carry a known kind are
// returned unchanged.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: storage timeout: %w", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// IsKnown reports whether err already matches one of the kinds above.
func IsKnown(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrUnavailable)
}
