package maintenance

import (
	"errors"
	"fmt"

	"maintenance-kpi/internal/failure"
)

var (
	// ErrEmptyScheduleID is returned when a schedule id is empty.
	ErrEmptyScheduleID = fmt.Errorf("maintenance: empty schedule id: %w", failure.ErrInvalidArgument)
	// ErrInvalidFrequency is returned when frequency days is not positive.
	ErrInvalidFrequency = fmt.Errorf("maintenance: frequency days must be positive: %w", failure.ErrInvalidArgument)
	// ErrInvalidEventType is returned for unknown event types.
	ErrInvalidEventType = fmt.Errorf("maintenance: invalid event type: %w", failure.ErrInvalidArgument)
	// ErrInvalidCompletedAt is returned when a completion time is zero.
	ErrInvalidCompletedAt = fmt.Errorf("maintenance: invalid completed_at: %w", failure.ErrInvalidArgument)
	// ErrScheduleNotFound is returned when a schedule cannot be found.
	ErrScheduleNotFound = fmt.Errorf("maintenance: schedule not found: %w", failure.ErrNotFound)
	// ErrScheduleConflict is returned when a concurrent completion advanced the schedule first.
	ErrScheduleConflict = fmt.Errorf("maintenance: schedule changed concurrently: %w", failure.ErrConflict)
	// ErrNilEvent is returned when creating a nil event.
	ErrNilEvent = errors.New("maintenance: nil event")
)
