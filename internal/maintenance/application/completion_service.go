package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"maintenance-kpi/internal/failure"
	"maintenance-kpi/internal/maintenance/application/events"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	"maintenance-kpi/internal/observability/metrics"
)

// EquipmentFallback decides which equipment a completion event is linked to
// when the schedule has none.
type EquipmentFallback string

const (
	// FallbackNone leaves the event unlinked.
	FallbackNone EquipmentFallback = "none"
	// FallbackFirst links the event to the first known equipment.
	FallbackFirst EquipmentFallback = "first"
)

// ParseEquipmentFallback parses a fallback policy; empty means none.
func ParseEquipmentFallback(value string) (EquipmentFallback, error) {
	switch EquipmentFallback(strings.ToLower(strings.TrimSpace(value))) {
	case "", FallbackNone:
		return FallbackNone, nil
	case FallbackFirst:
		return FallbackFirst, nil
	default:
		return "", fmt.Errorf("maintenance: unknown equipment fallback %q: %w", value, failure.ErrInvalidArgument)
	}
}

// Publisher publishes domain events after commit.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// CompleteOptions customizes a completion request.
type CompleteOptions struct {
	// ExpectedNextDue, when set, must equal the stored NextDue or the
	// completion fails with a conflict.
	ExpectedNextDue *time.Time
	CompletedBy     string
}

// CompletionService marks schedules complete and advances their due dates.
type CompletionService struct {
	tx        maintenance.TxRunner
	clock     Clock
	newID     func() string
	fallback  EquipmentFallback
	publisher Publisher
	timeout   time.Duration
	logger    *log.Logger
}

// CompletionOption customizes the completion service.
type CompletionOption func(*CompletionService)

// WithCompletionClock assigns a clock.
func WithCompletionClock(clock Clock) CompletionOption {
	return func(s *CompletionService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithEquipmentFallback assigns the fallback policy.
func WithEquipmentFallback(policy EquipmentFallback) CompletionOption {
	return func(s *CompletionService) {
		s.fallback = policy
	}
}

// WithPublisher assigns a publisher for ScheduleCompleted events.
func WithPublisher(publisher Publisher) CompletionOption {
	return func(s *CompletionService) {
		s.publisher = publisher
	}
}

// WithCompletionTimeout bounds the completion transaction.
func WithCompletionTimeout(timeout time.Duration) CompletionOption {
	return func(s *CompletionService) {
		s.timeout = timeout
	}
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(newID func() string) CompletionOption {
	return func(s *CompletionService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewCompletionService constructs a completion service.
func NewCompletionService(tx maintenance.TxRunner, logger *log.Logger, opts ...CompletionOption) (*CompletionService, error) {
	if tx == nil {
		return nil, errors.New("completion service: nil tx runner")
	}
	if logger == nil {
		logger = log.Default()
	}
	service := &CompletionService{
		tx:       tx,
		clock:    systemClock{},
		newID:    uuid.NewString,
		fallback: FallbackNone,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Complete records a completion of the schedule at the current time. The
// schedule update and the SCHEDULED_MAINTENANCE event commit together.
func (s *CompletionService) Complete(ctx context.Context, scheduleID string, opts CompleteOptions) (*maintenance.Schedule, error) {
	if s == nil {
		return nil, errors.New("completion service: nil service")
	}
	start := time.Now()
	schedule, evt, err := s.complete(ctx, scheduleID, opts)
	metrics.ObserveCompletion(metrics.ResultOf(err), time.Since(start))
	if err != nil {
		if !errors.Is(err, failure.ErrInvalidArgument) && !errors.Is(err, failure.ErrNotFound) {
			s.logger.Printf("schedule completion failed: schedule=%s err=%v", scheduleID, err)
		}
		return nil, err
	}

	s.logger.Printf("schedule completed: schedule=%s next_due=%s event=%s", schedule.ID, schedule.NextDue.Format(time.RFC3339), evt.ID)
	if s.publisher != nil {
		completed := events.ScheduleCompleted{
			ScheduleID:      schedule.ID,
			EquipmentID:     evt.EquipmentID,
			EventID:         evt.ID,
			CompletedBy:     evt.CreatedBy,
			PreviousNextDue: evt.ScheduledDate,
			NextDue:         *schedule.NextDue,
			OccurredAt:      *evt.CompletedDate,
		}
		if err := s.publisher.Publish(ctx, completed); err != nil {
			s.logger.Printf("publish schedule completed failed: schedule=%s err=%v", schedule.ID, err)
		}
	}
	return schedule, nil
}

func (s *CompletionService) complete(ctx context.Context, scheduleID string, opts CompleteOptions) (*maintenance.Schedule, *maintenance.Event, error) {
	if strings.TrimSpace(scheduleID) == "" {
		return nil, nil, maintenance.ErrEmptyScheduleID
	}
	createdBy := opts.CompletedBy
	if createdBy == "" {
		createdBy = "system"
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		result *maintenance.Schedule
		event  *maintenance.Event
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx maintenance.Tx) error {
		current, err := tx.GetForUpdate(ctx, scheduleID)
		if err != nil {
			return err
		}
		if opts.ExpectedNextDue != nil && !maintenance.SameDue(current.NextDue, opts.ExpectedNextDue) {
			return maintenance.ErrScheduleConflict
		}

		completion, err := current.Complete(s.clock.Now().UTC())
		if err != nil {
			return err
		}

		equipmentID := current.EquipmentID
		if equipmentID == "" && s.fallback == FallbackFirst {
			equipmentID, err = tx.FirstEquipmentID(ctx)
			if err != nil {
				return err
			}
		}

		if err := tx.Advance(ctx, completion.Schedule, completion.PreviousNextDue); err != nil {
			return err
		}
		evt := completion.AuditEvent(s.newID(), equipmentID, createdBy)
		if err := tx.CreateEvent(ctx, evt); err != nil {
			return fmt.Errorf("maintenance: record completion event: %w", err)
		}

		advanced := completion.Schedule
		result = &advanced
		event = evt
		return nil
	})
	if err != nil {
		return nil, nil, failure.Unavailable(err)
	}
	return result, event, nil
}
