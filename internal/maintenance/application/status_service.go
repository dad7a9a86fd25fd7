package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"maintenance-kpi/internal/failure"
	maintenance "maintenance-kpi/internal/maintenance/domain"
)

// StatusService derives due statuses for all schedules.
type StatusService struct {
	schedules   maintenance.ScheduleRepository
	clock       Clock
	dueSoonDays int
	timeout     time.Duration
}

// StatusOption customizes the status service.
type StatusOption func(*StatusService)

// WithStatusClock assigns a clock.
func WithStatusClock(clock Clock) StatusOption {
	return func(s *StatusService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDueSoonDays sets the DUE_SOON horizon.
func WithDueSoonDays(days int) StatusOption {
	return func(s *StatusService) {
		if days >= 0 {
			s.dueSoonDays = days
		}
	}
}

// WithStatusTimeout bounds each storage call.
func WithStatusTimeout(timeout time.Duration) StatusOption {
	return func(s *StatusService) {
		s.timeout = timeout
	}
}

// NewStatusService constructs a status service.
func NewStatusService(schedules maintenance.ScheduleRepository, opts ...StatusOption) (*StatusService, error) {
	if schedules == nil {
		return nil, errors.New("status service: nil schedule repository")
	}
	service := &StatusService{
		schedules:   schedules,
		clock:       systemClock{},
		dueSoonDays: maintenance.DefaultDueSoonDays,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Statuses returns every schedule with its derived status, most urgent first.
func (s *StatusService) Statuses(ctx context.Context) ([]maintenance.ScheduleStatus, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, failure.Unavailable(err)
	}
	now := s.clock.Now()
	out := make([]maintenance.ScheduleStatus, 0, len(schedules))
	for _, schedule := range schedules {
		out = append(out, maintenance.DeriveStatus(schedule, now, s.dueSoonDays))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysUntilDue != out[j].DaysUntilDue {
			return out[i].DaysUntilDue < out[j].DaysUntilDue
		}
		return out[i].ScheduleID < out[j].ScheduleID
	})
	return out, nil
}

// CountByStatus tallies statuses, including zero counts.
func CountByStatus(statuses []maintenance.ScheduleStatus) map[maintenance.DueStatus]int {
	counts := map[maintenance.DueStatus]int{
		maintenance.StatusUpcoming: 0,
		maintenance.StatusDueSoon:  0,
		maintenance.StatusOverdue:  0,
	}
	for _, status := range statuses {
		counts[status.Status]++
	}
	return counts
}
