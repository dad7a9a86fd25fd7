package application

import (
	"context"
	"errors"
	"log"
	"time"

	maintenance "maintenance-kpi/internal/maintenance/domain"
	"maintenance-kpi/internal/observability/metrics"
)

const defaultSweepInterval = 15 * time.Minute

// Sweeper periodically recomputes schedule statuses, logs overdue schedules
// and publishes per-status gauges.
type Sweeper struct {
	statuses *StatusService
	interval time.Duration
	logger   *log.Logger
	notifier OverdueNotifier
}

// OverdueNotifier receives the overdue schedules found by each sweep.
type OverdueNotifier interface {
	NotifyOverdue(ctx context.Context, overdue []maintenance.ScheduleStatus) error
}

// SweeperOption customizes a Sweeper.
type SweeperOption func(*Sweeper)

// WithOverdueNotifier forwards overdue schedules to notifier.
func WithOverdueNotifier(notifier OverdueNotifier) SweeperOption {
	return func(s *Sweeper) {
		s.notifier = notifier
	}
}

// NewSweeper constructs a sweeper.
func NewSweeper(statuses *StatusService, interval time.Duration, logger *log.Logger, opts ...SweeperOption) (*Sweeper, error) {
	if statuses == nil {
		return nil, errors.New("sweeper: nil status service")
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	sweeper := &Sweeper{statuses: statuses, interval: interval, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(sweeper)
		}
	}
	return sweeper, nil
}

// Start runs sweeps until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Printf("overdue sweep error: %v", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Printf("overdue sweep error: %v", err)
			}
		}
	}
}

// Sweep runs one pass and returns the overdue schedules.
func (s *Sweeper) Sweep(ctx context.Context) ([]maintenance.ScheduleStatus, error) {
	statuses, err := s.statuses.Statuses(ctx)
	if err != nil {
		metrics.IncSweep(metrics.ResultError)
		return nil, err
	}
	for status, count := range CountByStatus(statuses) {
		metrics.SetSchedulesByStatus(string(status), count)
	}

	var overdue []maintenance.ScheduleStatus
	for _, status := range statuses {
		if status.Status != maintenance.StatusOverdue {
			continue
		}
		overdue = append(overdue, status)
		s.logger.Printf("schedule overdue: schedule=%s name=%q days=%d", status.ScheduleID, status.Name, -status.DaysUntilDue)
	}
	if s.notifier != nil && len(overdue) > 0 {
		if err := s.notifier.NotifyOverdue(ctx, overdue); err != nil {
			s.logger.Printf("overdue notify error: count=%d err=%v", len(overdue), err)
		}
	}
	metrics.IncSweep(metrics.ResultSuccess)
	return overdue, nil
}
