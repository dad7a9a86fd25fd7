package application

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"maintenance-kpi/internal/analytics/domain/statistic"
	"maintenance-kpi/internal/failure"
)

// Dashboard is the summary shown on the KPI landing page. Reliability
// figures are nil when there are not enough samples.
type Dashboard struct {
	GeneratedAt         time.Time
	Periods             int
	StockCompliance     statistic.Compliance
	CancellationRatio   statistic.CancellationRatio
	MTBF                *statistic.MTBFStats
	MaintenanceDuration *statistic.DurationStats
	Turnover            statistic.Turnover
	MaintenanceMix      []statistic.MixPoint
	OrderFinancials     []statistic.FinancialPoint
}

// Dashboard computes the fleet-wide KPIs concurrently. Any storage failure
// fails the whole dashboard.
func (s *ReportService) Dashboard(ctx context.Context, periods int) (result *Dashboard, err error) {
	defer s.observe(kpiDashboard, time.Now(), &err)
	if periods < 1 || periods > s.maxPeriods {
		return nil, ErrInvalidPeriods
	}

	out := &Dashboard{GeneratedAt: s.clock.Now().UTC(), Periods: periods}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.StockCompliance(ctx)
		out.StockCompliance = v
		return err
	})
	g.Go(func() error {
		v, err := s.OrderCancellationRatio(ctx)
		out.CancellationRatio = v
		return err
	})
	g.Go(func() error {
		v, err := s.MTBF(ctx, "")
		if errors.Is(err, failure.ErrNoData) {
			return nil
		}
		if err == nil {
			out.MTBF = &v
		}
		return err
	})
	g.Go(func() error {
		v, err := s.AverageMaintenanceDuration(ctx, "")
		if errors.Is(err, failure.ErrNoData) {
			return nil
		}
		if err == nil {
			out.MaintenanceDuration = &v
		}
		return err
	})
	g.Go(func() error {
		v, err := s.InventoryTurnover(ctx, periods)
		out.Turnover = v
		return err
	})
	g.Go(func() error {
		v, err := s.PreventiveReactive(ctx, periods, statistic.GranularityMonth)
		out.MaintenanceMix = v
		return err
	})
	g.Go(func() error {
		v, err := s.OrderFinancials(ctx, periods)
		out.OrderFinancials = v
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
