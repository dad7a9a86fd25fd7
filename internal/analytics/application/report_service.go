package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"maintenance-kpi/internal/analytics/domain/statistic"
	"maintenance-kpi/internal/failure"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	masterdata "maintenance-kpi/internal/masterdata/domain"
	"maintenance-kpi/internal/observability/metrics"
	procurement "maintenance-kpi/internal/procurement/domain"
)

const (
	// DefaultMaxPeriods caps the window count a caller may request.
	DefaultMaxPeriods = 36

	kpiStockCompliance     = "stock_compliance"
	kpiInventoryTurnover   = "inventory_turnover"
	kpiMaintenanceMix      = "maintenance_mix"
	kpiMTBF                = "mtbf"
	kpiMaintenanceDuration = "maintenance_duration"
	kpiOrderFinancials     = "order_financials"
	kpiOrderCancellations  = "order_cancellations"
	kpiSupplierPrices      = "supplier_prices"
	kpiDashboard           = "dashboard"
)

// ErrInvalidPeriods is returned when a period count is outside [1, max].
var ErrInvalidPeriods = fmt.Errorf("analytics: periods out of range: %w", failure.ErrInvalidArgument)

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Readers groups the storage collaborators the report service reads from.
type Readers struct {
	Events        maintenance.EventReader
	Parts         masterdata.PartReader
	SupplierParts masterdata.SupplierPartReader
	Orders        procurement.OrderReader
	// Equipment is optional; when set, equipment filters are checked for existence.
	Equipment masterdata.EquipmentReader
}

// ReportService computes KPIs from point-in-time storage snapshots.
type ReportService struct {
	readers    Readers
	clock      Clock
	classify   maintenance.Classifier
	maxPeriods int
	timeout    time.Duration
	logger     *log.Logger
}

// Option customizes the report service.
type Option func(*ReportService)

// WithClock assigns a clock.
func WithClock(clock Clock) Option {
	return func(s *ReportService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithClassifier assigns the preventive/reactive classifier.
func WithClassifier(classify maintenance.Classifier) Option {
	return func(s *ReportService) {
		if classify != nil {
			s.classify = classify
		}
	}
}

// WithMaxPeriods sets the upper bound on requested periods.
func WithMaxPeriods(max int) Option {
	return func(s *ReportService) {
		if max > 0 {
			s.maxPeriods = max
		}
	}
}

// WithQueryTimeout bounds every KPI computation including its storage calls.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(s *ReportService) {
		s.timeout = timeout
	}
}

// WithLogger assigns a logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *ReportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewReportService constructs a report service.
func NewReportService(readers Readers, opts ...Option) (*ReportService, error) {
	if readers.Events == nil {
		return nil, errors.New("report service: nil event reader")
	}
	if readers.Parts == nil || readers.SupplierParts == nil {
		return nil, errors.New("report service: nil part reader")
	}
	if readers.Orders == nil {
		return nil, errors.New("report service: nil order reader")
	}
	service := &ReportService{
		readers:    readers,
		clock:      systemClock{},
		classify:   maintenance.DefaultClassifier,
		maxPeriods: DefaultMaxPeriods,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// MaxPeriods returns the configured period cap.
func (s *ReportService) MaxPeriods() int {
	return s.maxPeriods
}

// StockCompliance returns the share of parts at or above minimum stock.
func (s *ReportService) StockCompliance(ctx context.Context) (result statistic.Compliance, err error) {
	defer s.observe(kpiStockCompliance, time.Now(), &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	parts, err := s.readers.Parts.ListParts(ctx)
	if err != nil {
		return statistic.Compliance{}, failure.Unavailable(err)
	}
	return statistic.StockCompliance(parts)
}

// InventoryTurnover returns monthly part consumption over average inventory
// for the last periods months.
func (s *ReportService) InventoryTurnover(ctx context.Context, periods int) (result statistic.Turnover, err error) {
	defer s.observe(kpiInventoryTurnover, time.Now(), &err)
	windows, err := s.windows(periods, statistic.GranularityMonth)
	if err != nil {
		return statistic.Turnover{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := statistic.Span(windows)
	events, err := s.readers.Events.ListEvents(ctx, maintenance.EventFilter{From: from, To: to})
	if err != nil {
		return statistic.Turnover{}, failure.Unavailable(err)
	}
	parts, err := s.readers.Parts.ListParts(ctx)
	if err != nil {
		return statistic.Turnover{}, failure.Unavailable(err)
	}
	return statistic.InventoryTurnover(events, parts, windows)
}

// PreventiveReactive returns preventive and reactive event counts per period.
func (s *ReportService) PreventiveReactive(ctx context.Context, periods int, unit statistic.Granularity) (result []statistic.MixPoint, err error) {
	defer s.observe(kpiMaintenanceMix, time.Now(), &err)
	windows, err := s.windows(periods, unit)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := statistic.Span(windows)
	events, err := s.readers.Events.ListEvents(ctx, maintenance.EventFilter{From: from, To: to})
	if err != nil {
		return nil, failure.Unavailable(err)
	}
	return statistic.PreventiveReactiveSeries(events, windows, s.classify), nil
}

// MTBF returns mean time between completed breakdowns, fleet-wide when
// equipmentID is empty.
func (s *ReportService) MTBF(ctx context.Context, equipmentID string) (result statistic.MTBFStats, err error) {
	defer s.observe(kpiMTBF, time.Now(), &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.checkEquipment(ctx, equipmentID); err != nil {
		return statistic.MTBFStats{}, err
	}
	events, err := s.readers.Events.ListEvents(ctx, maintenance.EventFilter{
		EquipmentID:   equipmentID,
		Types:         []maintenance.EventType{maintenance.EventBreakdown},
		CompletedOnly: true,
	})
	if err != nil {
		return statistic.MTBFStats{}, failure.Unavailable(err)
	}
	return statistic.MTBF(events)
}

// AverageMaintenanceDuration returns the mean days from scheduled to
// completed, fleet-wide when equipmentID is empty.
func (s *ReportService) AverageMaintenanceDuration(ctx context.Context, equipmentID string) (result statistic.DurationStats, err error) {
	defer s.observe(kpiMaintenanceDuration, time.Now(), &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.checkEquipment(ctx, equipmentID); err != nil {
		return statistic.DurationStats{}, err
	}
	events, err := s.readers.Events.ListEvents(ctx, maintenance.EventFilter{
		EquipmentID:   equipmentID,
		CompletedOnly: true,
	})
	if err != nil {
		return statistic.DurationStats{}, failure.Unavailable(err)
	}
	return statistic.MeanMaintenanceDuration(events)
}

// OrderFinancials returns delivered and pending order totals per month.
func (s *ReportService) OrderFinancials(ctx context.Context, periods int) (result []statistic.FinancialPoint, err error) {
	defer s.observe(kpiOrderFinancials, time.Now(), &err)
	windows, err := s.windows(periods, statistic.GranularityMonth)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	from, to := statistic.Span(windows)
	orders, err := s.readers.Orders.ListOrders(ctx, from, to)
	if err != nil {
		return nil, failure.Unavailable(err)
	}
	return statistic.OrderFinancials(orders, windows), nil
}

// OrderCancellationRatio returns the share of cancelled orders.
func (s *ReportService) OrderCancellationRatio(ctx context.Context) (result statistic.CancellationRatio, err error) {
	defer s.observe(kpiOrderCancellations, time.Now(), &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	counts, err := s.readers.Orders.CountByStatus(ctx)
	if err != nil {
		return statistic.CancellationRatio{}, failure.Unavailable(err)
	}
	return statistic.OrderCancellationRatio(counts), nil
}

// SupplierPriceComparison returns the part-by-supplier price table for parts
// offered by at least two suppliers.
func (s *ReportService) SupplierPriceComparison(ctx context.Context) (result statistic.PriceComparison, err error) {
	defer s.observe(kpiSupplierPrices, time.Now(), &err)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	offers, err := s.readers.SupplierParts.ListSupplierParts(ctx)
	if err != nil {
		return statistic.PriceComparison{}, failure.Unavailable(err)
	}
	return statistic.SupplierPriceComparison(offers), nil
}

func (s *ReportService) windows(periods int, unit statistic.Granularity) ([]statistic.Window, error) {
	if periods < 1 || periods > s.maxPeriods {
		return nil, fmt.Errorf("%w: got %d, allowed 1..%d", ErrInvalidPeriods, periods, s.maxPeriods)
	}
	return statistic.Windows(periods, unit, s.clock.Now().UTC())
}

func (s *ReportService) checkEquipment(ctx context.Context, equipmentID string) error {
	if equipmentID == "" || s.readers.Equipment == nil {
		return nil
	}
	if _, err := s.readers.Equipment.GetEquipment(ctx, equipmentID); err != nil {
		return failure.Unavailable(err)
	}
	return nil
}

func (s *ReportService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ReportService) observe(kpi string, start time.Time, err *error) {
	result := metrics.ResultOf(*err)
	metrics.ObserveKPIQuery(kpi, result, time.Since(start))
	if result == metrics.ResultError {
		s.logger.Printf("kpi query failed: kpi=%s err=%v", kpi, *err)
	}
}
