package statistic

import (
	"time"

	"github.com/shopspring/decimal"

	procurement "maintenance-kpi/internal/procurement/domain"
)

// OrderTotals are the delivered and still-open order values of a period.
type OrderTotals struct {
	Delivered decimal.Decimal
	Pending   decimal.Decimal
}

// FinancialPoint is a labelled OrderTotals.
type FinancialPoint struct {
	Period string
	Start  time.Time
	End    time.Time
	OrderTotals
}

// OrderFinancials buckets orders by delivery month and sums totals.
// DELIVERED goes to Delivered, PENDING/APPROVED/SHIPPED to Pending, and
// CANCELLED contributes to neither.
func OrderFinancials(orders []procurement.Order, windows []Window) []FinancialPoint {
	init := OrderTotals{Delivered: decimal.Zero, Pending: decimal.Zero}
	buckets := Bucket(orders, windows, procurement.Order.DeliveryMonthDate, init, func(acc OrderTotals, o procurement.Order) OrderTotals {
		switch {
		case o.Status == procurement.StatusDelivered:
			acc.Delivered = acc.Delivered.Add(o.Total())
		case o.Status.IsOpen():
			acc.Pending = acc.Pending.Add(o.Total())
		}
		return acc
	})

	points := make([]FinancialPoint, len(buckets))
	for i, b := range buckets {
		points[i] = FinancialPoint{
			Period:      b.Window.Label,
			Start:       b.Window.Start,
			End:         b.Window.End,
			OrderTotals: b.Value,
		}
	}
	return points
}

// CancellationRatio is the share of cancelled orders.
type CancellationRatio struct {
	Percentage     int
	CancelledCount int
	TotalCount     int
}

// OrderCancellationRatio computes round(100*cancelled/total) from per-status counts.
func OrderCancellationRatio(counts map[procurement.Status]int) CancellationRatio {
	total := 0
	for _, n := range counts {
		total += n
	}
	cancelled := counts[procurement.StatusCancelled]
	return CancellationRatio{
		Percentage:     Percentage(cancelled, total),
		CancelledCount: cancelled,
		TotalCount:     total,
	}
}
