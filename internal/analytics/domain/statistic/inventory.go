package statistic

import (
	"time"

	maintenance "maintenance-kpi/internal/maintenance/domain"
	masterdata "maintenance-kpi/internal/masterdata/domain"
)

// Compliance is the share of parts stocked at or above their minimum.
type Compliance struct {
	Percentage     int
	CompliantCount int
	TotalCount     int
}

// StockCompliance computes the compliance ratio. An empty part list is a
// legitimate 0%, not a failure. Negative stock is rejected.
func StockCompliance(parts []masterdata.Part) (Compliance, error) {
	compliant := 0
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return Compliance{}, err
		}
		if p.IsCompliant() {
			compliant++
		}
	}
	return Compliance{
		Percentage:     Percentage(compliant, len(parts)),
		CompliantCount: compliant,
		TotalCount:     len(parts),
	}, nil
}

// AverageStock is the mean current stock across parts, 0 when there are none.
func AverageStock(parts []masterdata.Part) (float64, error) {
	if len(parts) == 0 {
		return 0, nil
	}
	total := 0
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return 0, err
		}
		total += p.CurrentStock
	}
	return float64(total) / float64(len(parts)), nil
}

// TurnoverPoint is the turnover rate of one period.
type TurnoverPoint struct {
	Period        string
	Start         time.Time
	End           time.Time
	PartsConsumed int
	Rate          float64
}

// Turnover is a turnover series with its latest period-over-period trend.
type Turnover struct {
	Series           []TurnoverPoint
	AverageInventory float64
	Trend            float64
}

// InventoryTurnover computes partsConsumed / averageInventory per window.
// The average inventory is the current stock level applied to every period;
// historical stock levels are not reconstructed.
func InventoryTurnover(events []maintenance.Event, parts []masterdata.Part, windows []Window) (Turnover, error) {
	avg, err := AverageStock(parts)
	if err != nil {
		return Turnover{}, err
	}

	consumed := Bucket(events, windows, maintenance.Event.ActivityDate, 0, CountWhere(maintenance.Event.UsesPart))
	series := make([]TurnoverPoint, len(consumed))
	rates := make([]float64, len(consumed))
	for i, b := range consumed {
		rate := 0.0
		if avg > 0 {
			rate = float64(b.Value) / avg
		}
		rates[i] = rate
		series[i] = TurnoverPoint{
			Period:        b.Window.Label,
			Start:         b.Window.Start,
			End:           b.Window.End,
			PartsConsumed: b.Value,
			Rate:          rate,
		}
	}
	return Turnover{
		Series:           series,
		AverageInventory: avg,
		Trend:            Trend(rates),
	}, nil
}
