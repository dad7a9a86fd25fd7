package apihttp

import (
	"time"

	"github.com/shopspring/decimal"

	analytics "maintenance-kpi/internal/analytics/application"
	"maintenance-kpi/internal/analytics/domain/statistic"
	maintenance "maintenance-kpi/internal/maintenance/domain"
)

type complianceDTO struct {
	Percentage     int `json:"percentage"`
	CompliantCount int `json:"compliant_count"`
	TotalCount     int `json:"total_count"`
}

type turnoverPointDTO struct {
	Period        string    `json:"period"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PartsConsumed int       `json:"parts_consumed"`
	Rate          float64   `json:"rate"`
}

type turnoverDTO struct {
	Series           []turnoverPointDTO `json:"series"`
	AverageInventory float64            `json:"average_inventory"`
	Trend            float64            `json:"trend"`
}

type mixPointDTO struct {
	Period               string    `json:"period"`
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	PreventiveCount      int       `json:"preventive_count"`
	ReactiveCount        int       `json:"reactive_count"`
	PreventivePercentage int       `json:"preventive_percentage"`
}

type mixDTO struct {
	Unit   statistic.Granularity `json:"unit"`
	Series []mixPointDTO         `json:"series"`
}

type mtbfDTO struct {
	EquipmentID   string `json:"equipment_id,omitempty"`
	AverageDays   int    `json:"average_days"`
	IntervalCount int    `json:"interval_count"`
}

type durationDTO struct {
	EquipmentID string `json:"equipment_id,omitempty"`
	AverageDays int    `json:"average_days"`
	TotalDays   int    `json:"total_days"`
	SampleCount int    `json:"sample_count"`
}

type financialPointDTO struct {
	Period    string          `json:"period"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Delivered decimal.Decimal `json:"delivered"`
	Pending   decimal.Decimal `json:"pending"`
}

type financialsDTO struct {
	Series []financialPointDTO `json:"series"`
}

type cancellationDTO struct {
	Percentage     int `json:"percentage"`
	CancelledCount int `json:"cancelled_count"`
	TotalCount     int `json:"total_count"`
}

type supplierPriceDTO struct {
	SupplierName string          `json:"supplier_name"`
	Price        decimal.Decimal `json:"price"`
	IsPreferred  bool            `json:"is_preferred"`
}

type priceRowDTO struct {
	PartID           string                      `json:"part_id"`
	PartName         string                      `json:"part_name"`
	Prices           map[string]supplierPriceDTO `json:"prices"`
	CheapestSupplier string                      `json:"cheapest_supplier"`
	Spread           decimal.Decimal             `json:"spread"`
}

type priceComparisonDTO struct {
	Suppliers []string      `json:"suppliers"`
	Rows      []priceRowDTO `json:"rows"`
}

type dashboardDTO struct {
	GeneratedAt         time.Time           `json:"generated_at"`
	Periods             int                 `json:"periods"`
	StockCompliance     complianceDTO       `json:"stock_compliance"`
	CancellationRatio   cancellationDTO     `json:"cancellation_ratio"`
	MTBF                *mtbfDTO            `json:"mtbf"`
	MaintenanceDuration *durationDTO        `json:"maintenance_duration"`
	Turnover            turnoverDTO         `json:"inventory_turnover"`
	MaintenanceMix      []mixPointDTO       `json:"maintenance_mix"`
	OrderFinancials     []financialPointDTO `json:"order_financials"`
}

type scheduleStatusDTO struct {
	ScheduleID   string                `json:"schedule_id"`
	Name         string                `json:"name"`
	Status       maintenance.DueStatus `json:"status"`
	DaysUntilDue int                   `json:"days_until_due"`
	NextDue      *time.Time            `json:"next_due"`
}

type statusesDTO struct {
	Schedules []scheduleStatusDTO           `json:"schedules"`
	Counts    map[maintenance.DueStatus]int `json:"counts"`
}

type scheduleDTO struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	EquipmentID   string     `json:"equipment_id,omitempty"`
	FrequencyDays int        `json:"frequency_days"`
	LastExecuted  *time.Time `json:"last_executed"`
	NextDue       *time.Time `json:"next_due"`
}

func toComplianceDTO(c statistic.Compliance) complianceDTO {
	return complianceDTO{Percentage: c.Percentage, CompliantCount: c.CompliantCount, TotalCount: c.TotalCount}
}

func toTurnoverDTO(t statistic.Turnover) turnoverDTO {
	series := make([]turnoverPointDTO, 0, len(t.Series))
	for _, p := range t.Series {
		series = append(series, turnoverPointDTO{
			Period:        p.Period,
			Start:         p.Start,
			End:           p.End,
			PartsConsumed: p.PartsConsumed,
			Rate:          p.Rate,
		})
	}
	return turnoverDTO{Series: series, AverageInventory: t.AverageInventory, Trend: t.Trend}
}

func toMixDTOs(points []statistic.MixPoint) []mixPointDTO {
	out := make([]mixPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, mixPointDTO{
			Period:               p.Period,
			Start:                p.Start,
			End:                  p.End,
			PreventiveCount:      p.PreventiveCount,
			ReactiveCount:        p.ReactiveCount,
			PreventivePercentage: p.PreventivePercentage,
		})
	}
	return out
}

func toFinancialDTOs(points []statistic.FinancialPoint) []financialPointDTO {
	out := make([]financialPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, financialPointDTO{
			Period:    p.Period,
			Start:     p.Start,
			End:       p.End,
			Delivered: p.Delivered,
			Pending:   p.Pending,
		})
	}
	return out
}

func toCancellationDTO(c statistic.CancellationRatio) cancellationDTO {
	return cancellationDTO{Percentage: c.Percentage, CancelledCount: c.CancelledCount, TotalCount: c.TotalCount}
}

func toPriceComparisonDTO(c statistic.PriceComparison) priceComparisonDTO {
	rows := make([]priceRowDTO, 0, len(c.Rows))
	for _, row := range c.Rows {
		prices := make(map[string]supplierPriceDTO, len(row.Prices))
		for supplierID, price := range row.Prices {
			prices[supplierID] = supplierPriceDTO{
				SupplierName: price.SupplierName,
				Price:        price.Price,
				IsPreferred:  price.IsPreferred,
			}
		}
		rows = append(rows, priceRowDTO{
			PartID:           row.PartID,
			PartName:         row.PartName,
			Prices:           prices,
			CheapestSupplier: row.CheapestSupplier,
			Spread:           row.Spread,
		})
	}
	suppliers := c.Suppliers
	if suppliers == nil {
		suppliers = []string{}
	}
	return priceComparisonDTO{Suppliers: suppliers, Rows: rows}
}

func toDashboardDTO(d *analytics.Dashboard) dashboardDTO {
	out := dashboardDTO{
		GeneratedAt:       d.GeneratedAt,
		Periods:           d.Periods,
		StockCompliance:   toComplianceDTO(d.StockCompliance),
		CancellationRatio: toCancellationDTO(d.CancellationRatio),
		Turnover:          toTurnoverDTO(d.Turnover),
		MaintenanceMix:    toMixDTOs(d.MaintenanceMix),
		OrderFinancials:   toFinancialDTOs(d.OrderFinancials),
	}
	if d.MTBF != nil {
		out.MTBF = &mtbfDTO{AverageDays: d.MTBF.AverageDays, IntervalCount: d.MTBF.IntervalCount}
	}
	if d.MaintenanceDuration != nil {
		out.MaintenanceDuration = &durationDTO{
			AverageDays: d.MaintenanceDuration.AverageDays,
			TotalDays:   d.MaintenanceDuration.TotalDays,
			SampleCount: d.MaintenanceDuration.SampleCount,
		}
	}
	return out
}

func toScheduleDTO(s *maintenance.Schedule) scheduleDTO {
	return scheduleDTO{
		ID:            s.ID,
		Name:          s.Name,
		Description:   s.Description,
		EquipmentID:   s.EquipmentID,
		FrequencyDays: s.FrequencyDays,
		LastExecuted:  s.LastExecuted,
		NextDue:       s.NextDue,
	}
}
