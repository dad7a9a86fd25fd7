package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "parts_below_minimum",
			Help: "Parts whose current stock is below the minimum level",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM parts WHERE current_stock < minimum_stock")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "open_purchase_orders",
			Help: "Purchase orders not yet delivered or cancelled",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM purchase_orders WHERE status IN ('PENDING', 'APPROVED', 'SHIPPED')")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
