package statistic

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	masterdata "maintenance-kpi/internal/masterdata/domain"
)

// SupplierPrice is one cell of the comparison table.
type SupplierPrice struct {
	SupplierID   string
	SupplierName string
	Price        decimal.Decimal
	IsPreferred  bool
}

// PriceComparisonRow compares supplier offers for one part.
type PriceComparisonRow struct {
	PartID           string
	PartName         string
	Prices           map[string]SupplierPrice
	CheapestSupplier string
	Spread           decimal.Decimal
}

// PriceComparison is a part x supplier price table.
type PriceComparison struct {
	Suppliers []string
	Rows      []PriceComparisonRow
}

// SupplierPriceComparison groups offers by part and emits one row per part
// with at least two distinct suppliers. When a supplier lists the same part
// more than once the lowest price is kept. Rows are ordered by part id and
// supplier columns by supplier id.
func SupplierPriceComparison(offers []masterdata.SupplierPart) PriceComparison {
	partIDs, byPart := GroupBy(offers, func(o masterdata.SupplierPart) string { return o.PartID })
	sort.Strings(partIDs)

	var rows []PriceComparisonRow
	var suppliers []string
	for _, partID := range partIDs {
		prices := make(map[string]SupplierPrice)
		partName := ""
		for _, offer := range byPart[partID] {
			if partName == "" {
				partName = offer.PartName
			}
			current, ok := prices[offer.SupplierID]
			if ok && current.Price.LessThanOrEqual(offer.Price) {
				continue
			}
			prices[offer.SupplierID] = SupplierPrice{
				SupplierID:   offer.SupplierID,
				SupplierName: offer.SupplierName,
				Price:        offer.Price,
				IsPreferred:  offer.IsPreferred || current.IsPreferred,
			}
		}
		if len(prices) < 2 {
			continue
		}

		ids := lo.Keys(prices)
		sort.Strings(ids)
		cheapest := lo.MinBy(ids, func(a, b string) bool { return prices[a].Price.LessThan(prices[b].Price) })
		highest := lo.MaxBy(ids, func(a, b string) bool { return prices[a].Price.GreaterThan(prices[b].Price) })

		rows = append(rows, PriceComparisonRow{
			PartID:           partID,
			PartName:         partName,
			Prices:           prices,
			CheapestSupplier: cheapest,
			Spread:           prices[highest].Price.Sub(prices[cheapest].Price),
		})
		suppliers = append(suppliers, ids...)
	}

	suppliers = lo.Uniq(suppliers)
	sort.Strings(suppliers)
	return PriceComparison{Suppliers: suppliers, Rows: rows}
}
