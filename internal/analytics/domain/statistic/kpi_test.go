package statistic

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"maintenance-kpi/internal/failure"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	masterdata "maintenance-kpi/internal/masterdata/domain"
	procurement "maintenance-kpi/internal/procurement/domain"
)

func TestStockCompliance_PermutationInvariant(t *testing.T) {
	parts := []masterdata.Part{
		{ID: "p1", CurrentStock: 5, MinimumStock: 5},
		{ID: "p2", CurrentStock: 1, MinimumStock: 3},
		{ID: "p3", CurrentStock: 10, MinimumStock: 2},
	}
	want := Compliance{Percentage: 67, CompliantCount: 2, TotalCount: 3}
	perms := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {1, 2, 0}}
	for _, perm := range perms {
		shuffled := []masterdata.Part{parts[perm[0]], parts[perm[1]], parts[perm[2]]}
		got, err := StockCompliance(shuffled)
		if err != nil {
			t.Fatalf("compliance: %v", err)
		}
		if got != want {
			t.Fatalf("perm %v: got %+v, want %+v", perm, got, want)
		}
	}
}

func TestStockCompliance_EmptyIsZero(t *testing.T) {
	got, err := StockCompliance(nil)
	if err != nil {
		t.Fatalf("compliance: %v", err)
	}
	if got != (Compliance{}) {
		t.Fatalf("expected zero compliance, got %+v", got)
	}
}

func TestStockCompliance_NegativeStockRejected(t *testing.T) {
	_, err := StockCompliance([]masterdata.Part{{ID: "p1", CurrentStock: -1}})
	if !errors.Is(err, failure.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestTrend(t *testing.T) {
	cases := []struct {
		name   string
		series []float64
		want   float64
	}{
		{"zero previous", []float64{0, 5}, 0},
		{"single point", []float64{4}, 0},
		{"increase", []float64{1, 4, 6}, 50},
		{"decrease", []float64{3, 2}, -33.3},
		{"one decimal", []float64{3, 4}, 33.3},
	}
	for _, tc := range cases {
		got := Trend(tc.series)
		if math.IsInf(got, 0) || math.IsNaN(got) {
			t.Fatalf("%s: non-finite trend", tc.name)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInventoryTurnover(t *testing.T) {
	anchor := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	windows, _ := Windows(3, GranularityMonth, anchor)
	parts := []masterdata.Part{{ID: "p1", CurrentStock: 4}, {ID: "p2", CurrentStock: 6}}
	feb := time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	events := []maintenance.Event{
		{PartID: "p1", CompletedDate: ptr(feb)},
		{PartID: "p2", CompletedDate: ptr(mar)},
		{PartID: "p2", CompletedDate: ptr(mar)},
		{CompletedDate: ptr(mar)},
	}
	got, err := InventoryTurnover(events, parts, windows)
	if err != nil {
		t.Fatalf("turnover: %v", err)
	}
	if got.AverageInventory != 5 {
		t.Fatalf("expected average 5, got %v", got.AverageInventory)
	}
	wantRates := []float64{0, 0.2, 0.4}
	for i, p := range got.Series {
		if p.Rate != wantRates[i] {
			t.Fatalf("period %d rate %v, want %v", i, p.Rate, wantRates[i])
		}
	}
	if got.Trend != 100 {
		t.Fatalf("expected trend 100, got %v", got.Trend)
	}
}

func TestInventoryTurnover_ZeroInventoryGuard(t *testing.T) {
	anchor := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	windows, _ := Windows(2, GranularityMonth, anchor)
	events := []maintenance.Event{{PartID: "p1", CompletedDate: ptr(anchor.Add(-time.Hour))}}
	got, err := InventoryTurnover(events, []masterdata.Part{{ID: "p1"}}, windows)
	if err != nil {
		t.Fatalf("turnover: %v", err)
	}
	for _, p := range got.Series {
		if p.Rate != 0 {
			t.Fatalf("expected zero rate with empty inventory, got %v", p.Rate)
		}
	}
	if got.Series[1].PartsConsumed != 1 {
		t.Fatalf("expected consumption to be counted, got %+v", got.Series[1])
	}
}

func order(status procurement.Status, at time.Time, qty int, price string) procurement.Order {
	return procurement.Order{
		OrderDate: at,
		Status:    status,
		Items:     []procurement.Item{{PartID: "p1", Quantity: qty, UnitPrice: decimal.RequireFromString(price)}},
	}
}

func TestOrderFinancials_CancelledExcluded(t *testing.T) {
	anchor := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	windows, _ := Windows(2, GranularityMonth, anchor)
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	delivered := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)

	late := order(procurement.StatusDelivered, feb, 1, "100")
	late.DeliveryDate = &delivered

	orders := []procurement.Order{
		order(procurement.StatusDelivered, feb, 2, "10.50"),
		order(procurement.StatusPending, feb, 1, "5"),
		order(procurement.StatusApproved, feb, 1, "5"),
		order(procurement.StatusShipped, feb, 1, "5"),
		order(procurement.StatusCancelled, feb, 10, "999"),
		late,
	}
	points := OrderFinancials(orders, windows)
	if !points[0].Delivered.Equal(decimal.RequireFromString("21")) {
		t.Fatalf("february delivered %s", points[0].Delivered)
	}
	if !points[0].Pending.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("february pending %s", points[0].Pending)
	}
	if !points[1].Delivered.Equal(decimal.NewFromInt(100)) || !points[1].Pending.IsZero() {
		t.Fatalf("march totals %+v", points[1].OrderTotals)
	}

	nonCancelled := decimal.Zero
	for _, o := range orders {
		if o.Status != procurement.StatusCancelled {
			nonCancelled = nonCancelled.Add(o.Total())
		}
	}
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Delivered).Add(p.Pending)
	}
	if !sum.Equal(nonCancelled) {
		t.Fatalf("rollup %s does not match non-cancelled totals %s", sum, nonCancelled)
	}
}

func TestOrderCancellationRatio(t *testing.T) {
	got := OrderCancellationRatio(map[procurement.Status]int{
		procurement.StatusCancelled: 3,
		procurement.StatusDelivered: 5,
		procurement.StatusPending:   2,
	})
	want := CancellationRatio{Percentage: 30, CancelledCount: 3, TotalCount: 10}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got := OrderCancellationRatio(nil); got != (CancellationRatio{}) {
		t.Fatalf("expected zero ratio for no orders, got %+v", got)
	}
}

func TestSupplierPriceComparison(t *testing.T) {
	offers := []masterdata.SupplierPart{
		{SupplierID: "s2", PartID: "bearing", Price: decimal.RequireFromString("12.00")},
		{SupplierID: "s1", PartID: "bearing", Price: decimal.RequireFromString("10.00"), IsPreferred: true},
		{SupplierID: "s1", PartID: "bearing", Price: decimal.RequireFromString("11.00")},
		{SupplierID: "s1", PartID: "belt", Price: decimal.RequireFromString("4.00")},
		{SupplierID: "s1", PartID: "belt", Price: decimal.RequireFromString("3.00")},
		{SupplierID: "s3", PartID: "filter", Price: decimal.RequireFromString("7.25")},
		{SupplierID: "s2", PartID: "filter", Price: decimal.RequireFromString("7.00")},
	}
	table := SupplierPriceComparison(offers)
	if len(table.Rows) != 2 {
		t.Fatalf("expected belt to be excluded, got %d rows", len(table.Rows))
	}
	if table.Rows[0].PartID != "bearing" || table.Rows[1].PartID != "filter" {
		t.Fatalf("unexpected row order %s, %s", table.Rows[0].PartID, table.Rows[1].PartID)
	}
	bearing := table.Rows[0]
	if !bearing.Prices["s1"].Price.Equal(decimal.NewFromInt(10)) || !bearing.Prices["s1"].IsPreferred {
		t.Fatalf("expected lowest preferred s1 price, got %+v", bearing.Prices["s1"])
	}
	if bearing.CheapestSupplier != "s1" || !bearing.Spread.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected cheapest/spread %s %s", bearing.CheapestSupplier, bearing.Spread)
	}
	if got := table.Suppliers; len(got) != 3 || got[0] != "s1" || got[2] != "s3" {
		t.Fatalf("unexpected supplier columns %v", got)
	}
}
