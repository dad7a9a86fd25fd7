package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	procurement "maintenance-kpi/internal/procurement/domain"
)

// OrderRepository is an in-memory order store for demo/testing.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []procurement.Order
}

// NewOrderRepository constructs a repository holding orders.
func NewOrderRepository(orders ...procurement.Order) *OrderRepository {
	return &OrderRepository{orders: append([]procurement.Order(nil), orders...)}
}

// Add appends orders.
func (r *OrderRepository) Add(orders ...procurement.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, orders...)
}

// ListOrders returns orders whose delivery date (or order date) is in [from, to).
func (r *OrderRepository) ListOrders(ctx context.Context, from, to time.Time) ([]procurement.Order, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []procurement.Order
	for _, order := range r.orders {
		at := order.DeliveryMonthDate()
		if at.Before(from) || !at.Before(to) {
			continue
		}
		result = append(result, order)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// CountByStatus groups all orders by status.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[procurement.Status]int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[procurement.Status]int)
	for _, order := range r.orders {
		counts[order.Status]++
	}
	return counts, nil
}
