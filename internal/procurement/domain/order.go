package procurement

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a purchase order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the order is still on its way.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusApproved || s == StatusShipped
}

// ParseStatus normalizes a raw status value.
func ParseStatus(value string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	return s, s.IsValid()
}

// Item is an order line.
type Item struct {
	PartID    string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Order is a purchase order snapshot.
type Order struct {
	ID           string
	SupplierID   string
	OrderDate    time.Time
	DeliveryDate *time.Time
	Status       Status
	Items        []Item
}

// Total returns sum(quantity * unit price).
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// DeliveryMonthDate is the date used to place the order in a delivery period:
// the delivery date when known, else the order date.
func (o Order) DeliveryMonthDate() time.Time {
	if o.DeliveryDate != nil && !o.DeliveryDate.IsZero() {
		return *o.DeliveryDate
	}
	return o.OrderDate
}

// OrderReader reads orders and order aggregates.
type OrderReader interface {
	// ListOrders returns orders whose delivery date (or order date) is in [from, to).
	ListOrders(ctx context.Context, from, to time.Time) ([]Order, error)
	// CountByStatus groups all orders by status.
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
