package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	procurement "maintenance-kpi/internal/procurement/domain"
)

const (
	defaultOrdersTable = "purchase_orders"
	defaultItemsTable  = "purchase_order_items"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the repository.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// OrderRepository is a Postgres implementation for purchase orders.
type OrderRepository struct {
	db         DBTX
	table      string
	itemsTable string
}

// OrderOption configures the repository.
type OrderOption func(*OrderRepository)

// WithOrderTables overrides the default table names.
func WithOrderTables(orders, items string) OrderOption {
	return func(repo *OrderRepository) {
		if orders != "" {
			repo.table = orders
		}
		if items != "" {
			repo.itemsTable = items
		}
	}
}

// NewOrderRepository constructs a repository.
func NewOrderRepository(db DBTX, opts ...OrderOption) *OrderRepository {
	repo := &OrderRepository{db: db, table: defaultOrdersTable, itemsTable: defaultItemsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListOrders loads orders, with their items, whose delivery date (or order
// date when undelivered) falls in [from, to).
func (r *OrderRepository) ListOrders(ctx context.Context, from, to time.Time) ([]procurement.Order, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	if from.IsZero() || to.IsZero() || !from.Before(to) {
		return nil, errors.New("order repo: invalid range")
	}

	query := fmt.Sprintf(`
SELECT o.id, o.supplier_id, o.order_date, o.delivery_date, o.status,
	i.part_id, i.quantity, i.unit_price
FROM %s o
LEFT JOIN %s i ON i.order_id = o.id
WHERE COALESCE(o.delivery_date, o.order_date) >= $1
	AND COALESCE(o.delivery_date, o.order_date) < $2
ORDER BY o.id ASC, i.part_id ASC`, r.table, r.itemsTable)

	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []procurement.Order
		index  = make(map[string]int)
	)
	for rows.Next() {
		var (
			order        procurement.Order
			deliveryDate sql.NullTime
			status       string
			partID       sql.NullString
			quantity     sql.NullInt64
			unitPrice    decimal.NullDecimal
		)
		if err := rows.Scan(
			&order.ID,
			&order.SupplierID,
			&order.OrderDate,
			&deliveryDate,
			&status,
			&partID,
			&quantity,
			&unitPrice,
		); err != nil {
			return nil, err
		}

		pos, ok := index[order.ID]
		if !ok {
			order.OrderDate = order.OrderDate.UTC()
			if deliveryDate.Valid {
				delivered := deliveryDate.Time.UTC()
				order.DeliveryDate = &delivered
			}
			order.Status = procurement.Status(status)
			result = append(result, order)
			pos = len(result) - 1
			index[order.ID] = pos
		}
		if partID.Valid {
			result[pos].Items = append(result[pos].Items, procurement.Item{
				PartID:    partID.String,
				Quantity:  int(quantity.Int64),
				UnitPrice: unitPrice.Decimal,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByStatus groups all orders by status.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[procurement.Status]int, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT status, COUNT(*)
FROM %s
GROUP BY status`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[procurement.Status]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[procurement.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
