package postgres

import (
	"context"
	"database/sql"
)

const (
	defaultEquipmentTable     = "equipment"
	defaultPartsTable         = "parts"
	defaultSuppliersTable     = "suppliers"
	defaultSupplierPartsTable = "supplier_parts"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
