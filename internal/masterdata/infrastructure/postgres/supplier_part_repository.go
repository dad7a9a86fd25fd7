package postgres

import (
	"context"
	"errors"
	"fmt"

	masterdata "maintenance-kpi/internal/masterdata/domain"
)

// SupplierPartRepository is a Postgres implementation for supplier offers.
type SupplierPartRepository struct {
	db             DBTX
	table          string
	suppliersTable string
	partsTable     string
}

// NewSupplierPartRepository constructs a repository.
func NewSupplierPartRepository(db DBTX, opts ...SupplierPartOption) *SupplierPartRepository {
	repo := &SupplierPartRepository{
		db:             db,
		table:          defaultSupplierPartsTable,
		suppliersTable: defaultSuppliersTable,
		partsTable:     defaultPartsTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// SupplierPartOption configures the repository.
type SupplierPartOption func(*SupplierPartRepository)

// WithSupplierPartTables overrides the default table names.
func WithSupplierPartTables(supplierParts, suppliers, parts string) SupplierPartOption {
	return func(repo *SupplierPartRepository) {
		if supplierParts != "" {
			repo.table = supplierParts
		}
		if suppliers != "" {
			repo.suppliersTable = suppliers
		}
		if parts != "" {
			repo.partsTable = parts
		}
	}
}

// ListSupplierParts loads every supplier offer with supplier and part names.
func (r *SupplierPartRepository) ListSupplierParts(ctx context.Context) ([]masterdata.SupplierPart, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("supplier part repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT sp.supplier_id, s.name, sp.part_id, p.name, sp.price, sp.is_preferred
FROM %s sp
JOIN %s s ON s.id = sp.supplier_id
JOIN %s p ON p.id = sp.part_id
ORDER BY sp.part_id ASC, sp.supplier_id ASC`, r.table, r.suppliersTable, r.partsTable)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.SupplierPart
	for rows.Next() {
		var offer masterdata.SupplierPart
		if err := rows.Scan(
			&offer.SupplierID,
			&offer.SupplierName,
			&offer.PartID,
			&offer.PartName,
			&offer.Price,
			&offer.IsPreferred,
		); err != nil {
			return nil, err
		}
		result = append(result, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
