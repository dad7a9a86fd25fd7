package postgres

import (
	"context"
	"errors"
	"fmt"

	masterdata "maintenance-kpi/internal/masterdata/domain"
)

// PartRepository is a Postgres implementation for parts.
type PartRepository struct {
	db    DBTX
	table string
}

// NewPartRepository constructs a repository.
func NewPartRepository(db DBTX, opts ...PartOption) *PartRepository {
	repo := &PartRepository{db: db, table: defaultPartsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PartOption configures the repository.
type PartOption func(*PartRepository)

// WithPartTable overrides the default table name.
func WithPartTable(table string) PartOption {
	return func(repo *PartRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// ListParts loads every part's stock snapshot.
func (r *PartRepository) ListParts(ctx context.Context) ([]masterdata.Part, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("part repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, current_stock, minimum_stock
FROM %s
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Part
	for rows.Next() {
		var part masterdata.Part
		if err := rows.Scan(&part.ID, &part.Name, &part.CurrentStock, &part.MinimumStock); err != nil {
			return nil, err
		}
		result = append(result, part)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
