package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "maintenance-kpi/internal/masterdata/domain"
)

// EquipmentRepository is a Postgres implementation for equipment.
type EquipmentRepository struct {
	db    DBTX
	table string
}

// NewEquipmentRepository constructs a repository.
func NewEquipmentRepository(db DBTX, opts ...EquipmentOption) *EquipmentRepository {
	repo := &EquipmentRepository{db: db, table: defaultEquipmentTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// EquipmentOption configures the repository.
type EquipmentOption func(*EquipmentRepository)

// WithEquipmentTable overrides the default table name.
func WithEquipmentTable(table string) EquipmentOption {
	return func(repo *EquipmentRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// GetEquipment loads equipment by id.
func (r *EquipmentRepository) GetEquipment(ctx context.Context, id string) (*masterdata.Equipment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("equipment repo: nil db")
	}
	if id == "" {
		return nil, errors.New("equipment repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, name
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var equipment masterdata.Equipment
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&equipment.ID, &equipment.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, masterdata.ErrEquipmentNotFound
		}
		return nil, err
	}
	return &equipment, nil
}
