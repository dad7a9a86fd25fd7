package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	maintenance "maintenance-kpi/internal/maintenance/domain"
)

// ScheduleRepository is a Postgres implementation for maintenance schedules.
type ScheduleRepository struct {
	db    DBTX
	table string
}

// ScheduleOption configures the repository.
type ScheduleOption func(*ScheduleRepository)

// WithScheduleTable overrides the default table name.
func WithScheduleTable(table string) ScheduleOption {
	return func(repo *ScheduleRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewScheduleRepository constructs a repository.
func NewScheduleRepository(db DBTX, opts ...ScheduleOption) *ScheduleRepository {
	repo := &ScheduleRepository{db: db, table: defaultSchedulesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Get loads a schedule by id.
func (r *ScheduleRepository) Get(ctx context.Context, id string) (*maintenance.Schedule, error) {
	return r.get(ctx, id, "")
}

func (r *ScheduleRepository) get(ctx context.Context, id, lockClause string) (*maintenance.Schedule, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("schedule repo: nil db")
	}
	if id == "" {
		return nil, maintenance.ErrEmptyScheduleID
	}
	query := fmt.Sprintf(`
SELECT id, name, description, equipment_id, frequency_days, last_executed, next_due
FROM %s
WHERE id = $1
LIMIT 1 %s`, r.table, lockClause)

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, maintenance.ErrScheduleNotFound
		}
		return nil, mapError(err)
	}
	return schedule, nil
}

// List loads all schedules ordered by id.
func (r *ScheduleRepository) List(ctx context.Context) ([]maintenance.Schedule, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("schedule repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, name, description, equipment_id, frequency_days, last_executed, next_due
FROM %s
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []maintenance.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// advance writes the completion fields only while next_due still holds the
// expected value.
func (r *ScheduleRepository) advance(ctx context.Context, advanced maintenance.Schedule, expected sql.NullTime) error {
	query := fmt.Sprintf(`
UPDATE %s
SET last_executed = $2, next_due = $3, updated_at = NOW()
WHERE id = $1 AND next_due IS NOT DISTINCT FROM $4`, r.table)

	res, err := r.db.ExecContext(ctx, query,
		advanced.ID,
		nullTime(advanced.LastExecuted),
		nullTime(advanced.NextDue),
		expected,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return maintenance.ErrScheduleConflict
	}
	return nil
}

func scanSchedule(scanner interface{ Scan(dest ...any) error }) (*maintenance.Schedule, error) {
	var (
		schedule     maintenance.Schedule
		description  sql.NullString
		equipmentID  sql.NullString
		lastExecuted sql.NullTime
		nextDue      sql.NullTime
	)
	if err := scanner.Scan(
		&schedule.ID,
		&schedule.Name,
		&description,
		&equipmentID,
		&schedule.FrequencyDays,
		&lastExecuted,
		&nextDue,
	); err != nil {
		return nil, err
	}
	schedule.Description = description.String
	schedule.EquipmentID = equipmentID.String
	schedule.LastExecuted = timePtr(lastExecuted)
	schedule.NextDue = timePtr(nextDue)
	return &schedule, nil
}
