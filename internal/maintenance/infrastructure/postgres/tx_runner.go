package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	maintenance "maintenance-kpi/internal/maintenance/domain"
)

// TxRunner runs completion transitions inside a database transaction.
type TxRunner struct {
	db              *sql.DB
	schedulesTable  string
	eventsTable     string
	equipmentTable  string
	lockWaitTimeout time.Duration
}

// TxOption configures the runner.
type TxOption func(*TxRunner)

// WithTables overrides the default table names.
func WithTables(schedules, events, equipment string) TxOption {
	return func(r *TxRunner) {
		if schedules != "" {
			r.schedulesTable = schedules
		}
		if events != "" {
			r.eventsTable = events
		}
		if equipment != "" {
			r.equipmentTable = equipment
		}
	}
}

// WithLockWaitTimeout bounds how long a completion waits for a row lock.
func WithLockWaitTimeout(timeout time.Duration) TxOption {
	return func(r *TxRunner) {
		r.lockWaitTimeout = timeout
	}
}

// NewTxRunner constructs a runner.
func NewTxRunner(db *sql.DB, opts ...TxOption) (*TxRunner, error) {
	if db == nil {
		return nil, errors.New("maintenance tx runner: nil db")
	}
	runner := &TxRunner{
		db:             db,
		schedulesTable: defaultSchedulesTable,
		eventsTable:    defaultEventsTable,
		equipmentTable: defaultEquipmentTable,
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// WithinTx runs fn in a transaction and commits only if fn returns nil.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, tx maintenance.Tx) error) error {
	if r == nil || r.db == nil {
		return errors.New("maintenance tx runner: nil db")
	}
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if r.lockWaitTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockWaitTimeout.Milliseconds())
		if _, err := sqlTx.ExecContext(ctx, stmt); err != nil {
			_ = sqlTx.Rollback()
			return err
		}
	}

	tx := &completionTx{
		schedules:      NewScheduleRepository(sqlTx, WithScheduleTable(r.schedulesTable)),
		events:         NewEventRepository(sqlTx, WithEventTable(r.eventsTable)),
		db:             sqlTx,
		equipmentTable: r.equipmentTable,
	}
	if err := fn(ctx, tx); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return mapError(sqlTx.Commit())
}

type completionTx struct {
	schedules      *ScheduleRepository
	events         *EventRepository
	db             DBTX
	equipmentTable string
}

func (t *completionTx) GetForUpdate(ctx context.Context, id string) (*maintenance.Schedule, error) {
	return t.schedules.get(ctx, id, "FOR UPDATE")
}

func (t *completionTx) Advance(ctx context.Context, advanced maintenance.Schedule, expectedNextDue *time.Time) error {
	return t.schedules.advance(ctx, advanced, nullTime(expectedNextDue))
}

func (t *completionTx) CreateEvent(ctx context.Context, evt *maintenance.Event) error {
	return t.events.create(ctx, evt)
}

func (t *completionTx) FirstEquipmentID(ctx context.Context) (string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY created_at ASC, id ASC LIMIT 1`, t.equipmentTable)
	var id string
	if err := t.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return id, nil
}
