package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	maintenance "maintenance-kpi/internal/maintenance/domain"
)

// EventRepository is a Postgres implementation for maintenance events.
type EventRepository struct {
	db    DBTX
	table string
}

// EventOption configures the repository.
type EventOption func(*EventRepository)

// WithEventTable overrides the default table name.
func WithEventTable(table string) EventOption {
	return func(repo *EventRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewEventRepository constructs a repository.
func NewEventRepository(db DBTX, opts ...EventOption) *EventRepository {
	repo := &EventRepository{db: db, table: defaultEventsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ListEvents loads events matching filter ordered by activity date.
func (r *EventRepository) ListEvents(ctx context.Context, filter maintenance.EventFilter) ([]maintenance.Event, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("event repo: nil db")
	}
	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
SELECT id, equipment_id, part_id, schedule_id, event_type, scheduled_date, completed_date,
	description, created_by, created_at
FROM %s
%s
ORDER BY COALESCE(completed_date, scheduled_date, created_at) ASC, id ASC`, r.table, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []maintenance.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *evt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *EventRepository) create(ctx context.Context, evt *maintenance.Event) error {
	if evt == nil {
		return maintenance.ErrNilEvent
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, equipment_id, part_id, schedule_id, event_type, scheduled_date, completed_date,
	description, created_by, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		evt.ID,
		nullString(evt.EquipmentID),
		nullString(evt.PartID),
		nullString(evt.ScheduleID),
		string(evt.Type),
		nullTime(evt.ScheduledDate),
		nullTime(evt.CompletedDate),
		evt.Description,
		evt.CreatedBy,
		evt.CreatedAt.UTC(),
	)
	return mapError(err)
}

func buildEventWhere(filter maintenance.EventFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.EquipmentID != "" {
		clauses = append(clauses, "equipment_id = "+next(filter.EquipmentID))
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		clauses = append(clauses, "event_type = ANY("+next(types)+")")
	}
	if filter.CompletedOnly {
		clauses = append(clauses, "completed_date IS NOT NULL")
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, "COALESCE(completed_date, scheduled_date, created_at) >= "+next(filter.From.UTC()))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "COALESCE(completed_date, scheduled_date, created_at) < "+next(filter.To.UTC()))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanEvent(scanner interface{ Scan(dest ...any) error }) (*maintenance.Event, error) {
	var (
		evt           maintenance.Event
		equipmentID   sql.NullString
		partID        sql.NullString
		scheduleID    sql.NullString
		eventType     string
		scheduledDate sql.NullTime
		completedDate sql.NullTime
		description   sql.NullString
		createdBy     sql.NullString
	)
	if err := scanner.Scan(
		&evt.ID,
		&equipmentID,
		&partID,
		&scheduleID,
		&eventType,
		&scheduledDate,
		&completedDate,
		&description,
		&createdBy,
		&evt.CreatedAt,
	); err != nil {
		return nil, err
	}
	evt.EquipmentID = equipmentID.String
	evt.PartID = partID.String
	evt.ScheduleID = scheduleID.String
	evt.Type = maintenance.EventType(eventType)
	evt.ScheduledDate = timePtr(scheduledDate)
	evt.CompletedDate = timePtr(completedDate)
	evt.Description = description.String
	evt.CreatedBy = createdBy.String
	evt.CreatedAt = evt.CreatedAt.UTC()
	return &evt, nil
}
