package maintenance

import (
	"context"
	"time"
)

// ScheduleRepository reads schedules.
type ScheduleRepository interface {
	Get(ctx context.Context, id string) (*Schedule, error)
	List(ctx context.Context) ([]Schedule, error)
}

// EventFilter narrows event queries. Zero values mean "no constraint".
// The time range applies to the event's activity date with [From, To) semantics.
type EventFilter struct {
	EquipmentID   string
	Types         []EventType
	From          time.Time
	To            time.Time
	CompletedOnly bool
}

// Matches reports whether an event satisfies the filter.
func (f EventFilter) Matches(e Event) bool {
	if f.EquipmentID != "" && e.EquipmentID != f.EquipmentID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CompletedOnly && (e.CompletedDate == nil || e.CompletedDate.IsZero()) {
		return false
	}
	at := e.ActivityDate()
	if !f.From.IsZero() && at.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !at.Before(f.To) {
		return false
	}
	return true
}

// EventReader lists maintenance events.
type EventReader interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}

// Tx is the unit of work for the completion transition.
type Tx interface {
	// GetForUpdate loads a schedule and holds it for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string) (*Schedule, error)
	// Advance writes the advanced schedule only if NextDue still equals expectedNextDue.
	// It returns ErrScheduleConflict otherwise.
	Advance(ctx context.Context, advanced Schedule, expectedNextDue *time.Time) error
	// CreateEvent inserts a maintenance event.
	CreateEvent(ctx context.Context, event *Event) error
	// FirstEquipmentID returns any equipment id, or "" when none exists.
	FirstEquipmentID(ctx context.Context) (string, error)
}

// TxRunner runs fn in a transaction; the transaction commits only if fn
// returns nil.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
