package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	maintenance "maintenance-kpi/internal/maintenance/domain"
)

// Store is an in-memory schedule and event store for demo/testing.
// Transactions buffer their writes and commit under the store lock only if
// every advanced schedule still has the NextDue the transaction expected.
type Store struct {
	mu         sync.RWMutex
	schedules  map[string]maintenance.Schedule
	events     []maintenance.Event
	equipment  []string
	failEvents error
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{schedules: make(map[string]maintenance.Schedule)}
}

// PutSchedule inserts or replaces a schedule.
func (s *Store) PutSchedule(schedule maintenance.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[schedule.ID] = schedule.Clone()
}

// AddEquipment registers equipment ids in insertion order.
func (s *Store) AddEquipment(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.equipment = append(s.equipment, ids...)
}

// AddEvents appends historical events.
func (s *Store) AddEvents(events ...maintenance.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

// FailEventWrites makes every later CreateEvent return err. Pass nil to reset.
func (s *Store) FailEventWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEvents = err
}

// Get loads a schedule by id.
func (s *Store) Get(ctx context.Context, id string) (*maintenance.Schedule, error) {
	_ = ctx
	if id == "" {
		return nil, maintenance.ErrEmptyScheduleID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return nil, maintenance.ErrScheduleNotFound
	}
	out := schedule.Clone()
	return &out, nil
}

// List returns all schedules ordered by id.
func (s *Store) List(ctx context.Context) ([]maintenance.Schedule, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]maintenance.Schedule, 0, len(s.schedules))
	for _, schedule := range s.schedules {
		out = append(out, schedule.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListEvents returns matching events ordered by activity date.
func (s *Store) ListEvents(ctx context.Context, filter maintenance.EventFilter) ([]maintenance.Event, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]maintenance.Event, 0, len(s.events))
	for _, evt := range s.events {
		if filter.Matches(evt) {
			out = append(out, evt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ActivityDate().Before(out[j].ActivityDate())
	})
	return out, nil
}

// WithinTx runs fn against a buffered transaction and commits on success.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx maintenance.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &storeTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *storeTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range tx.advances {
		current, ok := s.schedules[w.schedule.ID]
		if !ok {
			return maintenance.ErrScheduleNotFound
		}
		if !maintenance.SameDue(current.NextDue, w.expected) {
			return maintenance.ErrScheduleConflict
		}
	}
	for _, w := range tx.advances {
		s.schedules[w.schedule.ID] = w.schedule
	}
	s.events = append(s.events, tx.events...)
	return nil
}

type pendingAdvance struct {
	schedule maintenance.Schedule
	expected *time.Time
}

type storeTx struct {
	store    *Store
	advances []pendingAdvance
	events   []maintenance.Event
}

func (t *storeTx) GetForUpdate(ctx context.Context, id string) (*maintenance.Schedule, error) {
	return t.store.Get(ctx, id)
}

func (t *storeTx) Advance(ctx context.Context, advanced maintenance.Schedule, expectedNextDue *time.Time) error {
	current, err := t.store.Get(ctx, advanced.ID)
	if err != nil {
		return err
	}
	if !maintenance.SameDue(current.NextDue, expectedNextDue) {
		return maintenance.ErrScheduleConflict
	}
	t.advances = append(t.advances, pendingAdvance{schedule: advanced.Clone(), expected: expectedNextDue})
	return nil
}

func (t *storeTx) CreateEvent(ctx context.Context, event *maintenance.Event) error {
	_ = ctx
	if event == nil {
		return maintenance.ErrNilEvent
	}
	t.store.mu.RLock()
	failErr := t.store.failEvents
	t.store.mu.RUnlock()
	if failErr != nil {
		return failErr
	}
	t.events = append(t.events, *event)
	return nil
}

func (t *storeTx) FirstEquipmentID(ctx context.Context) (string, error) {
	_ = ctx
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	if len(t.store.equipment) == 0 {
		return "", nil
	}
	return t.store.equipment[0], nil
}
