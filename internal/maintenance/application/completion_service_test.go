package application

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"maintenance-kpi/internal/failure"
	"maintenance-kpi/internal/maintenance/application/events"
	maintenance "maintenance-kpi/internal/maintenance/domain"
	"maintenance-kpi/internal/maintenance/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var (
	testNow = time.Date(2024, time.April, 2, 10, 0, 0, 0, time.UTC)
	testDue = time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newStore(equipmentID string) *memory.Store {
	due := testDue
	store := memory.NewStore()
	store.PutSchedule(maintenance.Schedule{ID: "s1", Name: "Belt check", EquipmentID: equipmentID, FrequencyDays: 30, NextDue: &due})
	return store
}

func newCompletion(t *testing.T, store *memory.Store, opts ...CompletionOption) *CompletionService {
	t.Helper()
	opts = append([]CompletionOption{WithCompletionClock(fixedClock{now: testNow})}, opts...)
	service, err := NewCompletionService(store, quietLogger(), opts...)
	if err != nil {
		t.Fatalf("new completion service: %v", err)
	}
	return service
}

func TestComplete_AdvancesAndRecordsEvent(t *testing.T) {
	store := newStore("eq-1")
	publisher := &recordingPublisher{}
	service := newCompletion(t, store, WithPublisher(publisher), WithIDGenerator(func() string { return "evt-1" }))

	got, err := service.Complete(context.Background(), "s1", CompleteOptions{CompletedBy: "alice"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	wantNext := testNow.AddDate(0, 0, 30)
	if !got.NextDue.Equal(wantNext) || !got.LastExecuted.Equal(testNow) {
		t.Fatalf("unexpected schedule %+v", got)
	}

	evts, _ := store.ListEvents(context.Background(), maintenance.EventFilter{})
	if len(evts) != 1 {
		t.Fatalf("expected one event, got %d", len(evts))
	}
	evt := evts[0]
	if evt.ID != "evt-1" || evt.Type != maintenance.EventScheduledMaintenance || evt.EquipmentID != "eq-1" || evt.CreatedBy != "alice" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if !evt.ScheduledDate.Equal(testDue) || !evt.CompletedDate.Equal(testNow) {
		t.Fatalf("unexpected event dates %v %v", evt.ScheduledDate, evt.CompletedDate)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.events))
	}
	completed, ok := publisher.events[0].(events.ScheduleCompleted)
	if !ok || completed.ScheduleID != "s1" || !completed.NextDue.Equal(wantNext) {
		t.Fatalf("unexpected published event %+v", publisher.events[0])
	}
}

func TestComplete_NotFoundAndInvalid(t *testing.T) {
	service := newCompletion(t, newStore("eq-1"))
	if _, err := service.Complete(context.Background(), "missing", CompleteOptions{}); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := service.Complete(context.Background(), " ", CompleteOptions{}); !errors.Is(err, failure.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestComplete_FailedEventWriteLeavesScheduleUnchanged(t *testing.T) {
	store := newStore("eq-1")
	store.FailEventWrites(errors.New("connection reset"))
	service := newCompletion(t, store)

	_, err := service.Complete(context.Background(), "s1", CompleteOptions{})
	if !errors.Is(err, failure.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	s, _ := store.Get(context.Background(), "s1")
	if !s.NextDue.Equal(testDue) || s.LastExecuted != nil {
		t.Fatalf("schedule must be unchanged, got %+v", s)
	}
}

func TestComplete_EquipmentFallback(t *testing.T) {
	cases := []struct {
		policy EquipmentFallback
		want   string
	}{
		{FallbackNone, ""},
		{FallbackFirst, "eq-first"},
	}
	for _, tc := range cases {
		store := newStore("")
		store.AddEquipment("eq-first", "eq-second")
		service := newCompletion(t, store, WithEquipmentFallback(tc.policy))
		if _, err := service.Complete(context.Background(), "s1", CompleteOptions{}); err != nil {
			t.Fatalf("%s: complete: %v", tc.policy, err)
		}
		evts, _ := store.ListEvents(context.Background(), maintenance.EventFilter{})
		if evts[0].EquipmentID != tc.want {
			t.Fatalf("%s: expected equipment %q, got %q", tc.policy, tc.want, evts[0].EquipmentID)
		}
	}
}

func TestComplete_ExpectedNextDueGuardsDuplicates(t *testing.T) {
	store := newStore("eq-1")
	service := newCompletion(t, store)
	seen := testDue

	if _, err := service.Complete(context.Background(), "s1", CompleteOptions{ExpectedNextDue: &seen}); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	_, err := service.Complete(context.Background(), "s1", CompleteOptions{ExpectedNextDue: &seen})
	if !errors.Is(err, failure.ErrConflict) {
		t.Fatalf("expected conflict for stale expected due, got %v", err)
	}
	evts, _ := store.ListEvents(context.Background(), maintenance.EventFilter{})
	if len(evts) != 1 {
		t.Fatalf("expected a single completion event, got %d", len(evts))
	}
}

func TestComplete_ConcurrentCallsAdvanceOnce(t *testing.T) {
	store := newStore("eq-1")
	service := newCompletion(t, store)
	seen := testDue

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Complete(context.Background(), "s1", CompleteOptions{ExpectedNextDue: &seen})
		}(i)
	}
	wg.Wait()

	success, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, failure.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if success != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d/%d", success, conflicts)
	}
	evts, _ := store.ListEvents(context.Background(), maintenance.EventFilter{})
	if len(evts) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(evts))
	}
}

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

func TestComplete_ConcurrentWithoutPreconditionNeverDoubleAdvancesFromSameDue(t *testing.T) {
	store := newStore("eq-1")
	service := newCompletion(t, store, WithCompletionClock(&tickingClock{now: testNow}))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Complete(context.Background(), "s1", CompleteOptions{})
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, failure.ErrConflict) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if success == 0 {
		t.Fatalf("expected at least one completion to succeed")
	}
	evts, _ := store.ListEvents(context.Background(), maintenance.EventFilter{})
	if len(evts) != success {
		t.Fatalf("events %d do not match successful completions %d", len(evts), success)
	}
	seenScheduled := make(map[time.Time]bool)
	for _, evt := range evts {
		if seenScheduled[*evt.ScheduledDate] {
			t.Fatalf("two completions advanced from the same due date %s", evt.ScheduledDate)
		}
		seenScheduled[*evt.ScheduledDate] = true
	}
}

func TestParseEquipmentFallback(t *testing.T) {
	for raw, want := range map[string]EquipmentFallback{"": FallbackNone, "NONE": FallbackNone, " first ": FallbackFirst} {
		got, err := ParseEquipmentFallback(raw)
		if err != nil || got != want {
			t.Fatalf("ParseEquipmentFallback(%q) = %s, %v", raw, got, err)
		}
	}
	if _, err := ParseEquipmentFallback("random"); !errors.Is(err, failure.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
