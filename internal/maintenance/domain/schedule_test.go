package maintenance

import (
	"errors"
	"testing"
	"time"

	"maintenance-kpi/internal/failure"
)

func TestDeriveStatus_Thresholds(t *testing.T) {
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		offset   time.Duration
		wantDays int
		want     DueStatus
	}{
		{"two days late", -48 * time.Hour, -2, StatusOverdue},
		{"thirty hours late", -30 * time.Hour, -1, StatusOverdue},
		{"half a day late", -12 * time.Hour, 0, StatusDueSoon},
		{"due now", 0, 0, StatusDueSoon},
		{"in an hour", time.Hour, 1, StatusDueSoon},
		{"in seven days", 7 * 24 * time.Hour, 7, StatusDueSoon},
		{"in seven days and a minute", 7*24*time.Hour + time.Minute, 8, StatusUpcoming},
		{"in a month", 30 * 24 * time.Hour, 30, StatusUpcoming},
	}
	for _, tc := range cases {
		due := now.Add(tc.offset)
		got := DeriveStatus(Schedule{ID: "s1", FrequencyDays: 30, NextDue: &due}, now, DefaultDueSoonDays)
		if got.DaysUntilDue != tc.wantDays || got.Status != tc.want {
			t.Fatalf("%s: got %d/%s, want %d/%s", tc.name, got.DaysUntilDue, got.Status, tc.wantDays, tc.want)
		}
	}
}

func TestDeriveStatus_NoDueDateIsDueNow(t *testing.T) {
	got := DeriveStatus(Schedule{ID: "s1", FrequencyDays: 7}, time.Now(), DefaultDueSoonDays)
	if got.Status != StatusDueSoon || got.DaysUntilDue != 0 {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestSchedule_CompleteAdvancesFromCompletionTime(t *testing.T) {
	oldDue := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	completedAt := time.Date(2024, time.January, 14, 9, 30, 0, 0, time.UTC)
	s := Schedule{ID: "s1", Name: "Lubrication", FrequencyDays: 30, NextDue: &oldDue, EquipmentID: "eq-1"}

	c, err := s.Complete(completedAt)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	wantNext := completedAt.AddDate(0, 0, 30)
	if !c.Schedule.NextDue.Equal(wantNext) {
		t.Fatalf("next due %s, want %s", c.Schedule.NextDue, wantNext)
	}
	if !c.Schedule.LastExecuted.Equal(completedAt) {
		t.Fatalf("last executed %s", c.Schedule.LastExecuted)
	}
	if !s.NextDue.Equal(oldDue) {
		t.Fatalf("receiver must not be mutated")
	}

	evt := c.AuditEvent("evt-1", "eq-1", "system")
	if evt.Type != EventScheduledMaintenance {
		t.Fatalf("unexpected event type %s", evt.Type)
	}
	if !evt.ScheduledDate.Equal(oldDue) || !evt.CompletedDate.Equal(completedAt) {
		t.Fatalf("unexpected event dates %v %v", evt.ScheduledDate, evt.CompletedDate)
	}
	if evt.ScheduleID != "s1" || evt.EquipmentID != "eq-1" {
		t.Fatalf("unexpected event linkage %+v", evt)
	}
}

func TestSchedule_CompleteRejectsInvalid(t *testing.T) {
	if _, err := (Schedule{ID: "s1"}).Complete(time.Now()); !errors.Is(err, failure.ErrInvalidArgument) {
		t.Fatalf("expected invalid frequency, got %v", err)
	}
	if _, err := (Schedule{ID: "s1", FrequencyDays: 1}).Complete(time.Time{}); !errors.Is(err, ErrInvalidCompletedAt) {
		t.Fatalf("expected invalid completed_at, got %v", err)
	}
}

func TestNewClassifier_IgnoresUnknownOverrides(t *testing.T) {
	classify := NewClassifier(map[EventType]Class{
		EventReplacement: ClassPreventive,
		EventType("FOO"): ClassPreventive,
		EventBreakdown:   Class("sometimes"),
	})
	if classify(EventReplacement) != ClassPreventive {
		t.Fatalf("expected replacement override")
	}
	if classify(EventBreakdown) != ClassReactive {
		t.Fatalf("expected invalid class override to be ignored")
	}
	if classify(EventInspection) != ClassPreventive {
		t.Fatalf("expected default rule for inspection")
	}
}

func TestEventFilter_Matches(t *testing.T) {
	at := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	e := Event{EquipmentID: "eq-1", Type: EventBreakdown, CompletedDate: &at}
	f := EventFilter{EquipmentID: "eq-1", Types: []EventType{EventBreakdown}, From: at, To: at.Add(time.Hour), CompletedOnly: true}
	if !f.Matches(e) {
		t.Fatalf("expected match")
	}
	f.To = at
	if f.Matches(e) {
		t.Fatalf("expected exclusive upper bound")
	}
	if (EventFilter{EquipmentID: "eq-2"}).Matches(e) {
		t.Fatalf("expected equipment mismatch")
	}
}
