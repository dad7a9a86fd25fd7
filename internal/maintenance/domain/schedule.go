package maintenance

import "time"

// Schedule is a recurring maintenance plan.
// Invariants:
// 1) FrequencyDays is positive.
// 2) After a completion at t, NextDue == t + FrequencyDays days.
// 3) The due status is never stored; it is derived from NextDue on read.
type Schedule struct {
	ID            string
	Name          string
	Description   string
	EquipmentID   string
	FrequencyDays int
	LastExecuted  *time.Time
	NextDue       *time.Time
}

// Validate checks schedule invariants.
func (s Schedule) Validate() error {
	if s.ID == "" {
		return ErrEmptyScheduleID
	}
	if s.FrequencyDays <= 0 {
		return ErrInvalidFrequency
	}
	return nil
}

// Completion is the result of completing a schedule at a point in time.
// PreviousNextDue is the due date the completion was computed from and is
// the compare-and-swap guard for the write.
type Completion struct {
	Schedule        Schedule
	PreviousNextDue *time.Time
	CompletedAt     time.Time
}

// Complete computes the advanced schedule without mutating the receiver.
func (s Schedule) Complete(completedAt time.Time) (Completion, error) {
	if err := s.Validate(); err != nil {
		return Completion{}, err
	}
	if completedAt.IsZero() {
		return Completion{}, ErrInvalidCompletedAt
	}

	next := completedAt.AddDate(0, 0, s.FrequencyDays)
	executed := completedAt
	advanced := s.Clone()
	advanced.LastExecuted = &executed
	advanced.NextDue = &next

	return Completion{
		Schedule:        advanced,
		PreviousNextDue: cloneTime(s.NextDue),
		CompletedAt:     completedAt,
	}, nil
}

// AuditEvent builds the SCHEDULED_MAINTENANCE event recorded for a completion.
func (c Completion) AuditEvent(id, equipmentID, createdBy string) *Event {
	completed := c.CompletedAt
	return &Event{
		ID:            id,
		EquipmentID:   equipmentID,
		ScheduleID:    c.Schedule.ID,
		Type:          EventScheduledMaintenance,
		ScheduledDate: cloneTime(c.PreviousNextDue),
		CompletedDate: &completed,
		Description:   "Completed scheduled maintenance: " + c.Schedule.Name,
		CreatedBy:     createdBy,
		CreatedAt:     completed,
	}
}

// Clone returns a detached copy.
func (s Schedule) Clone() Schedule {
	out := s
	out.LastExecuted = cloneTime(s.LastExecuted)
	out.NextDue = cloneTime(s.NextDue)
	return out
}

// SameDue reports whether two optional due dates denote the same instant.
func SameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
