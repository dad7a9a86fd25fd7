package events

import "time"

// ScheduleCompleted is published after a completion commits.
type ScheduleCompleted struct {
	ScheduleID      string
	EquipmentID     string
	EventID         string
	CompletedBy     string
	PreviousNextDue *time.Time
	NextDue         time.Time
	OccurredAt      time.Time
}
