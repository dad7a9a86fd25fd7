package maintenance

import (
	"strings"
	"time"
)

// EventType is the kind of maintenance activity recorded against equipment.
type EventType string

const (
	EventScheduledMaintenance EventType = "SCHEDULED_MAINTENANCE"
	EventBreakdown            EventType = "BREAKDOWN"
	EventRepair               EventType = "REPAIR"
	EventReplacement          EventType = "REPLACEMENT"
	EventInspection           EventType = "INSPECTION"
)

// IsValid checks if the event type is one of the supported values.
func (t EventType) IsValid() bool {
	switch t {
	case EventScheduledMaintenance, EventBreakdown, EventRepair, EventReplacement, EventInspection:
		return true
	default:
		return false
	}
}

// ParseEventType normalizes a raw event type.
func ParseEventType(value string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", ErrInvalidEventType
	}
	return t, nil
}

// Event is a maintenance event snapshot as stored.
type Event struct {
	ID            string
	EquipmentID   string
	PartID        string
	ScheduleID    string
	Type          EventType
	ScheduledDate *time.Time
	CompletedDate *time.Time
	Description   string
	CreatedBy     string
	CreatedAt     time.Time
}

// ActivityDate is the timestamp used to place the event on a timeline:
// completion, else the scheduled date, else creation.
func (e Event) ActivityDate() time.Time {
	if e.CompletedDate != nil && !e.CompletedDate.IsZero() {
		return *e.CompletedDate
	}
	if e.ScheduledDate != nil && !e.ScheduledDate.IsZero() {
		return *e.ScheduledDate
	}
	return e.CreatedAt
}

// UsesPart reports whether the event consumed a part.
func (e Event) UsesPart() bool { return e.PartID != "" }

// Class is the preventive/reactive classification of an event.
type Class string

const (
	ClassPreventive Class = "preventive"
	ClassReactive   Class = "reactive"
)

// Classifier assigns a class to an event type.
type Classifier func(EventType) Class

// DefaultClassifier treats scheduled maintenance and inspections as
// preventive and everything else as reactive.
func DefaultClassifier(t EventType) Class {
	switch t {
	case EventScheduledMaintenance, EventInspection:
		return ClassPreventive
	default:
		return ClassReactive
	}
}

// NewClassifier builds a classifier from the default rule plus overrides.
// Unknown types or classes in overrides are ignored.
func NewClassifier(overrides map[EventType]Class) Classifier {
	if len(overrides) == 0 {
		return DefaultClassifier
	}
	table := make(map[EventType]Class, len(overrides))
	for t, c := range overrides {
		if !t.IsValid() || (c != ClassPreventive && c != ClassReactive) {
			continue
		}
		table[t] = c
	}
	return func(t EventType) Class {
		if c, ok := table[t]; ok {
			return c
		}
		return DefaultClassifier(t)
	}
}
