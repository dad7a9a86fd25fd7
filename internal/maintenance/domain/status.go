package maintenance

import (
	"math"
	"time"
)

// DefaultDueSoonDays is the horizon, in days, inside which a schedule is due soon.
const DefaultDueSoonDays = 7

// DueStatus is the derived state of a schedule relative to now.
type DueStatus string

const (
	StatusUpcoming DueStatus = "UPCOMING"
	StatusDueSoon  DueStatus = "DUE_SOON"
	StatusOverdue  DueStatus = "OVERDUE"
)

// ScheduleStatus is a read model of a schedule's derived status.
type ScheduleStatus struct {
	ScheduleID   string
	Name         string
	Status       DueStatus
	DaysUntilDue int
	NextDue      *time.Time
}

// DaysUntilDue returns ceil((nextDue - now) / 1 day).
// A schedule with no due date is treated as due now.
func DaysUntilDue(nextDue *time.Time, now time.Time) int {
	if nextDue == nil || nextDue.IsZero() {
		return 0
	}
	days := nextDue.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// StatusForDays maps days-until-due to a status.
func StatusForDays(days, dueSoonDays int) DueStatus {
	if dueSoonDays < 0 {
		dueSoonDays = DefaultDueSoonDays
	}
	switch {
	case days < 0:
		return StatusOverdue
	case days <= dueSoonDays:
		return StatusDueSoon
	default:
		return StatusUpcoming
	}
}

// DeriveStatus recomputes the status of a schedule at now.
func DeriveStatus(s Schedule, now time.Time, dueSoonDays int) ScheduleStatus {
	days := DaysUntilDue(s.NextDue, now)
	return ScheduleStatus{
		ScheduleID:   s.ID,
		Name:         s.Name,
		Status:       StatusForDays(days, dueSoonDays),
		DaysUntilDue: days,
		NextDue:      cloneTime(s.NextDue),
	}
}
