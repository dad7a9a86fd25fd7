package statistic

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the calendar unit of a KPI window.
type Granularity string

const (
	GranularityDay   Granularity = "DAY"
	GranularityWeek  Granularity = "WEEK"
	GranularityMonth Granularity = "MONTH"
)

// IsValid checks if the granularity is one of the supported values.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	default:
		return false
	}
}

// ParseGranularity accepts "day", "week" or "month" in any case.
// An empty value defaults to month.
func ParseGranularity(value string) (Granularity, error) {
	if strings.TrimSpace(value) == "" {
		return GranularityMonth, nil
	}
	g := Granularity(strings.ToUpper(strings.TrimSpace(value)))
	if !g.IsValid() {
		return "", ErrInvalidGranularity
	}
	return g, nil
}

// TimeKey is the label of the calendar unit that contains t.
func (g Granularity) TimeKey(t time.Time) string {
	switch g {
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityMonth:
		return t.Format("2006-01")
	default:
		return ""
	}
}

// truncate returns the start of the unit containing t, in t's location.
// Weeks start on Monday.
func (g Granularity) truncate(t time.Time) time.Time {
	switch g {
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return t
	}
}

// add moves a unit start by n units.
func (g Granularity) add(t time.Time, n int) time.Time {
	switch g {
	case GranularityDay:
		return t.AddDate(0, 0, n)
	case GranularityWeek:
		return t.AddDate(0, 0, 7*n)
	case GranularityMonth:
		return t.AddDate(0, n, 0)
	default:
		return t
	}
}
