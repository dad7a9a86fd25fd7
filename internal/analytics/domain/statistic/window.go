package statistic

import "time"

// Window is a half-open [Start, End) period.
type Window struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Windows returns count calendar-aligned windows of the given unit, oldest
// first, contiguous, with the last window ending at anchor so the current
// partial unit is included. When anchor sits exactly on a unit boundary the
// last window is the full unit ending at anchor.
func Windows(count int, unit Granularity, anchor time.Time) ([]Window, error) {
	if count < 1 {
		return nil, ErrInvalidWindowCount
	}
	if !unit.IsValid() {
		return nil, ErrInvalidGranularity
	}
	if anchor.IsZero() {
		return nil, ErrInvalidAnchor
	}

	current := unit.truncate(anchor)
	if current.Equal(anchor) {
		current = unit.add(current, -1)
	}
	first := unit.add(current, -(count - 1))

	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		start := unit.add(first, i)
		end := unit.add(start, 1)
		if i == count-1 {
			end = anchor
		}
		windows = append(windows, Window{
			Start: start,
			End:   end,
			Label: unit.TimeKey(start),
		})
	}
	return windows, nil
}

// Span returns the [start, end) range covered by windows.
func Span(windows []Window) (time.Time, time.Time) {
	if len(windows) == 0 {
		return time.Time{}, time.Time{}
	}
	return windows[0].Start, windows[len(windows)-1].End
}
