package statistic

import (
	"sort"
	"time"

	"github.com/samber/lo"

	maintenance "maintenance-kpi/internal/maintenance/domain"
)

// DurationStats is the mean maintenance duration over completed events.
type DurationStats struct {
	AverageDays int
	TotalDays   int
	SampleCount int
}

// MTBFStats is the mean time between breakdown completions.
type MTBFStats struct {
	AverageDays   int
	IntervalCount int
}

// MeanMaintenanceDuration averages ceil(days) between scheduled and completed
// dates over events that carry both. It returns ErrNoDurationSamples when no
// event qualifies; zero would read as "instant".
func MeanMaintenanceDuration(events []maintenance.Event) (DurationStats, error) {
	var total, n int
	for _, e := range events {
		if e.ScheduledDate == nil || e.CompletedDate == nil {
			continue
		}
		d := ceilDays(*e.ScheduledDate, *e.CompletedDate)
		if d < 0 {
			d = -d
		}
		total += d
		n++
	}
	if n == 0 {
		return DurationStats{}, ErrNoDurationSamples
	}
	return DurationStats{
		AverageDays: int(roundHalfUp(float64(total) / float64(n))),
		TotalDays:   total,
		SampleCount: n,
	}, nil
}

// MTBF averages the ceil(days) gaps between consecutive completed breakdowns.
// A single breakdown has no interval, so fewer than two yields ErrTooFewBreakdowns.
func MTBF(events []maintenance.Event) (MTBFStats, error) {
	completions := lo.FilterMap(events, func(e maintenance.Event, _ int) (time.Time, bool) {
		if e.Type != maintenance.EventBreakdown || e.CompletedDate == nil || e.CompletedDate.IsZero() {
			return time.Time{}, false
		}
		return *e.CompletedDate, true
	})
	if len(completions) < 2 {
		return MTBFStats{}, ErrTooFewBreakdowns
	}
	sort.Slice(completions, func(i, j int) bool { return completions[i].Before(completions[j]) })

	var total int
	for i := 1; i < len(completions); i++ {
		total += ceilDays(completions[i-1], completions[i])
	}
	intervals := len(completions) - 1
	return MTBFStats{
		AverageDays:   int(roundHalfUp(float64(total) / float64(intervals))),
		IntervalCount: intervals,
	}, nil
}

// MaintenanceMix is the preventive/reactive split of one period.
type MaintenanceMix struct {
	PreventiveCount      int
	ReactiveCount        int
	PreventivePercentage int
}

// MixPoint is a labelled MaintenanceMix.
type MixPoint struct {
	Period string
	Start  time.Time
	End    time.Time
	MaintenanceMix
}

// PreventiveReactiveSeries buckets events by activity date and counts them
// per class. classify defaults to maintenance.DefaultClassifier.
func PreventiveReactiveSeries(events []maintenance.Event, windows []Window, classify maintenance.Classifier) []MixPoint {
	if classify == nil {
		classify = maintenance.DefaultClassifier
	}
	buckets := Bucket(events, windows, maintenance.Event.ActivityDate, MaintenanceMix{}, func(acc MaintenanceMix, e maintenance.Event) MaintenanceMix {
		if classify(e.Type) == maintenance.ClassPreventive {
			acc.PreventiveCount++
		} else {
			acc.ReactiveCount++
		}
		return acc
	})

	points := make([]MixPoint, len(buckets))
	for i, b := range buckets {
		mix := b.Value
		mix.PreventivePercentage = Percentage(mix.PreventiveCount, mix.PreventiveCount+mix.ReactiveCount)
		points[i] = MixPoint{
			Period:         b.Window.Label,
			Start:          b.Window.Start,
			End:            b.Window.End,
			MaintenanceMix: mix,
		}
	}
	return points
}
