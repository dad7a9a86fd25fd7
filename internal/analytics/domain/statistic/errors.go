package statistic

import (
	"fmt"

	"maintenance-kpi/internal/failure"
)

var (
	// ErrInvalidGranularity is returned when granularity is unsupported.
	ErrInvalidGranularity = fmt.Errorf("statistic: invalid granularity: %w", failure.ErrInvalidArgument)
	// ErrInvalidWindowCount is returned when a window count is below one.
	ErrInvalidWindowCount = fmt.Errorf("statistic: window count must be at least 1: %w", failure.ErrInvalidArgument)
	// ErrInvalidAnchor is returned when the window anchor is zero.
	ErrInvalidAnchor = fmt.Errorf("statistic: invalid anchor: %w", failure.ErrInvalidArgument)
	// ErrNoDurationSamples is returned when no event has both scheduled and completed dates.
	ErrNoDurationSamples = fmt.Errorf("statistic: no completed events with a scheduled date: %w", failure.ErrNoData)
	// ErrTooFewBreakdowns is returned when fewer than two completed breakdowns exist.
	ErrTooFewBreakdowns = fmt.Errorf("statistic: fewer than two completed breakdowns: %w", failure.ErrNoData)
)
