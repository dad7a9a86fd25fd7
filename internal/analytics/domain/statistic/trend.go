package statistic

// Trend is the percentage change from the second-to-last to the last value,
// rounded to one decimal. A previous value of zero reports 0 instead of an
// undefined change, and so does a series shorter than two points.
func Trend(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	last := series[len(series)-1]
	previous := series[len(series)-2]
	if previous == 0 {
		return 0
	}
	return round1(((last - previous) / previous) * 100)
}
