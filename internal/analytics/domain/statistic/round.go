package statistic

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round1 rounds to one decimal place, halves toward +Inf.
func round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// ceilDays returns the number of days between a and b rounded up.
func ceilDays(from, to time.Time) int {
	return int(math.Ceil(float64(to.Sub(from)) / float64(day)))
}

// Percentage returns round(100*part/total), or 0 when total is 0.
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(roundHalfUp(100 * float64(part) / float64(total)))
}
