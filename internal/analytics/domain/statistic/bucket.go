package statistic

import "time"

// Bucketed is one window of an aggregated series.
type Bucketed[R any] struct {
	Window Window
	Value  R
}

// Bucket assigns every record to the first window containing keyOf(record)
// and folds each window with reduce. Records outside all windows are dropped.
// Every window appears in the output, in window order; empty windows carry init.
// reduce must not depend on record order within a window.
func Bucket[T, R any](records []T, windows []Window, keyOf func(T) time.Time, init R, reduce func(R, T) R) []Bucketed[R] {
	out := make([]Bucketed[R], len(windows))
	for i, w := range windows {
		out[i] = Bucketed[R]{Window: w, Value: init}
	}
	if keyOf == nil || reduce == nil {
		return out
	}
	for _, record := range records {
		at := keyOf(record)
		for i := range windows {
			if windows[i].Contains(at) {
				out[i].Value = reduce(out[i].Value, record)
				break
			}
		}
	}
	return out
}

// Count is a reducer that counts records.
func Count[T any](n int, _ T) int { return n + 1 }

// CountWhere builds a reducer that counts records matching pred.
func CountWhere[T any](pred func(T) bool) func(int, T) int {
	return func(n int, record T) int {
		if pred(record) {
			return n + 1
		}
		return n
	}
}

// Values extracts the reduced values in window order.
func Values[R any](buckets []Bucketed[R]) []R {
	out := make([]R, len(buckets))
	for i, b := range buckets {
		out[i] = b.Value
	}
	return out
}

// GroupBy groups records by key, preserving first-seen key order.
func GroupBy[T any, K comparable](records []T, keyOf func(T) K) ([]K, map[K][]T) {
	groups := make(map[K][]T)
	var keys []K
	for _, record := range records {
		k := keyOf(record)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], record)
	}
	return keys, groups
}
