package statistic

import (
	"testing"
	"time"
)

type stamped struct {
	at    time.Time
	value int
}

func stampedAt(s stamped) time.Time { return s.at }

func TestBucket_GapFillingWithNoRecords(t *testing.T) {
	anchor := time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)
	windows, err := Windows(6, GranularityMonth, anchor)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	out := Bucket[stamped, int](nil, windows, stampedAt, 0, Count[stamped])
	if len(out) != len(windows) {
		t.Fatalf("expected %d buckets, got %d", len(windows), len(out))
	}
	for i, b := range out {
		if b.Value != 0 {
			t.Fatalf("bucket %d expected zero, got %d", i, b.Value)
		}
		if b.Window != windows[i] {
			t.Fatalf("bucket %d out of window order", i)
		}
	}
}

func TestBucket_AssignsAndDropsOutOfRange(t *testing.T) {
	anchor := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	windows, err := Windows(3, GranularityMonth, anchor)
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	records := []stamped{
		{at: time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC), value: 100}, // before range
		{at: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), value: 1},
		{at: time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC), value: 2},
		{at: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), value: 5},
		{at: anchor, value: 1000}, // end is exclusive
	}
	sum := func(acc int, s stamped) int { return acc + s.value }
	out := Values(Bucket(records, windows, stampedAt, 0, sum))
	want := []int{3, 0, 5}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("bucket %d = %d, want %d (all %v)", i, out[i], want[i], out)
		}
	}
}

func TestBucket_OrderIndependent(t *testing.T) {
	anchor := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	windows, _ := Windows(3, GranularityMonth, anchor)
	a := []stamped{
		{at: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)},
		{at: time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)},
		{at: time.Date(2024, time.February, 6, 0, 0, 0, 0, time.UTC)},
	}
	b := []stamped{a[2], a[0], a[1]}
	left := Values(Bucket(a, windows, stampedAt, 0, Count[stamped]))
	right := Values(Bucket(b, windows, stampedAt, 0, Count[stamped]))
	for i := range left {
		if left[i] != right[i] {
			t.Fatalf("bucket %d differs after permutation: %d vs %d", i, left[i], right[i])
		}
	}
}

func TestGroupBy_PreservesFirstSeenOrder(t *testing.T) {
	keys, groups := GroupBy([]string{"b1", "a1", "b2", "c1"}, func(s string) byte { return s[0] })
	if string(keys) != "bac" {
		t.Fatalf("unexpected key order %q", string(keys))
	}
	if len(groups['b']) != 2 {
		t.Fatalf("expected two b records, got %v", groups['b'])
	}
}
