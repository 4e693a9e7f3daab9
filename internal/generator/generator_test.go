package generator

import (
	"testing"

	"github.com/verte-zerg/kazu/internal/model"
)

func TestBetweenStaysInRange(t *testing.T) {
	g := NewSeeded(1)
	for i := 0; i < 1000; i++ {
		n := g.Between(1, 1000)
		if n < 1 || n > 1000 {
			t.Fatalf("value %d outside range", n)
		}
	}
	if n := g.Between(5, 5); n != 5 {
		t.Fatalf("expected degenerate range to return 5, got %d", n)
	}
	if n := g.Between(9, 3); n < 3 || n > 9 {
		t.Fatalf("expected swapped bounds to work, got %d", n)
	}
}

func TestDigitBuckets(t *testing.T) {
	got := digitBuckets(model.Range{Min: 5, Max: 1200})
	want := []bucket{
		{digits: 1, lo: 5, hi: 9},
		{digits: 2, lo: 10, hi: 99},
		{digits: 3, lo: 100, hi: 999},
		{digits: 4, lo: 1000, hi: 1200},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestWeightedFavorsWeakBucket(t *testing.T) {
	g := NewSeeded(42)
	r := model.Range{Min: 1, Max: 9999}
	weak := map[int]float64{2: 1.0}
	twoDigit := 0
	const draws = 2000
	for i := 0; i < draws; i++ {
		n := g.Weighted(r, weak, 20)
		if !r.Contains(n) {
			t.Fatalf("value %d outside range", n)
		}
		if n >= 10 && n <= 99 {
			twoDigit++
		}
	}
	// Bucket 2 has weight 21 against 1+1+1 for the others.
	if twoDigit < draws/2 {
		t.Fatalf("expected weak bucket to dominate, got %d/%d", twoDigit, draws)
	}
}

func TestFocusStaysInRange(t *testing.T) {
	f := Focus{Gen: NewSeeded(3), Weak: map[int]float64{3: 1}, Factor: 4}
	hits := 0
	for i := 0; i < 2000; i++ {
		n := f.Between(50, 500)
		if n < 50 || n > 500 {
			t.Fatalf("value %d out of range", n)
		}
		if n >= 100 {
			hits++
		}
	}
	// 2-digit bucket has weight 1, 3-digit bucket has weight 5.
	if hits < 1400 {
		t.Fatalf("expected weak bucket to dominate, got %d/2000", hits)
	}
	if n := f.Between(9, 9); n != 9 {
		t.Fatalf("expected single value range, got %d", n)
	}
}
