// Package generator picks quiz target numbers.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/kazu/internal/model"
)

// Generator produces random targets inside a difficulty range.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Between returns a uniform integer in [lo, hi]. Reversed bounds are swapped.
func (g *Generator) Between(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + g.rnd.Intn(hi-lo+1)
}

// Weighted picks a digit-count bucket inside r with weight 1+weak[digits]*factor,
// then returns a uniform number from that bucket clipped to r.
func (g *Generator) Weighted(r model.Range, weak map[int]float64, factor float64) int {
	buckets := digitBuckets(r)
	if len(buckets) == 0 {
		return g.Between(r.Min, r.Max)
	}
	weights := make([]float64, len(buckets))
	total := 0.0
	for i, b := range buckets {
		w := 1.0 + weak[b.digits]*factor
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return g.Between(r.Min, r.Max)
	}

	pick := g.rnd.Float64() * total
	acc := 0.0
	idx := len(buckets) - 1
	for i, w := range weights {
		acc += w
		if pick <= acc {
			idx = i
			break
		}
	}
	b := buckets[idx]
	return g.Between(b.lo, b.hi)
}

type bucket struct {
	digits int
	lo     int
	hi     int
}

func digitBuckets(r model.Range) []bucket {
	if r.Max < r.Min || r.Min < 0 {
		return nil
	}
	var out []bucket
	lo, hi := 0, 9
	for digits := 1; lo <= r.Max; digits++ {
		clipLo, clipHi := max(lo, r.Min), min(hi, r.Max)
		if clipLo <= clipHi {
			out = append(out, bucket{digits: digits, lo: clipLo, hi: clipHi})
		}
		lo = hi + 1
		hi = hi*10 + 9
	}
	return out
}

// Focus biases targets toward weak digit counts. It satisfies the quiz
// generator contract, so it can replace a plain Generator.
type Focus struct {
	Gen    *Generator
	Weak   map[int]float64
	Factor float64
}

// Between returns a weighted target in [lo, hi].
func (f Focus) Between(lo, hi int) int {
	return f.Gen.Weighted(model.Range{Min: lo, Max: hi}, f.Weak, f.Factor)
}
