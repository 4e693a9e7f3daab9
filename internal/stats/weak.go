package stats

import (
	"sort"

	"github.com/verte-zerg/kazu/internal/model"
)

// SelectWeakMagnitudes maps digit counts to their error rate. Buckets without
// answers or without mistakes are left out.
func SelectWeakMagnitudes(aggs []model.MagnitudeAggregate) map[int]float64 {
	weak := map[int]float64{}
	for _, agg := range aggs {
		if agg.Incorrect == 0 {
			continue
		}
		weak[agg.Digits] = 1 - Accuracy(agg.Correct, agg.Incorrect)
	}
	return weak
}

func sortByAccuracy(aggs []model.MagnitudeAggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		ai := Accuracy(aggs[i].Correct, aggs[i].Incorrect)
		aj := Accuracy(aggs[j].Correct, aggs[j].Incorrect)
		if ai == aj {
			return aggs[i].Digits < aggs[j].Digits
		}
		return ai < aj
	})
}

// WeakestFirst returns a copy of aggs ordered by accuracy, lowest first.
func WeakestFirst(aggs []model.MagnitudeAggregate) []model.MagnitudeAggregate {
	out := append([]model.MagnitudeAggregate(nil), aggs...)
	sortByAccuracy(out)
	return out
}
