// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/kazu/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Percent returns correct/total as a whole percentage, rounded half up.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(correct)*100/float64(total) + 0.5))
}

// Accuracy returns correct/(correct+incorrect) in [0, 1].
func Accuracy(correct, incorrect int) float64 {
	den := correct + incorrect
	if den <= 0 {
		return 0
	}
	return float64(correct) / float64(den)
}

// BestStreak returns the longest run of correct rounds.
func BestStreak(rounds []model.Round) int {
	best, cur := 0, 0
	for _, r := range rounds {
		if !r.Correct {
			cur = 0
			continue
		}
		cur++
		if cur > best {
			best = cur
		}
	}
	return best
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the persisted counters and history totals.
func RenderSummary(w io.Writer, current model.Stats, rounds []model.Round) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Answers: %d", current.Total),
		fmt.Sprintf("Correct: %d", current.Correct),
		fmt.Sprintf("Incorrect: %d", current.Incorrect),
		fmt.Sprintf("Accuracy: %d%%", Percent(current.Correct, current.Total)),
		fmt.Sprintf("Current streak: %d", current.Streak),
	}
	if len(rounds) > 0 {
		correct := 0
		for _, r := range rounds {
			if r.Correct {
				correct++
			}
		}
		lines = append(lines,
			fmt.Sprintf("Rounds in range: %d (%d%% correct)", len(rounds), Percent(correct, len(rounds))),
			fmt.Sprintf("Best streak in range: %d", BestStreak(rounds)),
		)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// MagnitudeAggregates groups rounds by target digit count.
func MagnitudeAggregates(rounds []model.Round) []model.MagnitudeAggregate {
	byDigits := map[int]*model.MagnitudeAggregate{}
	maxDigits := 0
	for _, r := range rounds {
		d := r.Digits()
		agg, ok := byDigits[d]
		if !ok {
			agg = &model.MagnitudeAggregate{Digits: d}
			byDigits[d] = agg
		}
		if r.Correct {
			agg.Correct++
		} else {
			agg.Incorrect++
		}
		if d > maxDigits {
			maxDigits = d
		}
	}
	out := make([]model.MagnitudeAggregate, 0, len(byDigits))
	for d := 1; d <= maxDigits; d++ {
		if agg, ok := byDigits[d]; ok {
			out = append(out, *agg)
		}
	}
	return out
}

// RenderMagnitudeTable prints accuracy per digit count, weakest first.
func RenderMagnitudeTable(w io.Writer, aggs []model.MagnitudeAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No rounds found.")
		return err
	}
	rows := WeakestFirst(aggs)

	if _, err := fmt.Fprintln(w, "Per-Magnitude"); err != nil {
		return err
	}
	headers := []string{"Digits", "Accuracy", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			fmt.Sprintf("%d", r.Digits),
			fmt.Sprintf("%.2f%%", Accuracy(r.Correct, r.Incorrect)*100),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurve prints the moving-average accuracy as a sparkline of at most width cells.
func RenderCurve(w io.Writer, rounds []model.Round, window, width int) error {
	if len(rounds) == 0 {
		return nil
	}
	values := make([]float64, len(rounds))
	for i, r := range rounds {
		if r.Correct {
			values[i] = 100
		}
	}
	values = resample(MovingAverage(values, window), width)
	last := values[len(values)-1]
	if _, err := fmt.Fprintf(w, "Accuracy Curve (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s %.0f%%\n\n", Sparkline(values), last); err != nil {
		return err
	}
	return nil
}

// resample averages values into at most width buckets.
func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
