package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/kazu/internal/model"
	"github.com/verte-zerg/kazu/internal/reading"
)

// Missed is a target that was answered incorrectly at least once.
type Missed struct {
	Target int
	Misses int
	Seen   int
}

// TopMissed returns the n targets with the most incorrect answers.
func TopMissed(rounds []model.Round, n int) []Missed {
	if n <= 0 || len(rounds) == 0 {
		return nil
	}
	byTarget := map[int]*Missed{}
	for _, r := range rounds {
		item, ok := byTarget[r.Target]
		if !ok {
			item = &Missed{Target: r.Target}
			byTarget[r.Target] = item
		}
		item.Seen++
		if !r.Correct {
			item.Misses++
		}
	}
	items := make([]Missed, 0, len(byTarget))
	for _, item := range byTarget {
		if item.Misses > 0 {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Misses == items[j].Misses {
			return items[i].Target < items[j].Target
		}
		return items[i].Misses > items[j].Misses
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// RenderTopMissed prints missed targets with their readings.
func RenderTopMissed(w io.Writer, missed []Missed) error {
	if len(missed) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Most Missed"); err != nil {
		return err
	}
	headers := []string{"Number", "Reading", "Misses", "Seen"}
	rows := make([][]string, 0, len(missed))
	for _, m := range missed {
		rows = append(rows, []string{
			fmt.Sprintf("%d", m.Target),
			reading.ToReading(m.Target),
			fmt.Sprintf("%d", m.Misses),
			fmt.Sprintf("%d", m.Seen),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
