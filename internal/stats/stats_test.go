package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/kazu/internal/model"
)

func TestPercentRounds(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 5, 100},
	}
	for _, tc := range cases {
		if got := Percent(tc.correct, tc.total); got != tc.want {
			t.Fatalf("Percent(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestBestStreak(t *testing.T) {
	rounds := []model.Round{
		{Correct: true}, {Correct: true}, {Correct: false},
		{Correct: true}, {Correct: true}, {Correct: true}, {Correct: false},
	}
	if got := BestStreak(rounds); got != 3 {
		t.Fatalf("expected best streak 3, got %d", got)
	}
}

func TestMagnitudeAggregatesAndWeak(t *testing.T) {
	rounds := []model.Round{
		{Target: 5, Correct: true},
		{Target: 42, Correct: false},
		{Target: 77, Correct: true},
		{Target: 1200, Correct: false},
	}
	aggs := MagnitudeAggregates(rounds)
	want := []model.MagnitudeAggregate{
		{Digits: 1, Correct: 1},
		{Digits: 2, Correct: 1, Incorrect: 1},
		{Digits: 4, Incorrect: 1},
	}
	if len(aggs) != len(want) {
		t.Fatalf("unexpected aggregates: %+v", aggs)
	}
	for i := range want {
		if aggs[i] != want[i] {
			t.Fatalf("aggregate %d: expected %+v, got %+v", i, want[i], aggs[i])
		}
	}

	weak := SelectWeakMagnitudes(aggs)
	if len(weak) != 2 || weak[2] != 0.5 || weak[4] != 1 {
		t.Fatalf("unexpected weak map: %v", weak)
	}
}

func TestRenderMagnitudeTableOrder(t *testing.T) {
	var buf bytes.Buffer
	err := RenderMagnitudeTable(&buf, []model.MagnitudeAggregate{
		{Digits: 1, Correct: 9, Incorrect: 1},
		{Digits: 3, Correct: 1, Incorrect: 3},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %q", lines)
	}
	if lines[1] != "Digits Accuracy Correct Incorrect" {
		t.Fatalf("unexpected header %q", lines[1])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[2]), "3") {
		t.Fatalf("expected weakest bucket first, got %q", lines[2])
	}
}

func TestRenderCurveWidth(t *testing.T) {
	rounds := make([]model.Round, 200)
	for i := range rounds {
		rounds[i] = model.Round{Correct: i%2 == 0}
	}
	var buf bytes.Buffer
	if err := RenderCurve(&buf, rounds, 10, 30); err != nil {
		t.Fatalf("render curve: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 2 {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if len(lines[1]) == 0 || len(lines[1]) > 30+len(" 100%") {
		t.Fatalf("expected sparkline of at most 30 cells, got %q", lines[1])
	}
}

func TestTopMissedEmpty(t *testing.T) {
	if got := TopMissed(nil, 5); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := TopMissed([]model.Round{{Target: 1, Correct: true}}, 5); len(got) != 0 {
		t.Fatalf("expected no missed targets, got %v", got)
	}
}
