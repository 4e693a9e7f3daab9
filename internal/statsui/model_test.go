package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kazu/internal/model"
)

type fakeLister struct {
	rounds []model.Round
	cfgs   []model.StatsConfig
}

func (f *fakeLister) ListRounds(_ context.Context, cfg model.StatsConfig) ([]model.Round, error) {
	f.cfgs = append(f.cfgs, cfg)
	rounds := f.rounds
	if cfg.Last > 0 && cfg.Last < len(rounds) {
		rounds = rounds[len(rounds)-cfg.Last:]
	}
	return rounds, nil
}

func sampleRounds() []model.Round {
	base := time.Unix(0, 0)
	targets := []struct {
		n       int
		correct bool
	}{{7, true}, {42, false}, {42, false}, {300, true}, {8000, false}, {8000, true}}
	rounds := make([]model.Round, 0, len(targets))
	for i, tc := range targets {
		rounds = append(rounds, model.Round{
			ID:         int64(i + 1),
			AnsweredAt: base.Add(time.Duration(i) * time.Minute),
			Target:     tc.n,
			Correct:    tc.correct,
			Rate:       1,
			Difficulty: model.Range{Min: 1, Max: 10000},
		})
	}
	return rounds
}

func newTestModel(t *testing.T) (*Model, *fakeLister) {
	t.Helper()
	src := &fakeLister{rounds: sampleRounds()}
	current := model.Stats{Total: 6, Correct: 3, Incorrect: 3, Streak: 1}
	m := NewModel(src, current, model.StatsConfig{CurveWindow: 3, Top: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, src
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsTotals(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{"Overview", "Answered", "50%", "Accuracy Curve (window 3)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestTabsShowTables(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabMagnitudes {
		t.Fatalf("expected magnitudes tab, got %d", m.activeTab)
	}
	if rows := m.magTable.Rows(); len(rows) != 4 || rows[0][0] != "2" {
		t.Fatalf("expected weakest digit count first, got %v", rows)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	rows := m.missTable.Rows()
	if len(rows) != 2 || rows[0][0] != "42" || rows[0][1] != "yonjuuni" || rows[0][2] != "2" {
		t.Fatalf("unexpected missed rows: %v", rows)
	}
	if !strings.Contains(m.View(), "Reading") {
		t.Fatalf("expected missed table header in view")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap around, got %d", m.activeTab)
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("="))
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(key("="))
	m.Update(key("-"))
	m.Update(key("-"))
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestFilterApply(t *testing.T) {
	m, src := newTestModel(t)
	m.Update(key("/"))
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[inputLast].SetValue("2")
	m.filterInputs[inputWindow].SetValue("10")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close: %s", m.filterError)
	}
	last := src.cfgs[len(src.cfgs)-1]
	if last.Last != 2 || last.CurveWindow != 10 || last.Top != 5 {
		t.Fatalf("unexpected applied filters: %+v", last)
	}
	if len(m.report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds in view, got %d", len(m.report.Rounds))
	}
	if m.report.Current.Total != 6 {
		t.Fatalf("persisted totals should not follow filters: %+v", m.report.Current)
	}
}

func TestFilterRejectsInvalid(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(key("/"))
	m.filterInputs[inputSince].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error, got mode=%v err=%q", m.filterMode, m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("esc should close the filter form")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{20, 25, 15},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("next(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prev(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}
