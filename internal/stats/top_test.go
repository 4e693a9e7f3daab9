package stats

import (
	"testing"

	"github.com/verte-zerg/kazu/internal/model"
)

func TestTopMissed(t *testing.T) {
	rounds := []model.Round{
		{Target: 800, Correct: false},
		{Target: 300, Correct: false},
		{Target: 800, Correct: false},
		{Target: 600, Correct: false},
		{Target: 300, Correct: true},
	}
	top := TopMissed(rounds, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(top))
	}
	if top[0].Target != 800 || top[0].Misses != 2 || top[1].Target != 300 || top[1].Seen != 2 {
		t.Fatalf("unexpected order: %+v", top)
	}
}
