package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/kazu/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "kazu.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestGetSet(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "stats"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "stats", []byte(`{"total":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "stats", []byte(`{"total":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := st.Get(ctx, "stats")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"total":2}` {
		t.Fatalf("unexpected value: %s", value)
	}
}

func TestRoundsHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(0, 0).UTC()
	targets := []int{7, 42, 300, 8000}
	for i, target := range targets {
		round := model.Round{
			AnsweredAt: base.Add(time.Duration(i) * time.Minute),
			Target:     target,
			Answer:     int64(target),
			Correct:    i%2 == 0,
			Rate:       1.0,
			Difficulty: model.Range{Min: 1, Max: 10000},
		}
		if err := st.RecordRound(ctx, round); err != nil {
			t.Fatalf("record round: %v", err)
		}
	}

	all, err := st.ListRounds(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(all) != len(targets) {
		t.Fatalf("expected %d rounds, got %d", len(targets), len(all))
	}
	for i, r := range all {
		if r.Target != targets[i] {
			t.Fatalf("round %d: expected target %d, got %d", i, targets[i], r.Target)
		}
	}
	if !all[0].Correct || all[1].Correct {
		t.Fatalf("unexpected correctness: %+v", all[:2])
	}
	if all[0].Difficulty != (model.Range{Min: 1, Max: 10000}) {
		t.Fatalf("unexpected difficulty: %+v", all[0].Difficulty)
	}

	last, err := st.ListRounds(ctx, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last rounds: %v", err)
	}
	if len(last) != 2 || last[0].Target != 300 || last[1].Target != 8000 {
		t.Fatalf("unexpected last rounds: %+v", last)
	}

	since := base.Add(90 * time.Second)
	recent, err := st.ListRounds(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rounds since %v, got %d", since, len(recent))
	}

	aggs, err := st.GetMagnitudeAggregates(ctx, 10)
	if err != nil {
		t.Fatalf("magnitude aggregates: %v", err)
	}
	if len(aggs) != 4 {
		t.Fatalf("expected 4 digit buckets, got %+v", aggs)
	}
	if aggs[0].Digits != 1 || aggs[0].Correct != 1 || aggs[0].Incorrect != 0 {
		t.Fatalf("unexpected first aggregate: %+v", aggs[0])
	}
	if aggs[1].Digits != 2 || aggs[1].Correct != 0 || aggs[1].Incorrect != 1 {
		t.Fatalf("unexpected second aggregate: %+v", aggs[1])
	}

	if err := st.ClearRounds(ctx); err != nil {
		t.Fatalf("clear rounds: %v", err)
	}
	all, err = st.ListRounds(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty history, got %d", len(all))
	}
}
