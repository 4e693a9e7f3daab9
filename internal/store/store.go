// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/kazu/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for quiz state and answer history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			answered_at TEXT NOT NULL,
			target INTEGER NOT NULL,
			answer INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			digits INTEGER NOT NULL,
			rate REAL NOT NULL,
			difficulty TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_answered_at ON rounds(answered_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the blob stored under key. The bool is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set replaces the blob stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano))
	return err
}

// RecordRound appends a scored round to the history.
func (s *Store) RecordRound(ctx context.Context, round model.Round) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (answered_at, target, answer, correct, digits, rate, difficulty)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		round.AnsweredAt.Format(time.RFC3339Nano),
		round.Target,
		round.Answer,
		boolToInt(round.Correct),
		round.Digits(),
		round.Rate,
		round.Difficulty.String(),
	)
	return err
}

// ClearRounds deletes the whole answer history.
func (s *Store) ClearRounds(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rounds`)
	return err
}

// ListRounds returns rounds in answer order, filtered by cfg.Since and limited to cfg.Last.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.Round, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "answered_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, answered_at, target, answer, correct, rate, difficulty
		FROM rounds
		WHERE %s
		ORDER BY answered_at DESC, id DESC`, strings.Join(clauses, " AND "))
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.Round
	for rows.Next() {
		var r model.Round
		var answeredAt, difficulty string
		var correct int
		if err := rows.Scan(&r.ID, &answeredAt, &r.Target, &r.Answer, &correct, &r.Rate, &difficulty); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, answeredAt)
		if err != nil {
			return nil, err
		}
		r.AnsweredAt = parsed
		r.Correct = correct != 0
		if r.Difficulty, err = model.ParseRange(difficulty); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Oldest first.
	for i, j := 0, len(rounds)-1; i < j; i, j = i+1, j-1 {
		rounds[i], rounds[j] = rounds[j], rounds[i]
	}
	return rounds, nil
}

// GetMagnitudeAggregates aggregates correctness by target digit count over the most recent rounds.
func (s *Store) GetMagnitudeAggregates(ctx context.Context, window int) ([]model.MagnitudeAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT digits, correct FROM rounds
		ORDER BY answered_at DESC, id DESC
		LIMIT ?
	)
	SELECT digits, SUM(correct) AS correct, SUM(1 - correct) AS incorrect
	FROM recent
	GROUP BY digits
	ORDER BY digits`

	rows, err := s.db.QueryContext(ctx, query, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.MagnitudeAggregate
	for rows.Next() {
		var agg model.MagnitudeAggregate
		if err := rows.Scan(&agg.Digits, &agg.Correct, &agg.Incorrect); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
