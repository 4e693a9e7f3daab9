// Package model defines shared data structures.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Phase is the quiz round state.
type Phase int

const (
	// NotStarted is the initial phase; input is disabled.
	NotStarted Phase = iota
	// Listening means a target is live and the input buffer accepts digits.
	Listening
	// Answered means the last submission was scored and feedback is shown.
	Answered
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not-started"
	case Listening:
		return "listening"
	case Answered:
		return "answered"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Stats holds cumulative answer statistics.
type Stats struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Streak    int `json:"streak"`
}

// Valid reports whether the counters are non-negative and consistent.
func (s Stats) Valid() bool {
	if s.Total < 0 || s.Correct < 0 || s.Incorrect < 0 || s.Streak < 0 {
		return false
	}
	return s.Total == s.Correct+s.Incorrect
}

// Range is an inclusive difficulty range.
type Range struct {
	Min int
	Max int
}

// ParseRange parses "min-max".
func ParseRange(value string) (Range, error) {
	minStr, maxStr, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok {
		return Range{}, fmt.Errorf("invalid range %q: expected min-max", value)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(minStr))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range minimum %q: %w", minStr, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(maxStr))
	if err != nil {
		return Range{}, fmt.Errorf("invalid range maximum %q: %w", maxStr, err)
	}
	return Range{Min: lo, Max: hi}, nil
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// MarshalText implements encoding.TextMarshaler.
func (r Range) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Range) UnmarshalText(text []byte) error {
	parsed, err := ParseRange(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Settings are the user-adjustable quiz preferences.
type Settings struct {
	Rate       float64 `json:"rate"`
	AutoPlay   bool    `json:"autoPlay"`
	Difficulty Range   `json:"difficulty"`
	DarkMode   bool    `json:"darkMode"`
}

// DefaultSettings returns the settings used when nothing is persisted.
func DefaultSettings() Settings {
	return Settings{
		Rate:       1.0,
		AutoPlay:   true,
		Difficulty: Range{Min: 1, Max: 1000},
		DarkMode:   false,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	Rate       *float64
	AutoPlay   *bool
	Difficulty *Range
	DarkMode   *bool
}

// Apply returns s with the non-nil patch fields applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Rate != nil {
		s.Rate = *p.Rate
	}
	if p.AutoPlay != nil {
		s.AutoPlay = *p.AutoPlay
	}
	if p.Difficulty != nil {
		s.Difficulty = *p.Difficulty
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	return s
}

// Outcome describes the last scored round.
type Outcome struct {
	Correct bool
	Target  int
	Answer  int64
	Reading string
}

// Snapshot is the session state exposed to the presentation layer.
type Snapshot struct {
	Phase    Phase
	Input    string
	Stats    Stats
	Outcome  *Outcome
	Settings Settings
	Playing  bool
	Notice   string
}

// Round is one scored answer kept in history.
type Round struct {
	ID         int64
	AnsweredAt time.Time
	Target     int
	Answer     int64
	Correct    bool
	Rate       float64
	Difficulty Range
}

// Digits returns the number of decimal digits of the target.
func (r Round) Digits() int {
	return DigitCount(r.Target)
}

// DigitCount returns the number of decimal digits in a non-negative n.
func DigitCount(n int) int {
	digits := 1
	for n >= 10 {
		n /= 10
		digits++
	}
	return digits
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// MagnitudeAggregate aggregates answers for targets with the same digit count.
type MagnitudeAggregate struct {
	Digits    int
	Correct   int
	Incorrect int
}
