// Package quiz implements the listening quiz round state machine.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/kazu/internal/model"
	"github.com/verte-zerg/kazu/internal/reading"
	"github.com/verte-zerg/kazu/internal/speech"
)

// Keys under which state is persisted.
const (
	KeyStats    = "stats"
	KeySettings = "settings"
)

// MaxInputLen bounds the input buffer so it always parses as an int64.
const MaxInputLen = 10

// Accepted speech rate bounds.
const (
	MinRate = 0.1
	MaxRate = 2.0
)

// User-visible notices.
const (
	NoticeSettingsUpdated = "Settings have been updated."
	NoticeProgressReset   = "Progress has been reset."
	NoticeNoSpeech        = "Speech synthesis not supported."
	NoticeSaveFailed      = "Failed to save progress."
)

var (
	// ErrUnsupportedCapability reports that speech playback is unavailable.
	ErrUnsupportedCapability = errors.New("unsupported capability")
	// ErrMalformedState reports a corrupt or unreadable persisted blob.
	ErrMalformedState = errors.New("malformed persisted state")
	// ErrInvalidInput reports a rejected settings change or submission.
	ErrInvalidInput = errors.New("invalid input")
)

// Speaker plays text aloud asynchronously and calls done when playback ends.
type Speaker interface {
	Speak(text string, rate float64, done func()) error
}

// Store is an opaque key/blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Generator picks a target in [lo, hi].
type Generator interface {
	Between(lo, hi int) int
}

// History records scored rounds.
type History interface {
	RecordRound(ctx context.Context, round model.Round) error
	ClearRounds(ctx context.Context) error
}

// Deps are the capabilities a Session talks to. History, Logger and Defaults
// are optional.
type Deps struct {
	Speaker   Speaker
	Store     Store
	Generator Generator
	History   History
	Logger    zerolog.Logger
	Now       func() time.Time
	// Defaults replace model.DefaultSettings when nothing valid is persisted.
	Defaults *model.Settings
}

// Session owns the quiz state. It is not safe for concurrent use; all events
// must be delivered from a single goroutine.
type Session struct {
	speaker Speaker
	store   Store
	gen     Generator
	history History
	logger  zerolog.Logger
	now     func() time.Time

	defaults model.Settings

	phase    model.Phase
	target   int
	input    []byte
	stats    model.Stats
	settings model.Settings
	outcome  *model.Outcome
	notice   string

	playing     bool
	utterance   uint64
	completions chan uint64
	// Guards the drain-then-send in complete.
	completeMu sync.Mutex
}

// New returns a session with default settings and zero stats. Call Load to
// restore persisted state.
func New(deps Deps) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	defaults := model.DefaultSettings()
	if deps.Defaults != nil {
		defaults = *deps.Defaults
	}
	return &Session{
		speaker:     deps.Speaker,
		store:       deps.Store,
		gen:         deps.Generator,
		history:     deps.History,
		logger:      deps.Logger,
		now:         now,
		defaults:    defaults,
		settings:    defaults,
		completions: make(chan uint64, 1),
	}
}

// Load restores stats and settings. Unreadable or malformed blobs are replaced
// by defaults; the returned error wraps ErrMalformedState and is informational.
func (s *Session) Load(ctx context.Context) error {
	var errs []error

	stats := model.Stats{}
	if err := s.loadBlob(ctx, KeyStats, &stats); err != nil {
		errs = append(errs, err)
		stats = model.Stats{}
	} else if !stats.Valid() {
		errs = append(errs, fmt.Errorf("%w: %s: inconsistent counters %+v", ErrMalformedState, KeyStats, stats))
		stats = model.Stats{}
	}
	s.stats = stats

	settings := s.defaults
	if err := s.loadBlob(ctx, KeySettings, &settings); err != nil {
		errs = append(errs, err)
		settings = s.defaults
	} else if err := ValidateSettings(settings); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s: %v", ErrMalformedState, KeySettings, err))
		settings = s.defaults
	}
	s.settings = settings

	for _, err := range errs {
		s.logger.Warn().Err(err).Msg("using defaults for persisted state")
	}
	return errors.Join(errs...)
}

func (s *Session) loadBlob(ctx context.Context, key string, dst any) error {
	if s.store == nil {
		return nil
	}
	blob, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %v", ErrMalformedState, key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(blob, dst); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", ErrMalformedState, key, err)
	}
	return nil
}

// ValidateSettings checks rate bounds and the difficulty range.
func ValidateSettings(st model.Settings) error {
	if math.IsNaN(st.Rate) || st.Rate < MinRate || st.Rate > MaxRate {
		return fmt.Errorf("%w: rate must be between %.1f and %.1f", ErrInvalidInput, MinRate, MaxRate)
	}
	r := st.Difficulty
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("%w: difficulty must be non-negative", ErrInvalidInput)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: difficulty minimum must not exceed maximum", ErrInvalidInput)
	}
	if !reading.InDomain(r.Max) {
		return fmt.Errorf("%w: difficulty maximum must be at most %d", ErrInvalidInput, reading.MaxValue)
	}
	return nil
}

// Completions delivers utterance ids as playback finishes. Pending ids are
// coalesced to the newest one. The owner of the session must pass each id
// back through SpeechDone on its event loop.
func (s *Session) Completions() <-chan uint64 {
	return s.completions
}

// SpeechDone clears the playing flag when id is the latest utterance.
func (s *Session) SpeechDone(id uint64) {
	if id == s.utterance {
		s.playing = false
	}
}

// Snapshot returns the current output surface.
func (s *Session) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		Phase:    s.phase,
		Input:    string(s.input),
		Stats:    s.stats,
		Settings: s.settings,
		Playing:  s.playing,
		Notice:   s.notice,
	}
	if s.outcome != nil {
		out := *s.outcome
		snap.Outcome = &out
	}
	return snap
}

// Handle applies one event and returns the resulting snapshot. Events that are
// not valid in the current phase are ignored.
func (s *Session) Handle(ctx context.Context, ev Event) model.Snapshot {
	s.notice = ""
	switch ev := ev.(type) {
	case Start:
		s.start()
	case Digit:
		s.appendDigit(ev.D)
	case Backspace:
		if s.phase == model.Listening && len(s.input) > 0 {
			s.input = s.input[:len(s.input)-1]
		}
	case Clear:
		if s.phase == model.Listening {
			s.input = s.input[:0]
		}
	case Submit:
		s.submit(ctx)
	case Acknowledge:
		if s.phase == model.Answered {
			s.newRound()
		}
	case Play:
		if s.phase == model.Listening || s.phase == model.Answered {
			s.play()
		}
	case UpdateSettings:
		s.updateSettings(ctx, ev.Patch)
	case ResetProgress:
		s.resetProgress(ctx)
	}
	return s.Snapshot()
}

func (s *Session) start() {
	if s.phase != model.NotStarted {
		return
	}
	s.input = s.input[:0]
	s.outcome = nil
	s.target = s.nextTarget()
	s.phase = model.Listening
	s.play()
}

func (s *Session) newRound() {
	s.input = s.input[:0]
	s.outcome = nil
	s.target = s.nextTarget()
	s.phase = model.Listening
	if s.settings.AutoPlay {
		s.play()
	}
}

func (s *Session) nextTarget() int {
	r := s.settings.Difficulty
	return s.gen.Between(r.Min, r.Max)
}

func (s *Session) appendDigit(d rune) {
	if s.phase != model.Listening {
		return
	}
	if d < '0' || d > '9' || len(s.input) >= MaxInputLen {
		return
	}
	s.input = append(s.input, byte(d))
}

func (s *Session) submit(ctx context.Context) {
	if s.phase != model.Listening || len(s.input) == 0 {
		return
	}
	answer, err := strconv.ParseInt(string(s.input), 10, 64)
	if err != nil {
		s.logger.Warn().Err(err).Str("input", string(s.input)).Msg("rejected submission")
		return
	}

	correct := answer == int64(s.target)
	s.stats.Total++
	if correct {
		s.stats.Correct++
		s.stats.Streak++
	} else {
		s.stats.Incorrect++
		s.stats.Streak = 0
	}
	s.outcome = &model.Outcome{
		Correct: correct,
		Target:  s.target,
		Answer:  answer,
		Reading: reading.ToReading(s.target),
	}
	s.phase = model.Answered
	s.logger.Info().
		Int("target", s.target).
		Int64("answer", answer).
		Bool("correct", correct).
		Int("streak", s.stats.Streak).
		Msg("answer scored")

	s.persist(ctx)
	if s.history != nil {
		round := model.Round{
			AnsweredAt: s.now(),
			Target:     s.target,
			Answer:     answer,
			Correct:    correct,
			Rate:       s.settings.Rate,
			Difficulty: s.settings.Difficulty,
		}
		if err := s.history.RecordRound(ctx, round); err != nil {
			s.logger.Error().Err(err).Msg("failed to record round")
		}
	}
}

func (s *Session) updateSettings(ctx context.Context, patch model.SettingsPatch) {
	next := patch.Apply(s.settings)
	if err := ValidateSettings(next); err != nil {
		s.notice = capitalize(err.Error())
		s.logger.Warn().Err(err).Msg("rejected settings update")
		return
	}
	oldDifficulty := s.settings.Difficulty
	s.settings = next
	s.persist(ctx)
	if s.notice == "" {
		s.notice = NoticeSettingsUpdated
	}
	if s.phase != model.NotStarted && oldDifficulty != next.Difficulty {
		s.newRound()
	}
}

func (s *Session) resetProgress(ctx context.Context) {
	s.stats = model.Stats{}
	s.phase = model.NotStarted
	s.input = s.input[:0]
	s.outcome = nil
	s.playing = false
	s.persist(ctx)
	if s.history != nil {
		if err := s.history.ClearRounds(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to clear history")
		}
	}
	if s.notice == "" {
		s.notice = NoticeProgressReset
	}
}

func (s *Session) play() {
	s.utterance++
	id := s.utterance
	text := reading.ToReading(s.target)
	s.playing = true
	if s.speaker == nil {
		s.speechFailed(fmt.Errorf("%w: %w", ErrUnsupportedCapability, speech.ErrUnsupported))
		return
	}
	err := s.speaker.Speak(text, s.settings.Rate, func() { s.complete(id) })
	if err != nil {
		if errors.Is(err, speech.ErrUnsupported) {
			err = fmt.Errorf("%w: %w", ErrUnsupportedCapability, err)
		}
		s.speechFailed(err)
	}
}

// complete runs on speaker goroutines. It keeps at most one pending id, the
// highest seen, so the latest utterance is never dropped.
func (s *Session) complete(id uint64) {
	s.completeMu.Lock()
	defer s.completeMu.Unlock()
	select {
	case pending := <-s.completions:
		id = max(id, pending)
	default:
	}
	s.completions <- id
}

func (s *Session) speechFailed(err error) {
	s.playing = false
	s.logger.Warn().Err(err).Msg("speech playback failed")
	if errors.Is(err, ErrUnsupportedCapability) {
		s.notice = NoticeNoSpeech
		return
	}
	s.notice = capitalize(err.Error())
}

// persist writes a full snapshot of stats and settings.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	for _, item := range []struct {
		key   string
		value any
	}{
		{KeyStats, s.stats},
		{KeySettings, s.settings},
	} {
		blob, err := json.Marshal(item.value)
		if err == nil {
			err = s.store.Set(ctx, item.key, blob)
		}
		if err != nil {
			s.logger.Error().Err(err).Str("key", item.key).Msg("failed to persist state")
			s.notice = NoticeSaveFailed
		}
	}
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	b := []byte(msg)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
