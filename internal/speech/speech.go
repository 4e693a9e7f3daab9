// Package speech plays readings through an external text-to-speech command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned when no speech backend is available.
var ErrUnsupported = errors.New("speech synthesis not supported")

// Base words per minute at rate 1.0 for say and espeak-ng.
const baseWPM = 175

// DefaultTemplate returns the platform default command template.
func DefaultTemplate() string {
	if runtime.GOOS == "darwin" {
		return "say -v Kyoko -r {wpm} {text}"
	}
	return "espeak-ng -v ja -s {wpm} {text}"
}

// Speaker is implemented by every backend in this package.
type Speaker interface {
	Speak(text string, rate float64, done func()) error
}

// Detect builds a Command speaker from template, or an Unsupported speaker when
// the command binary cannot be found.
func Detect(template string, logger zerolog.Logger) Speaker {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate()
	}
	parts := strings.Fields(template)
	if len(parts) == 0 {
		return Unsupported{}
	}
	if _, err := exec.LookPath(parts[0]); err != nil {
		logger.Warn().Err(err).Str("command", parts[0]).Msg("speech command not found")
		return Unsupported{}
	}
	return NewCommand(template, logger)
}

// Command runs one process per utterance. A new utterance cancels the previous one.
type Command struct {
	template []string
	logger   zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommand returns a Command speaker for the given template.
func NewCommand(template string, logger zerolog.Logger) *Command {
	return &Command{template: strings.Fields(template), logger: logger}
}

// Speak starts the command asynchronously. done runs after the process exits,
// including when it was superseded.
func (c *Command) Speak(text string, rate float64, done func()) error {
	args := RenderArgs(c.template, text, rate)
	if len(args) == 0 {
		return ErrUnsupported
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start speech command: %w", err)
	}
	c.logger.Debug().Str("text", text).Float64("rate", rate).Msg("speaking")
	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			c.logger.Warn().Err(err).Str("text", text).Msg("speech command failed")
		}
		cancel()
		if done != nil {
			done()
		}
	}()
	return nil
}

// Stop cancels the in-flight utterance, if any.
func (c *Command) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// RenderArgs substitutes {text}, {rate} and {wpm} in each template argument.
func RenderArgs(template []string, text string, rate float64) []string {
	wpm := int(float64(baseWPM) * rate)
	if wpm < 1 {
		wpm = 1
	}
	replacer := strings.NewReplacer(
		"{text}", text,
		"{rate}", strconv.FormatFloat(rate, 'f', -1, 64),
		"{wpm}", strconv.Itoa(wpm),
	)
	out := make([]string, 0, len(template))
	for _, arg := range template {
		out = append(out, replacer.Replace(arg))
	}
	return out
}

// Unsupported is the speaker used when no backend is available.
type Unsupported struct{}

// Speak always fails with ErrUnsupported.
func (Unsupported) Speak(string, float64, func()) error {
	return ErrUnsupported
}

// Mute accepts utterances and completes them immediately.
type Mute struct{}

// Speak calls done synchronously.
func (Mute) Speak(_ string, _ float64, done func()) error {
	if done != nil {
		done()
	}
	return nil
}
