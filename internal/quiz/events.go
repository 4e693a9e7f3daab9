package quiz

import "github.com/verte-zerg/kazu/internal/model"

// Event is an input delivered to Session.Handle.
type Event interface {
	event()
}

// Start begins the first round.
type Start struct{}

// Digit appends a decimal digit to the input buffer.
type Digit struct {
	D rune
}

// Backspace drops the last input character.
type Backspace struct{}

// Clear empties the input buffer.
type Clear struct{}

// Submit scores the input buffer against the target.
type Submit struct{}

// Acknowledge dismisses feedback and starts the next round.
type Acknowledge struct{}

// Play re-dispatches speech for the current target.
type Play struct{}

// UpdateSettings applies a partial settings change.
type UpdateSettings struct {
	Patch model.SettingsPatch
}

// ResetProgress zeroes statistics and returns to NotStarted.
type ResetProgress struct{}

func (Start) event()          {}
func (Digit) event()          {}
func (Backspace) event()      {}
func (Clear) event()          {}
func (Submit) event()         {}
func (Acknowledge) event()    {}
func (Play) event()           {}
func (UpdateSettings) event() {}
func (ResetProgress) event()  {}
