package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kazu/internal/model"
	"github.com/verte-zerg/kazu/internal/quiz"
)

// Focus rows of the settings modal. Only the first two are text inputs.
const (
	inputRate = iota
	inputDifficulty
	rowAutoPlay
	rowDarkMode
	settingsRows
)

func (m *Model) initInputs() {
	m.inputs = make([]textinput.Model, 2)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 24
		ti.Width = 20
		m.inputs[i] = ti
	}
	m.inputs[inputRate].Placeholder = "1.0"
	m.inputs[inputDifficulty].Placeholder = "1-1000"
}

func (m *Model) openSettings() {
	st := m.snap.Settings
	m.settingsOpen = true
	m.confirmReset = false
	m.draftAuto = st.AutoPlay
	m.draftDark = st.DarkMode
	m.inputs[inputRate].SetValue(strconv.FormatFloat(st.Rate, 'f', -1, 64))
	m.inputs[inputDifficulty].SetValue(st.Difficulty.String())
	m.focusIndex = inputRate
	m.focusInputs()
}

func (m *Model) closeSettings() {
	m.settingsOpen = false
	m.confirmReset = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) inputFocused() bool {
	return m.focusIndex < len(m.inputs)
}

func (m *Model) focusInputs() {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmReset {
		switch msg.String() {
		case "y", "Y":
			m.closeSettings()
			return m, m.dispatch(quiz.ResetProgress{})
		default:
			m.confirmReset = false
			return m, nil
		}
	}

	switch msg.String() {
	case "esc":
		m.closeSettings()
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % settingsRows
		m.focusInputs()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + settingsRows - 1) % settingsRows
		m.focusInputs()
		return m, nil
	case "alt+a":
		m.draftAuto = !m.draftAuto
		return m, nil
	case "alt+d":
		m.draftDark = !m.draftDark
		return m, nil
	case "alt+r", "alt+R":
		m.confirmReset = true
		return m, nil
	case "enter":
		return m, m.saveSettings()
	}

	if m.inputFocused() {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}

	// Plain letters act as shortcuts only while a checkbox row has focus.
	switch msg.String() {
	case " ", "x":
		if m.focusIndex == rowAutoPlay {
			m.draftAuto = !m.draftAuto
		} else {
			m.draftDark = !m.draftDark
		}
	case "a":
		m.draftAuto = !m.draftAuto
	case "d":
		m.draftDark = !m.draftDark
	case "R":
		m.confirmReset = true
	}
	return m, nil
}

func (m *Model) saveSettings() tea.Cmd {
	patch, err := m.settingsPatch()
	if err != nil {
		return m.showToast(err.Error())
	}
	want := patch.Apply(m.snap.Settings)
	cmd := m.dispatch(quiz.UpdateSettings{Patch: patch})
	if m.snap.Settings == want {
		m.closeSettings()
	}
	return cmd
}

func (m *Model) settingsPatch() (model.SettingsPatch, error) {
	rate, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[inputRate].Value()), 64)
	if err != nil {
		return model.SettingsPatch{}, errInvalidRate
	}
	r, err := model.ParseRange(m.inputs[inputDifficulty].Value())
	if err != nil {
		return model.SettingsPatch{}, errInvalidRange
	}
	auto := m.draftAuto
	dark := m.draftDark
	return model.SettingsPatch{
		Rate:       &rate,
		AutoPlay:   &auto,
		Difficulty: &r,
		DarkMode:   &dark,
	}, nil
}

var (
	errInvalidRate  = errors.New("Speech rate must be a number, e.g. 0.8")
	errInvalidRange = errors.New("Difficulty must look like 1-1000")
)
