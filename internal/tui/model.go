// Package tui provides the Bubble Tea listening quiz interface.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/kazu/internal/model"
	"github.com/verte-zerg/kazu/internal/quiz"
)

const toastDuration = 2500 * time.Millisecond

type speechDoneMsg struct {
	id uint64
}

type clearToastMsg struct {
	seq int
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	session *quiz.Session
	snap    model.Snapshot
	theme   theme

	width  int
	height int

	toast    string
	toastSeq int

	settingsOpen bool
	confirmReset bool
	inputs       []textinput.Model
	focusIndex   int
	draftAuto    bool
	draftDark    bool
}

// NewModel constructs a quiz TUI model around a loaded session.
func NewModel(session *quiz.Session) *Model {
	m := &Model{session: session}
	m.snap = session.Snapshot()
	m.theme = newTheme(m.snap.Settings.DarkMode)
	m.initInputs()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return waitForSpeech(m.session.Completions())
}

func waitForSpeech(ch <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		return speechDoneMsg{id: <-ch}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case speechDoneMsg:
		m.session.SpeechDone(msg.id)
		m.snap = m.session.Snapshot()
		return m, waitForSpeech(m.session.Completions())
	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.settingsOpen {
			return m.updateSettings(msg)
		}
		return m.updateQuiz(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m, m.dispatch(m.actionEvent())
	case tea.KeyBackspace:
		return m, m.dispatch(quiz.Backspace{})
	case tea.KeyDelete:
		return m, m.dispatch(quiz.Clear{})
	case tea.KeySpace:
		return m, m.dispatch(quiz.Play{})
	case tea.KeyRunes:
		return m, m.handleRunes(msg.Runes)
	default:
		return m, nil
	}
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range runes {
		switch {
		case r >= '0' && r <= '9':
			cmds = append(cmds, m.dispatch(quiz.Digit{D: r}))
		case r == 'p':
			cmds = append(cmds, m.dispatch(quiz.Play{}))
		case r == 's':
			m.openSettings()
		case r == 'q':
			return tea.Quit
		}
	}
	return tea.Batch(cmds...)
}

// actionEvent maps the main action key to the event valid in the current phase.
func (m *Model) actionEvent() quiz.Event {
	switch m.snap.Phase {
	case model.NotStarted:
		return quiz.Start{}
	case model.Answered:
		return quiz.Acknowledge{}
	default:
		return quiz.Submit{}
	}
}

func (m *Model) dispatch(ev quiz.Event) tea.Cmd {
	m.snap = m.session.Handle(context.Background(), ev)
	m.theme = newTheme(m.snap.Settings.DarkMode)
	if m.snap.Notice == "" {
		return nil
	}
	return m.showToast(m.snap.Notice)
}

func (m *Model) showToast(text string) tea.Cmd {
	m.toast = text
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}
