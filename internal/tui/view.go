package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kazu/internal/model"
	"github.com/verte-zerg/kazu/internal/stats"
)

const progressCells = 10

type theme struct {
	title     lipgloss.Style
	muted     lipgloss.Style
	text      lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	accent    lipgloss.Style
	display   lipgloss.Style
	disabled  lipgloss.Style
	modal     lipgloss.Style
	toast     lipgloss.Style
	focused   lipgloss.Style
}

func newTheme(dark bool) theme {
	fg, muted, accent, border := "#1F1F1F", "#6E6E6E", "#A86F12", "#B0B0B0"
	if dark {
		fg, muted, accent, border = "#F0F0F0", "#8C8C8C", "#C89A3A", "#4A4A4A"
	}
	return theme{
		title:     lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
		text:      lipgloss.NewStyle().Foreground(lipgloss.Color(fg)),
		correct:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950")).Bold(true),
		incorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true),
		accent:    lipgloss.NewStyle().Foreground(lipgloss.Color(accent)),
		display: lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color(accent)),
		disabled: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color(border)),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color(accent)).
			Padding(1, 2),
		toast:   lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Italic(true),
		focused: lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Bold(true),
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	if m.settingsOpen {
		body = m.renderSettings()
	} else {
		body = m.renderQuiz()
	}
	footer := m.renderFooter()
	if m.toast != "" {
		footer = m.theme.toast.Render(m.fit(m.toast)) + "\n" + footer
	}
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	top := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, body)
	bottom := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
	return top + "\n" + bottom
}

func (m *Model) renderQuiz() string {
	lines := []string{
		m.theme.title.Render("kazu · 数 listening trainer"),
		"",
		m.renderPlayStatus(),
		"",
		m.renderDisplay(),
		"",
	}
	switch m.snap.Phase {
	case model.NotStarted:
		lines = append(lines, m.theme.text.Render("Press Enter to start listening"))
	case model.Listening:
		lines = append(lines, m.theme.muted.Render("Enter check answer · Backspace · Del clear · Space replay"))
	case model.Answered:
		lines = append(lines, m.renderFeedback()...)
	}
	lines = append(lines, "", m.theme.muted.Render("s settings · q quit"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderPlayStatus() string {
	switch {
	case m.snap.Phase == model.NotStarted:
		return m.theme.muted.Render("♪ waiting to start")
	case m.snap.Playing:
		return m.theme.accent.Render("♪ Playing...")
	default:
		return m.theme.text.Render("♪ Press Space to listen")
	}
}

func (m *Model) renderDisplay() string {
	content := m.snap.Input
	if content == "" {
		content = " "
	}
	// Fixed width so the box does not jump while typing.
	content = runewidth.FillRight(content, quizInputWidth)
	if m.snap.Phase != model.Listening {
		return m.theme.disabled.Render(content)
	}
	return m.theme.display.Render(content)
}

const quizInputWidth = 12

func (m *Model) renderFeedback() []string {
	out := m.snap.Outcome
	if out == nil {
		return nil
	}
	if out.Correct {
		return []string{
			m.theme.correct.Render("✓ Correct!"),
			m.theme.muted.Render(fmt.Sprintf("%d · %s", out.Target, out.Reading)),
			"",
			m.theme.text.Render("Enter next question"),
		}
	}
	return []string{
		m.theme.incorrect.Render("✗ Incorrect"),
		m.theme.text.Render(fmt.Sprintf("Correct answer: %d", out.Target)),
		m.theme.muted.Render(out.Reading),
		"",
		m.theme.text.Render("Enter next question"),
	}
}

func (m *Model) renderFooter() string {
	st := m.snap.Stats
	pct := stats.Percent(st.Correct, st.Total)
	streak := fmt.Sprintf("streak %d", st.Streak)
	if st.Streak > 0 {
		streak = m.theme.accent.Render(streak + " 🔥")
	}
	segments := []string{
		fmt.Sprintf("%d total", st.Total),
		m.theme.correct.Render(fmt.Sprintf("✓ %d", st.Correct)),
		m.theme.incorrect.Render(fmt.Sprintf("✗ %d", st.Incorrect)),
		streak,
		fmt.Sprintf("%s %d%%", progressBar(pct), pct),
	}
	return m.theme.muted.Render(strings.Join(segments, "  "))
}

func progressBar(pct int) string {
	filled := pct * progressCells / 100
	if filled < 0 {
		filled = 0
	}
	if filled > progressCells {
		filled = progressCells
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressCells-filled) + "]"
}

func (m *Model) renderSettings() string {
	if m.confirmReset {
		return m.theme.modal.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.theme.title.Render("Reset progress"),
			"",
			"Are you sure you want to reset all your progress?",
			"This cannot be undone.",
			"",
			m.theme.muted.Render("y confirm · any other key cancel"),
		))
	}
	labels := []string{"Speech rate", "Difficulty"}
	rows := []string{m.theme.title.Render("Settings"), ""}
	for i, label := range labels {
		style := m.theme.text
		if i == m.focusIndex {
			style = m.theme.focused
		}
		rows = append(rows, style.Render(runewidth.FillRight(label, 13))+m.inputs[i].View())
	}
	checks := []struct {
		label string
		on    bool
	}{{"Auto-play", m.draftAuto}, {"Dark mode", m.draftDark}}
	for i, c := range checks {
		style := m.theme.text
		if rowAutoPlay+i == m.focusIndex {
			style = m.theme.focused
		}
		rows = append(rows, style.Render(runewidth.FillRight(c.label, 13))+checkbox(c.on))
	}
	rows = append(rows,
		"",
		m.theme.muted.Render("Tab move · Space toggle · Alt+a auto-play · Alt+d dark mode"),
		m.theme.muted.Render("Enter save · Alt+r reset progress · Esc close"),
	)
	return m.theme.modal.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}
