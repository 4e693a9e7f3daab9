package stats

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/kazu/internal/model"
)

const terminalWidthBackup = 80

// RoundLister is the history source for reports.
type RoundLister interface {
	ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.Round, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Current    model.Stats
	Rounds     []model.Round
	Magnitudes []model.MagnitudeAggregate
	Missed     []Missed
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src RoundLister, current model.Stats, cfg model.StatsConfig) (Report, error) {
	rounds, err := src.ListRounds(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Current:    current,
		Rounds:     rounds,
		Magnitudes: MagnitudeAggregates(rounds),
		Missed:     TopMissed(rounds, cfg.Top),
	}, nil
}

// Render writes every report section. A width of 0 uses the terminal width.
func Render(w io.Writer, report Report, cfg model.StatsConfig, width int) error {
	if width <= 0 {
		width = TerminalWidth(w)
	}
	if err := RenderSummary(w, report.Current, report.Rounds); err != nil {
		return err
	}
	if err := RenderCurve(w, report.Rounds, cfg.CurveWindow, width-5); err != nil {
		return err
	}
	if err := RenderMagnitudeTable(w, report.Magnitudes); err != nil {
		return err
	}
	return RenderTopMissed(w, report.Missed)
}

// TerminalWidth returns the width of w when it is a terminal, otherwise a fixed fallback.
func TerminalWidth(w io.Writer) int {
	if !IsTerminal(w) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(w.(*os.File).Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
