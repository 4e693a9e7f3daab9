// Package main provides the CLI entrypoint for kazu.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kazu/internal/config"
	"github.com/verte-zerg/kazu/internal/generator"
	applog "github.com/verte-zerg/kazu/internal/log"
	"github.com/verte-zerg/kazu/internal/model"
	"github.com/verte-zerg/kazu/internal/quiz"
	"github.com/verte-zerg/kazu/internal/reading"
	"github.com/verte-zerg/kazu/internal/speech"
	"github.com/verte-zerg/kazu/internal/stats"
	"github.com/verte-zerg/kazu/internal/statsui"
	"github.com/verte-zerg/kazu/internal/store"
	"github.com/verte-zerg/kazu/internal/tui"
)

const (
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 200
	defaultCurveWindow = 20
	defaultTopMissed   = 10
	defaultLogLevel    = "info"
)

var (
	practiceRate       float64
	practiceAutoPlay   bool
	practiceDifficulty string
	practiceDarkMode   bool
	practiceFocusWeak  bool
	practiceWeakFactor float64
	practiceWeakWindow int
	speechCommand      string
	speechMute         bool
	logLevel           string
	logPath            string

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsPlain       bool

	resetYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := model.DefaultSettings()
	rootCmd := &cobra.Command{
		Use:           "kazu",
		Short:         "TUI trainer for Japanese number listening",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().Float64Var(&practiceRate, "rate", defaults.Rate, "speech rate (0.1-2.0)")
	rootCmd.Flags().BoolVar(&practiceAutoPlay, "auto-play", defaults.AutoPlay, "play each new number automatically")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", defaults.Difficulty.String(), "target range as min-max")
	rootCmd.Flags().BoolVar(&practiceDarkMode, "dark-mode", defaults.DarkMode, "use the dark theme")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias targets toward weak digit counts")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak digit counts")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent answers used to find weak digit counts")
	rootCmd.Flags().StringVar(&speechCommand, "speech-cmd", "", "speech command template ({text}, {rate}, {wpm})")
	rootCmd.Flags().BoolVar(&speechMute, "mute", false, "disable audio output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "log directory")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newReadCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "rate", &practiceRate, fileCfg.Quiz.Rate)
	applyBoolConfig(cmd, "auto-play", &practiceAutoPlay, fileCfg.Quiz.AutoPlay)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Quiz.Difficulty)
	applyBoolConfig(cmd, "dark-mode", &practiceDarkMode, fileCfg.Quiz.DarkMode)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Quiz.FocusWeak)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Quiz.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Quiz.WeakWindow)
	applyStringConfig(cmd, "speech-cmd", &speechCommand, fileCfg.Speech.Command)
	applyBoolConfig(cmd, "mute", &speechMute, fileCfg.Speech.Mute)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-path", &logPath, fileCfg.Log.Path)

	defaults, err := practiceSettings()
	if err != nil {
		return err
	}
	if err := validateFocus(practiceWeakFactor, practiceWeakWindow); err != nil {
		return err
	}

	logFile, err := openLogger()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()
	logger := logFile.Logger

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	speaker := newSpeaker(logger)
	if stopper, ok := speaker.(*speech.Command); ok {
		defer stopper.Stop()
	}

	session := quiz.New(quiz.Deps{
		Speaker:   speaker,
		Store:     st,
		Generator: newGenerator(ctx, st, logger),
		History:   st,
		Logger:    logger,
		Defaults:  &defaults,
	})
	if err := session.Load(ctx); err != nil {
		logErrf("persisted state was unreadable, using defaults: %v\n", err)
	}
	if patch, ok := changedSettings(cmd, defaults); ok {
		snap := session.Handle(ctx, quiz.UpdateSettings{Patch: patch})
		logger.Info().Str("settings", fmt.Sprintf("%+v", snap.Settings)).Msg("applied settings from flags")
	}

	program := tea.NewProgram(tui.NewModel(session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// practiceSettings builds the settings used when nothing is persisted yet.
func practiceSettings() (model.Settings, error) {
	r, err := model.ParseRange(practiceDifficulty)
	if err != nil {
		return model.Settings{}, fmt.Errorf("invalid --difficulty value: %w", err)
	}
	settings := model.Settings{
		Rate:       practiceRate,
		AutoPlay:   practiceAutoPlay,
		Difficulty: r,
		DarkMode:   practiceDarkMode,
	}
	if err := quiz.ValidateSettings(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// changedSettings returns a patch holding only the flags set on the command line.
func changedSettings(cmd *cobra.Command, settings model.Settings) (model.SettingsPatch, bool) {
	var patch model.SettingsPatch
	changed := false
	if cmd.Flags().Changed("rate") {
		patch.Rate = &settings.Rate
		changed = true
	}
	if cmd.Flags().Changed("auto-play") {
		patch.AutoPlay = &settings.AutoPlay
		changed = true
	}
	if cmd.Flags().Changed("difficulty") {
		patch.Difficulty = &settings.Difficulty
		changed = true
	}
	if cmd.Flags().Changed("dark-mode") {
		patch.DarkMode = &settings.DarkMode
		changed = true
	}
	return patch, changed
}

func validateFocus(factor float64, window int) error {
	if factor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if window < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func openLogger() (*applog.File, error) {
	level, err := applog.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	dir, err := applog.ResolveDir(logPath, config.DefaultLogDir())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log directory: %w", err)
	}
	return applog.Open(dir, level)
}

func newSpeaker(logger zerolog.Logger) quiz.Speaker {
	if speechMute {
		logger.Info().Msg("speech muted")
		return speech.Mute{}
	}
	speaker := speech.Detect(speechCommand, logger)
	if _, ok := speaker.(speech.Unsupported); ok {
		logErrln("no speech command found; numbers will not be spoken (see --speech-cmd)")
	}
	return speaker
}

func newGenerator(ctx context.Context, st *store.Store, logger zerolog.Logger) quiz.Generator {
	gen := generator.New()
	if !practiceFocusWeak {
		return gen
	}
	aggs, err := st.GetMagnitudeAggregates(ctx, practiceWeakWindow)
	if err != nil {
		logErrf("failed to load weak digit counts: %v\n", err)
		return gen
	}
	weak := stats.SelectWeakMagnitudes(aggs)
	if len(weak) == 0 {
		logErrln("no history available for weak focus yet; using normal generator")
		return gen
	}
	logger.Debug().Interface("weak", weak).Float64("factor", practiceWeakFactor).Msg("weak focus enabled")
	return generator.Focus{Gen: gen, Weak: weak, Factor: practiceWeakFactor}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N answers")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", defaultTopMissed, "number of most missed numbers to list")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain text report instead of the interactive view")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	cfg := model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	session := quiz.New(quiz.Deps{Store: st, Logger: zerolog.Nop()})
	if err := session.Load(ctx); err != nil {
		logErrf("stored totals were unreadable: %v\n", err)
	}
	current := session.Snapshot().Stats
	if !statsPlain && stats.IsTerminal(cmd.OutOrStdout()) {
		program := tea.NewProgram(statsui.NewModel(st, current, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}
	report, err := stats.BuildReport(ctx, st, current, cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if err := stats.Render(cmd.OutOrStdout(), report, cfg, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to reset all your progress? This cannot be undone. [y/N] ")
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Reset cancelled.")
			return nil
		}
	}

	logFile, err := openLogger()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	session := quiz.New(quiz.Deps{Store: st, History: st, Logger: logFile.Logger})
	if err := session.Load(ctx); err != nil {
		logFile.Logger.Warn().Err(err).Msg("resetting unreadable state")
	}
	snap := session.Handle(ctx, quiz.ResetProgress{})
	if snap.Notice != quiz.NoticeProgressReset {
		return errors.New(strings.ToLower(strings.TrimSuffix(snap.Notice, ".")))
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), snap.Notice); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.TrimSpace(strings.ToLower(line))
	return answer == "y" || answer == "yes", nil
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read N...",
		Short: "Print the romanized reading of numbers",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReadCmd,
	}
}

func runReadCmd(cmd *cobra.Command, args []string) error {
	numbers := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(strings.ReplaceAll(arg, ",", ""))
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", arg, err)
		}
		if !reading.InDomain(n) {
			return fmt.Errorf("number %d is outside 0-%d", n, reading.MaxValue)
		}
		numbers = append(numbers, n)
	}
	for _, n := range numbers {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n, reading.ToReading(n)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := model.DefaultSettings()
	return fmt.Sprintf(`# kazu configuration
# Uncomment a value to enable it. CLI flags override config values.
# Settings saved from the app take precedence over [quiz] values.

[quiz]
# rate = %.1f               # Speech rate (0.1-2.0)
# auto-play = %t          # Play each new number automatically
# difficulty = %q       # Target range as min-max
# dark-mode = %t         # Use the dark theme
# focus-weak = false       # Bias targets toward weak digit counts
# weak-factor = %.1f        # Weight factor for weak digit counts
# weak-window = %d        # Recent answers used to find weak digit counts

[speech]
# command = %q
# mute = false

[log]
# level = %q
# path = ""
`,
		defaults.Rate,
		defaults.AutoPlay,
		defaults.Difficulty.String(),
		defaults.DarkMode,
		defaultWeakFactor,
		defaultWeakWindow,
		speech.DefaultTemplate(),
		defaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
