package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/nbodyval/internal/config"
	"github.com/san-kum/nbodyval/internal/logging"
)

var (
	configFile string
	preset     string
	dataDir    string
	logLevel   string
	color      bool

	particles int
	input     string
	width     int
	steps     int
	dt        float64
	gravity   float64
	softening float64

	massWeight    float64
	massTolerance float64
	tolerant      bool

	threshold   float64
	regime      string
	reorders    bool
	energyBound float64

	timeout    time.Duration
	exportPath string
	noHistory  bool
	save       bool
	detail     bool
)

// errFailed marks a session that ran to completion but did not pass. The
// report already says so; only the exit status changes.
var errFailed = errors.New("session failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags bind package-level variables, so
// building a fresh tree also resets them to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nbodyval",
		Short:         "validate n-body engines against a trusted reference",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&color, "color", false, "colour outcome words")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "run a validation session",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&configFile, "config", "", "session file (yaml)")
	validateCmd.Flags().StringVar(&preset, "preset", "", "use a preset session")
	addRunFlags(validateCmd)
	validateCmd.Flags().BoolVar(&tolerant, "tolerant", false, "tolerate approximate-regime threshold breaches")
	validateCmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the session after this long")
	validateCmd.Flags().StringVar(&exportPath, "export", "", "also write the report to a .json or .csv file")
	validateCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the session")
	validateCmd.Flags().BoolVar(&detail, "detail", false, "print the full metrics table")

	compareCmd := &cobra.Command{
		Use:   "compare [reference] [candidate]",
		Short: "compare two snapshot files",
		Args:  cobra.ExactArgs(2),
		RunE:  runCompare,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().Float64Var(&threshold, "threshold", 0, "RMSE threshold (default by regime)")
	compareCmd.Flags().StringVar(&regime, "regime", "exact", "threshold regime: exact or approximate")
	compareCmd.Flags().BoolVar(&reorders, "reorders", true, "solve correspondence before comparing")
	compareCmd.Flags().Float64Var(&energyBound, "energy-bound", 0, "bound on relative energy drift (0 = unchecked)")
	compareCmd.Flags().BoolVar(&tolerant, "tolerant", false, "tolerate approximate-regime threshold breaches")
	compareCmd.Flags().BoolVar(&save, "save", false, "record the comparison in history")
	compareCmd.Flags().BoolVar(&detail, "detail", false, "print the full metrics table")

	inspectCmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "print conservation quantities of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	addRunFlags(inspectCmd)

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "list recorded sessions",
		Args:  cobra.NoArgs,
		RunE:  listHistory,
	}

	showCmd := &cobra.Command{
		Use:   "show [session_id]",
		Short: "show a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE:  showSession,
	}
	showCmd.Flags().StringVar(&exportPath, "export", "", "write the report to a .json or .csv file")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [session_id]",
		Short: "delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteSession,
	}
	historyCmd.AddCommand(rmCmd)

	rootCmd.AddCommand(validateCmd, compareCmd, inspectCmd, historyCmd, showCmd, presetsCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "particle count")
	cmd.Flags().StringVar(&input, "input", "", "initial snapshot")
	cmd.Flags().IntVar(&width, "width", 0, "record width in doubles, 5 or 6")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "integration steps")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&gravity, "gravity", 0, "gravitational constant (0 = 100/N)")
	cmd.Flags().Float64Var(&softening, "softening", 1e-3, "softening length")
	cmd.Flags().Float64Var(&massWeight, "mass-weight", 1e6, "weight of the mass term in matching cost")
	cmd.Flags().Float64Var(&massTolerance, "mass-tolerance", 0, "gap below which masses count as equal")
}

// loadConfig resolves file, preset and environment, then applies the flags
// the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(configFile, preset)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("input") {
		cfg.Input = input
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("softening") {
		cfg.Softening = softening
	}
	if flags.Changed("mass-weight") {
		cfg.MassWeight = massWeight
	}
	if flags.Changed("mass-tolerance") {
		cfg.MassTolerance = massTolerance
	}
	if flags.Changed("tolerant") {
		cfg.ApproximateTolerant = tolerant
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}
