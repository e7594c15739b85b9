package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/nbodyval/internal/engine"
	"github.com/san-kum/nbodyval/internal/metrics"
	"github.com/san-kum/nbodyval/internal/physics"
	"github.com/san-kum/nbodyval/internal/report"
	"github.com/san-kum/nbodyval/internal/snapshot"
	"github.com/san-kum/nbodyval/internal/validate"
)

// resultWidth is the width to read finished snapshots with unless --width is set.
func resultWidth(cmd *cobra.Command) int {
	if cmd.Flags().Changed("width") {
		return width
	}
	return snapshot.WidthResult
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := validate.ParseRegime(regime)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	w := resultWidth(cmd)

	ref, err := snapshot.Read(args[0], cfg.Particles, w)
	if err != nil {
		return err
	}

	session := validate.NewSession(cfg.Policy(), logger)
	if err := session.Begin(args[0], ref); err != nil {
		return err
	}
	scn := validate.Scenario{
		Label:       args[1],
		Engine:      &engine.File{Path: args[1], Width: w},
		Request:     engine.Request{Particles: cfg.Particles},
		Regime:      r,
		Threshold:   threshold,
		Reorders:    reorders,
		EnergyBound: energyBound,
	}
	if _, err := session.Evaluate(cmd.Context(), scn); err != nil {
		return err
	}
	rep, err := session.Finish()
	if err != nil {
		return err
	}
	return finishReport(cmd, cfg, rep, save)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := snapshot.Read(args[0], cfg.Particles, resultWidth(cmd))
	if err != nil {
		return err
	}

	g := cfg.Gravity
	if g == 0 {
		g = physics.ReferenceG(len(s))
	}
	return report.WriteSummary(cmd.OutOrStdout(), args[0], metrics.Summarize(s, g, cfg.Softening), color)
}
