package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/nbodyval/internal/config"
	"github.com/san-kum/nbodyval/internal/engine"
	"github.com/san-kum/nbodyval/internal/report"
	"github.com/san-kum/nbodyval/internal/storage"
	"github.com/san-kum/nbodyval/internal/validate"
)

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Input == "" {
		return fmt.Errorf("no input snapshot: set input in the session file or pass --input")
	}
	if len(cfg.Scenarios) == 0 {
		return fmt.Errorf("no scenarios configured")
	}
	logger := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// engines run in their own working directories
	in, err := filepath.Abs(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.Presort {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return err
		}
		sorted, err := filepath.Abs(filepath.Join(cfg.DataDir, "sorted.gal"))
		if err != nil {
			return err
		}
		if err := engine.Presort(in, sorted, cfg.Particles, cfg.Width); err != nil {
			return fmt.Errorf("presort: %w", err)
		}
		logger.Info("presorted input", "input", in, "sorted", sorted)
		in = sorted
	}

	registry := engine.NewRegistry()
	ref, err := registry.Build(cfg.Reference.Label, cfg.Reference.Engine, cfg.Physics())
	if err != nil {
		return err
	}
	scenarios, err := buildScenarios(cfg, registry, in)
	if err != nil {
		return err
	}

	session := validate.NewSession(cfg.Policy(), logger)
	rep, err := session.Run(ctx, cfg.Reference.Label, ref, cfg.Request(cfg.Reference.Engine, in), scenarios)
	if err != nil {
		return err
	}

	return finishReport(cmd, cfg, rep, !noHistory)
}

func buildScenarios(cfg *config.Config, registry *engine.Registry, in string) ([]validate.Scenario, error) {
	scenarios := make([]validate.Scenario, 0, len(cfg.Scenarios))
	for _, sc := range cfg.Scenarios {
		e, err := registry.Build(sc.Label, sc.Engine, cfg.Physics())
		if err != nil {
			return nil, err
		}
		r, err := sc.EffectiveRegime()
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, validate.Scenario{
			Label:       sc.Label,
			Engine:      e,
			Request:     cfg.Request(sc.Engine, in),
			Regime:      r,
			Threshold:   sc.Threshold,
			Reorders:    sc.Reorders || sc.Engine.Sort,
			EnergyBound: sc.EnergyBound,
		})
	}
	return scenarios, nil
}

// finishReport prints rep, then optionally records and exports it, and turns a
// failed session into errFailed.
func finishReport(cmd *cobra.Command, cfg *config.Config, rep *validate.Report, record bool) error {
	out := cmd.OutOrStdout()
	var err error
	if detail {
		err = report.WriteTable(out, rep, color)
	} else {
		err = report.WriteText(out, rep, color)
	}
	if err != nil {
		return err
	}

	if record {
		if err := recordReport(cmd, cfg.DataDir, rep); err != nil {
			return err
		}
	}

	if exportPath != "" {
		if err := report.Export(exportPath, rep); err != nil {
			return err
		}
	}

	if !rep.Passed {
		return errFailed
	}
	return nil
}

func recordReport(cmd *cobra.Command, dataDir string, rep *validate.Report) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()
	id, err := st.Save(rep)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "recorded session %s\n", id)
	return nil
}
