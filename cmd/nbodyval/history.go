package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbodyval/internal/config"
	"github.com/san-kum/nbodyval/internal/report"
	"github.com/san-kum/nbodyval/internal/storage"
)

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func listHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.List()
	if err != nil {
		return err
	}
	return report.WriteHistory(cmd.OutOrStdout(), sessions)
}

func showSession(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rep, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if err := report.WriteTable(cmd.OutOrStdout(), rep, color); err != nil {
		return err
	}
	if exportPath != "" {
		if err := report.Export(exportPath, rep); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", exportPath)
	}
	return nil
}

func deleteSession(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "presets:")
		for _, name := range config.ListPresets() {
			cfg := config.GetPreset(name)
			fmt.Fprintf(out, "  %-10s %d scenarios, %d steps\n", name, len(cfg.Scenarios), cfg.Steps)
		}
		return nil
	}

	cfg := config.GetPreset(args[0])
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
