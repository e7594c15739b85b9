package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/nbodyval/internal/engine"
)

// Presets reproduce the two standard validation runs over the engine
// builds in ./build.
var Presets = map[string]func() *Config{
	"accuracy": accuracyPreset,
	"audit":    auditPreset,
}

func binary(name string) string { return "./build/" + name }

// accuracyPreset checks the tree engine at three opening angles against the
// exact engine over one step on a Z-ordered input.
func accuracyPreset() *Config {
	cfg := DefaultConfig()
	cfg.Input = "data/inputs/input_500.bin"
	cfg.Steps = 1
	cfg.Dt = 0.001
	cfg.Presort = true
	cfg.Reference = ReferenceConfig{
		Label:  "v1_naive",
		Engine: engine.Spec{Kind: "exec", Binary: binary("v1_naive"), Workdir: "."},
	}

	targets := []struct {
		theta     float64
		regime    string
		threshold float64
	}{
		{0.0, "exact", 1e-12},
		{0.5, "approximate", 5e-2},
		{1.0, "approximate", 5e-2},
	}
	for _, t := range targets {
		cfg.Scenarios = append(cfg.Scenarios, ScenarioConfig{
			Label: fmt.Sprintf("theta=%.1f", t.theta),
			Engine: engine.Spec{
				Kind:    "exec",
				Binary:  binary("v4_morton"),
				Workdir: ".",
				Theta:   t.theta,
				Flags:   []string{"0"},
			},
			Regime:    t.regime,
			Threshold: t.threshold,
		})
	}
	return cfg
}

// auditPreset runs every engine build at theta 0 for 50 steps and matches
// each against the exact engine.
func auditPreset() *Config {
	cfg := DefaultConfig()
	cfg.Input = "data/inputs/input_500.bin"
	cfg.Steps = 50
	cfg.Dt = 0.001
	cfg.Reference = ReferenceConfig{
		Label:  "v1_naive",
		Engine: engine.Spec{Kind: "exec", Binary: binary("v1_naive"), Workdir: "."},
	}

	builds := []struct {
		name     string
		threads  int
		reorders bool
	}{
		{"v2_barnes_hut", 1, false},
		{"v3_arena", 1, false},
		{"v4_morton", 1, true},
		{"v5_parallel", 4, true},
	}
	for _, b := range builds {
		cfg.Scenarios = append(cfg.Scenarios, ScenarioConfig{
			Label: b.name,
			Engine: engine.Spec{
				Kind:    "exec",
				Binary:  binary(b.name),
				Workdir: ".",
				Threads: b.threads,
			},
			Regime: "exact",
			// summation order differs between engines, which compounds
			// over 50 steps
			Threshold: 1e-8,
			Reorders:  b.reorders,
		})
	}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve loads path if set, otherwise the named preset, otherwise defaults,
// then applies the environment.
func Resolve(path, preset string) (*Config, error) {
	var cfg *Config
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, preset)
		}
	default:
		cfg = DefaultConfig()
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
