package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbodyval/internal/engine"
	"github.com/san-kum/nbodyval/internal/match"
	"github.com/san-kum/nbodyval/internal/physics"
	"github.com/san-kum/nbodyval/internal/snapshot"
	"github.com/san-kum/nbodyval/internal/validate"
)

const (
	DefaultParticles = 500
	DefaultSteps     = 1
	DefaultDt        = 0.001
	DefaultDataDir   = ".nbodyval"
	DefaultLogLevel  = "info"
)

type Config struct {
	Particles int     `yaml:"particles"`
	Input     string  `yaml:"input"`
	Width     int     `yaml:"width"`
	Steps     int     `yaml:"steps"`
	Dt        float64 `yaml:"dt"`
	// Gravity of 0 selects 100/N, the constant the reference engines use.
	Gravity   float64 `yaml:"gravity"`
	Softening float64 `yaml:"softening"`

	MassWeight          float64 `yaml:"mass_weight"`
	MassTolerance       float64 `yaml:"mass_tolerance"`
	ApproximateTolerant bool    `yaml:"approximate_tolerant"`

	// Presort Z-orders the input once before any engine runs, so engines
	// that keep input order agree with the reference index for index.
	Presort bool   `yaml:"presort"`
	DataDir string `yaml:"data_dir"`

	Logging   LoggingConfig    `yaml:"logging"`
	Reference ReferenceConfig  `yaml:"reference"`
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ReferenceConfig struct {
	Label  string      `yaml:"label"`
	Engine engine.Spec `yaml:"engine"`
}

type ScenarioConfig struct {
	Label       string      `yaml:"label"`
	Engine      engine.Spec `yaml:"engine"`
	Regime      string      `yaml:"regime,omitempty"`
	Threshold   float64     `yaml:"threshold,omitempty"`
	Reorders    bool        `yaml:"reorders,omitempty"`
	EnergyBound float64     `yaml:"energy_bound,omitempty"`
}

// EffectiveRegime is the configured regime, or exact for theta 0 and
// approximate otherwise when none is set.
func (s ScenarioConfig) EffectiveRegime() (validate.Regime, error) {
	if s.Regime == "" {
		if s.Engine.Theta == 0 {
			return validate.Exact, nil
		}
		return validate.Approximate, nil
	}
	return validate.ParseRegime(s.Regime)
}

func DefaultConfig() *Config {
	return &Config{
		Particles:  DefaultParticles,
		Width:      snapshot.WidthInput,
		Steps:      DefaultSteps,
		Dt:         DefaultDt,
		Softening:  physics.DefaultSoftening,
		MassWeight: match.DefaultMassWeight,
		DataDir:    DefaultDataDir,
		Logging:    LoggingConfig{Level: DefaultLogLevel},
		Reference: ReferenceConfig{
			Label:  "direct",
			Engine: engine.Spec{Kind: "direct"},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields a session cannot run without.
func (c *Config) Validate() error {
	if c.Particles <= 0 {
		return fmt.Errorf("%w: particles must be positive, got %d", ErrInvalid, c.Particles)
	}
	if !snapshot.ValidWidth(c.Width) {
		return fmt.Errorf("%w: width must be 5 or 6, got %d", ErrInvalid, c.Width)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0, got %d", ErrInvalid, c.Steps)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalid, c.Dt)
	}
	if c.MassWeight <= 0 {
		return fmt.Errorf("%w: mass_weight must be positive, got %g", ErrInvalid, c.MassWeight)
	}
	for i, s := range c.Scenarios {
		if s.Label == "" {
			return fmt.Errorf("%w: scenario %d has no label", ErrInvalid, i)
		}
		if _, err := s.EffectiveRegime(); err != nil {
			return fmt.Errorf("scenario %s: %w", s.Label, err)
		}
	}
	return nil
}

// Policy returns the judging constants of a session built from c.
func (c *Config) Policy() validate.Policy {
	return validate.Policy{
		Match: match.Options{
			MassWeight:    c.MassWeight,
			MassTolerance: c.MassTolerance,
		},
		G:                   c.Gravity,
		Softening:           c.Softening,
		ApproximateTolerant: c.ApproximateTolerant,
	}
}

func (c *Config) Physics() engine.Physics {
	return engine.Physics{G: c.Gravity, Softening: c.Softening}
}

// Request is the run request for spec against the configured input.
func (c *Config) Request(spec engine.Spec, input string) engine.Request {
	return spec.Request(c.Particles, input, c.Steps, c.Dt)
}
