package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds the settings that may come from the environment.
// Unset variables leave their pointer nil.
type envOverrides struct {
	Particles           *int     `env:"NBODYVAL_PARTICLES"`
	Input               *string  `env:"NBODYVAL_INPUT"`
	Steps               *int     `env:"NBODYVAL_STEPS"`
	Dt                  *float64 `env:"NBODYVAL_DT"`
	Gravity             *float64 `env:"NBODYVAL_GRAVITY"`
	Softening           *float64 `env:"NBODYVAL_SOFTENING"`
	MassWeight          *float64 `env:"NBODYVAL_MASS_WEIGHT"`
	ApproximateTolerant *bool    `env:"NBODYVAL_APPROXIMATE_TOLERANT"`
	DataDir             *string  `env:"NBODYVAL_DATA_DIR"`
	LogLevel            *string  `env:"NBODYVAL_LOG_LEVEL"`
}

// ApplyEnv overlays NBODYVAL_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.Particles != nil {
		cfg.Particles = *o.Particles
	}
	if o.Input != nil {
		cfg.Input = *o.Input
	}
	if o.Steps != nil {
		cfg.Steps = *o.Steps
	}
	if o.Dt != nil {
		cfg.Dt = *o.Dt
	}
	if o.Gravity != nil {
		cfg.Gravity = *o.Gravity
	}
	if o.Softening != nil {
		cfg.Softening = *o.Softening
	}
	if o.MassWeight != nil {
		cfg.MassWeight = *o.MassWeight
	}
	if o.ApproximateTolerant != nil {
		cfg.ApproximateTolerant = *o.ApproximateTolerant
	}
	if o.DataDir != nil {
		cfg.DataDir = *o.DataDir
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	return nil
}
