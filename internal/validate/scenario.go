package validate

import (
	"fmt"

	"github.com/san-kum/nbodyval/internal/engine"
)

// Regime separates numerically exact methods from inherently approximate ones.
type Regime string

const (
	Exact       Regime = "exact"
	Approximate Regime = "approximate"
)

const (
	DefaultExactThreshold       = 1e-12
	DefaultApproximateThreshold = 5e-2
)

func ParseRegime(s string) (Regime, error) {
	switch Regime(s) {
	case "", Exact:
		return Exact, nil
	case Approximate:
		return Approximate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRegime, s)
	}
}

// DefaultThreshold is the RMSE bound used when a scenario leaves it at zero.
func (r Regime) DefaultThreshold() float64 {
	if r == Approximate {
		return DefaultApproximateThreshold
	}
	return DefaultExactThreshold
}

// Scenario is one candidate configuration and its acceptance policy.
type Scenario struct {
	Label   string
	Engine  engine.Engine
	Request engine.Request
	Regime  Regime
	// Threshold bounds position RMSE; 0 selects the regime default.
	Threshold float64
	// Reorders marks producers whose output order differs from the
	// reference; only those go through correspondence solving.
	Reorders bool
	// EnergyBound, if positive, bounds the relative energy drift against
	// the reference.
	EnergyBound float64
}

func (s Scenario) threshold() float64 {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return s.Regime.DefaultThreshold()
}

type Outcome string

const (
	Pass      Outcome = "PASS"
	Fail      Outcome = "FAIL"
	Error     Outcome = "ERROR"
	Tolerated Outcome = "TOLERATED"
)

// Passed reports whether o counts towards an ALL PASSED session.
func (o Outcome) Passed() bool {
	return o == Pass || o == Tolerated
}
