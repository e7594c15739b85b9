package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/nbodyval/internal/dynamo"
)

// oscillator is the unit harmonic oscillator with state {x, v}.
type oscillator struct{}

func (oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (oscillator) StateDim() int { return 2 }

func TestIntegratorAccuracy(t *testing.T) {
	tests := []struct {
		name string
		tol  float64
	}{
		{"rk4", 1e-8},
		{"verlet", 1e-4},
		{"leapfrog", 1e-4},
		{"euler", 2e-2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ := ByName(tt.name)
			if integ == nil {
				t.Fatalf("unknown integrator %s", tt.name)
			}

			x := dynamo.State{1.0, 0.0}
			dt := 0.01
			steps := 100
			for i := 0; i < steps; i++ {
				x = integ.Step(oscillator{}, x, float64(i)*dt, dt)
			}

			expectedX := math.Cos(float64(steps) * dt)
			expectedV := -math.Sin(float64(steps) * dt)

			if math.Abs(x[0]-expectedX) > tt.tol {
				t.Errorf("position error too large: got %.8f, expected %.8f", x[0], expectedX)
			}
			if math.Abs(x[1]-expectedV) > tt.tol {
				t.Errorf("velocity error too large: got %.8f, expected %.8f", x[1], expectedV)
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	if ByName("rk45") != nil {
		t.Error("expected nil for unknown integrator")
	}
}
