package dynamo

import "math"

// State is a flat N-body state vector: [x0 y0 x1 y1 ... vx0 vy0 vx1 vy1 ...].
// The first half holds positions and the second half velocities, which is
// the split the symplectic integrators rely on.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is dX/dt = f(X, t). For second-order systems the first half of the
// derivative is the velocity and the second half the acceleration.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Positional marks a System whose accelerations depend on positions alone.
// Integrators may then carry the accelerations of one step into the next.
type Positional interface {
	System
	PositionalForces()
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Config struct {
	Dt            float64
	Steps         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1e-3,
		Steps:         1,
		ValidateState: true,
	}
}

type Result struct {
	Final       State
	Time        float64
	StepsTaken  int
	EnergyDrift float64
	Metrics     map[string]float64
}
