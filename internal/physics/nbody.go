package physics

import (
	"math"

	"github.com/san-kum/nbodyval/internal/compute"
	"github.com/san-kum/nbodyval/internal/dynamo"
	"github.com/san-kum/nbodyval/internal/snapshot"
)

// DefaultSoftening is the softening length the reference engines use.
const DefaultSoftening = 1e-3

// Gravity is softened Newtonian gravity over N point masses in the plane.
// State layout follows dynamo.State: 2N positions then 2N velocities.
type Gravity struct {
	Masses    []float64
	G         float64
	Softening float64
	// Forces overrides the serial pairwise kernel when set.
	Forces compute.Forces
}

// NewGravity creates a Gravity system. Masses are copied.
func NewGravity(masses []float64, g, softening float64) *Gravity {
	m := make([]float64, len(masses))
	copy(m, masses)
	return &Gravity{
		Masses:    m,
		G:         g,
		Softening: softening,
	}
}

// ReferenceG is the gravitational constant the reference engines use for n
// particles.
func ReferenceG(n int) float64 {
	if n <= 0 {
		return 0
	}
	return 100.0 / float64(n)
}

func (g *Gravity) NumBodies() int { return len(g.Masses) }
func (g *Gravity) StateDim() int  { return len(g.Masses) * 4 }

// PositionalForces marks gravity as position-dependent only.
func (g *Gravity) PositionalForces() {}

var (
	_ dynamo.Positional  = (*Gravity)(nil)
	_ dynamo.Hamiltonian = (*Gravity)(nil)
)

func (g *Gravity) Derive(x dynamo.State, t float64) dynamo.State {
	n := g.NumBodies()
	half := 2 * n
	dx := make(dynamo.State, len(x))

	copy(dx[:half], x[half:])

	ax, ay := g.accelerations(x)
	for i := 0; i < n; i++ {
		dx[half+2*i] = ax[i]
		dx[half+2*i+1] = ay[i]
	}

	return dx
}

func (g *Gravity) accelerations(x dynamo.State) ([]float64, []float64) {
	n := g.NumBodies()
	pos := x[:2*n]
	if g.Forces != nil {
		return g.Forces.Accelerations(pos, g.Masses, g.G, g.Softening)
	}
	ax := make([]float64, n)
	ay := make([]float64, n)
	compute.Pairwise(pos, g.Masses, g.G, g.Softening, ax, ay)
	return ax, ay
}

// Energy is kinetic plus softened pairwise potential energy.
func (g *Gravity) Energy(x dynamo.State) float64 {
	n := g.NumBodies()
	half := 2 * n
	ke := 0.0
	pe := 0.0
	eps2 := g.Softening * g.Softening

	for i := 0; i < n; i++ {
		vx, vy := x[half+2*i], x[half+2*i+1]
		ke += 0.5 * g.Masses[i] * (vx*vx + vy*vy)

		for j := i + 1; j < n; j++ {
			rx := x[2*j] - x[2*i]
			ry := x[2*j+1] - x[2*i+1]
			r := math.Sqrt(rx*rx + ry*ry + eps2)
			pe -= g.G * g.Masses[i] * g.Masses[j] / r
		}
	}

	return ke + pe
}

// StateOf packs a snapshot into a state vector and its mass list.
func StateOf(s snapshot.Snapshot) (dynamo.State, []float64) {
	n := len(s)
	half := 2 * n
	x := make(dynamo.State, 4*n)
	masses := make([]float64, n)
	for i, p := range s {
		x[2*i] = p.X
		x[2*i+1] = p.Y
		x[half+2*i] = p.VX
		x[half+2*i+1] = p.VY
		masses[i] = p.Mass
	}
	return x, masses
}

// Apply returns a copy of s with positions and velocities taken from x.
// Masses and brightness are carried over unchanged.
func Apply(s snapshot.Snapshot, x dynamo.State) snapshot.Snapshot {
	half := 2 * len(s)
	out := s.Clone()
	for i := range out {
		out[i].X = x[2*i]
		out[i].Y = x[2*i+1]
		out[i].VX = x[half+2*i]
		out[i].VY = x[half+2*i+1]
	}
	return out
}
