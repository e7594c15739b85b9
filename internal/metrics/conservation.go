package metrics

import (
	"math"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// ZeroFloor is the magnitude below which a conserved quantity counts as zero
// and drift falls back to the absolute difference.
const ZeroFloor = 1e-12

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Norm() float64   { return math.Hypot(v.X, v.Y) }

// Momentum is the vector sum of mass times velocity.
func Momentum(s snapshot.Snapshot) Vec2 {
	var p Vec2
	for _, q := range s {
		p.X += q.Mass * q.VX
		p.Y += q.Mass * q.VY
	}
	return p
}

// AngularMomentum is the z component of sum m (r x v) about the origin.
func AngularMomentum(s snapshot.Snapshot) float64 {
	l := 0.0
	for _, q := range s {
		l += q.Mass * (q.X*q.VY - q.Y*q.VX)
	}
	return l
}

func TotalMass(s snapshot.Snapshot) float64 {
	m := 0.0
	for _, q := range s {
		m += q.Mass
	}
	return m
}

// DriftRatio is |final - initial| / |initial|, or the absolute difference
// when |initial| is below ZeroFloor.
func DriftRatio(initial, final float64) float64 {
	diff := math.Abs(final - initial)
	if math.Abs(initial) < ZeroFloor {
		return diff
	}
	return diff / math.Abs(initial)
}

// VectorDrift is DriftRatio for vectors, using Euclidean norms.
func VectorDrift(initial, final Vec2) float64 {
	diff := final.Sub(initial).Norm()
	if initial.Norm() < ZeroFloor {
		return diff
	}
	return diff / initial.Norm()
}

// Summary holds the order-independent global quantities of one snapshot.
type Summary struct {
	Particles       int         `json:"particles"`
	TotalMass       float64     `json:"total_mass"`
	Momentum        Vec2        `json:"momentum"`
	AngularMomentum float64     `json:"angular_momentum"`
	Energy          EnergyParts `json:"energy"`
	DistinctMasses  int         `json:"distinct_masses"`
}

func Summarize(s snapshot.Snapshot, g, softening float64) Summary {
	return Summary{
		Particles:       len(s),
		TotalMass:       TotalMass(s),
		Momentum:        Momentum(s),
		AngularMomentum: AngularMomentum(s),
		Energy:          Energy(s, g, softening),
		DistinctMasses:  s.DistinctMasses(0),
	}
}
