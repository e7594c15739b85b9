package metrics

import (
	"math"

	"github.com/san-kum/nbodyval/internal/dynamo"
	"github.com/san-kum/nbodyval/internal/snapshot"
)

// EnergyParts splits total mechanical energy.
type EnergyParts struct {
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

// Energy computes kinetic and softened pairwise potential energy of s.
// softening must be the value the producing engine integrated with.
func Energy(s snapshot.Snapshot, g, softening float64) EnergyParts {
	ke := 0.0
	pe := 0.0
	eps2 := softening * softening

	for i, p := range s {
		ke += 0.5 * p.Mass * (p.VX*p.VX + p.VY*p.VY)

		for _, q := range s[i+1:] {
			rx := q.X - p.X
			ry := q.Y - p.Y
			pe -= g * p.Mass * q.Mass / math.Sqrt(rx*rx+ry*ry+eps2)
		}
	}

	return EnergyParts{Kinetic: ke, Potential: pe, Total: ke + pe}
}

// EnergyDrift tracks the largest relative energy deviation from the first
// observed state over a run.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.Hamiltonian
}

func NewEnergyDrift(dyn dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.dyn.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	e.maxDrift = math.Max(e.maxDrift, DriftRatio(e.initialEnergy, energy))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
