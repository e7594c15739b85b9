package engine

import (
	"context"
	"fmt"

	"github.com/san-kum/nbodyval/internal/compute"
	"github.com/san-kum/nbodyval/internal/dynamo"
	"github.com/san-kum/nbodyval/internal/integrators"
	"github.com/san-kum/nbodyval/internal/metrics"
	"github.com/san-kum/nbodyval/internal/physics"
	"github.com/san-kum/nbodyval/internal/snapshot"
)

// Direct integrates the input in process with exact O(N^2) softened gravity.
// Requests with more than one thread use the row-parallel kernel. Theta and
// K are ignored.
type Direct struct {
	Label      string
	G          float64 // 0 selects physics.ReferenceG(N)
	Softening  float64
	Integrator string
	InputWidth int
	// Output, if set, receives the final snapshot as a 5-wide result file.
	Output string
	// MaxDrift, if positive, rejects runs whose relative energy drift at
	// any step exceeds it.
	MaxDrift float64
}

func (d *Direct) Name() string {
	if d.Label != "" {
		return d.Label
	}
	return "direct"
}

func (d *Direct) Acquire(ctx context.Context, req Request) (snapshot.Snapshot, error) {
	width := d.InputWidth
	if width == 0 {
		width = snapshot.WidthInput
	}
	initial, err := snapshot.Read(req.Input, req.Particles, width)
	if err != nil {
		return nil, err
	}
	return d.evolve(ctx, initial, req.Steps, req.Dt, req.Threads)
}

// evolve advances s by steps of dt, splitting forces over threads workers.
func (d *Direct) evolve(ctx context.Context, s snapshot.Snapshot, steps int, dt float64, threads int) (snapshot.Snapshot, error) {
	name := d.Integrator
	if name == "" {
		name = "verlet"
	}
	integ := integrators.ByName(name)
	if integ == nil {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}

	g := d.G
	if g == 0 {
		g = physics.ReferenceG(len(s))
	}

	x0, masses := physics.StateOf(s)
	dyn := physics.NewGravity(masses, g, d.Softening)
	if threads > 1 {
		dyn.Forces = compute.NewCPU(threads)
	}
	drift := metrics.NewEnergyDrift(dyn)
	sim := dynamo.New(dyn, integ)
	sim.AddMetric(drift)

	result, err := sim.Run(ctx, x0, dynamo.Config{Dt: dt, Steps: steps, ValidateState: true})
	if err != nil {
		return nil, err
	}
	if d.MaxDrift > 0 && drift.Value() > d.MaxDrift {
		return nil, fmt.Errorf("%w: energy drift %.3e exceeds %g", ErrUnstable, drift.Value(), d.MaxDrift)
	}

	final := physics.Apply(s, result.Final)
	if d.Output != "" {
		if err := snapshot.Write(d.Output, final, snapshot.WidthResult); err != nil {
			return nil, err
		}
	}
	return final, nil
}
