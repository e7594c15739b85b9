// Package dynamo provides the integration primitives behind the in-process
// reference engine.
//
// The package defines the interfaces and types for stepping an N-body state
// vector forward in time:
//
//   - [State]: flat vector, positions first then velocities
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: runs a fixed number of steps and observes metrics
//   - [ParallelFor]: chunked parallel loop used for pairwise work
//
// # Example
//
//	dyn := physics.NewGravity(masses, g, softening)
//	s := dynamo.New(dyn, integrators.NewVerlet())
//	result, _ := s.Run(ctx, x0, dynamo.Config{Dt: 1e-3, Steps: 50})
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe; integrators keep scratch buffers.
// Build one Simulator per run.
package dynamo
