// Package physics provides the gravitational model stepped by the
// in-process reference engine.
//
// [Gravity] implements [dynamo.System] and [dynamo.Hamiltonian] with the
// same softened pairwise force the external engines use:
//
//	a_i = G * sum_j m_j * r_ij / (|r_ij|^2 + eps^2)^(3/2)
//
// The softening length must match the producing engine, otherwise energies
// computed here are not comparable with the engine's.
//
//	x, masses := physics.StateOf(snap)
//	dyn := physics.NewGravity(masses, physics.ReferenceG(len(snap)), 1e-3)
//	e := dyn.Energy(x)
package physics
