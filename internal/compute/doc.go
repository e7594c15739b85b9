// Package compute provides softened gravitational force kernels.
//
// [Pairwise] visits each pair once and applies equal and opposite forces,
// so total momentum is conserved to rounding. [CPU] splits rows across
// workers; each row sums its own interactions in index order, so the result
// does not depend on the worker count:
//
//	ax, ay := compute.NewCPU(4).Accelerations(positions, masses, g, softening)
package compute
