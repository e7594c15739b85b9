// Package engine acquires candidate and reference snapshots from simulation
// engines.
//
// An [Engine] turns a [Request] into a completed snapshot or an error; it
// never returns a partial one. Implementations:
//
//   - [Exec]: runs an external engine binary and reads the file it writes
//   - [Direct]: in-process direct-summation velocity Verlet, the exact reference
//   - [File]: a snapshot already on disk
//   - [Reorder]: wraps another engine and permutes its output along a Z-order curve
//
// Timeouts belong to the caller through the context passed to Acquire.
package engine
