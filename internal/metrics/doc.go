// Package metrics computes deviation and conservation quantities over
// snapshots. Every function is pure and read-only.
//
// Position error needs index-aligned snapshots (see package match).
// Momentum, angular momentum and energy are order-independent.
package metrics
