// Package match recovers the correspondence between two snapshots of the
// same physical system whose particles are stored in different orders.
//
// The cost of pairing reference particle i with candidate particle j is
//
//	cost[i][j] = w * |m_i - m_j| + |r_i - r_j|
//
// with w large (1e6 by default) so mass acts as an identity key and
// position only breaks ties between near-equal masses. The assignment is
// solved to global optimality with the shortest-augmenting-path form of the
// Hungarian method (Jonker-Volgenant), O(N^3) time and O(N^2) memory.
// Greedy nearest-neighbour pairing is never used: in dense fields it can pair
// two reference particles with the same candidate.
//
// When the reference masses are not pairwise distinct the mass key is
// unusable and the solver falls back to ranking both snapshots by (x, y).
// The result is then flagged with [KeySpatial] and [ErrDegenerateKey].
package match
