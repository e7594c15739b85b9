package match

import (
	"fmt"
	"sort"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// Key names the signal a correspondence was built from.
type Key string

const (
	KeyIdentity Key = "identity"
	KeyMass     Key = "mass"
	KeySpatial  Key = "spatial"
)

// Options are the tunables of the solver.
type Options struct {
	// MassWeight scales the mass term of the cost.
	MassWeight float64
	// MassTolerance is the gap below which two reference masses count as
	// equal when checking that mass is a usable key.
	MassTolerance float64
}

func DefaultOptions() Options {
	return Options{MassWeight: DefaultMassWeight}
}

// Correspondence pairs reference particle i with candidate particle Perm[i].
// Matched is the candidate permuted into reference order.
type Correspondence struct {
	Perm      []int
	Matched   snapshot.Snapshot
	Key       Key
	TotalCost float64
}

// Degenerate reports whether the weaker spatial ranking was used.
func (c *Correspondence) Degenerate() bool {
	return c.Key == KeySpatial
}

// Warning returns ErrDegenerateKey for spatial correspondences and nil otherwise.
func (c *Correspondence) Warning() error {
	if c.Degenerate() {
		return ErrDegenerateKey
	}
	return nil
}

type Solver struct {
	opts Options
}

func NewSolver(opts Options) *Solver {
	return &Solver{opts: opts}
}

// Match aligns cand to ref's order.
func (s *Solver) Match(ref, cand snapshot.Snapshot) (*Correspondence, error) {
	if len(ref) != len(cand) {
		return nil, fmt.Errorf("%w: reference has %d particles, candidate %d", ErrSizeMismatch, len(ref), len(cand))
	}

	if ref.DistinctMasses(s.opts.MassTolerance) < len(ref) {
		return spatial(ref, cand)
	}

	cost, err := BuildCost(ref, cand, s.opts.MassWeight)
	if err != nil {
		return nil, err
	}
	perm, total, err := Solve(cost)
	if err != nil {
		return nil, err
	}
	matched, err := cand.Permute(perm)
	if err != nil {
		return nil, err
	}

	return &Correspondence{
		Perm:      perm,
		Matched:   matched,
		Key:       KeyMass,
		TotalCost: total,
	}, nil
}

// Identity is the correspondence for a candidate already in reference order.
func Identity(ref, cand snapshot.Snapshot) (*Correspondence, error) {
	if len(ref) != len(cand) {
		return nil, fmt.Errorf("%w: reference has %d particles, candidate %d", ErrSizeMismatch, len(ref), len(cand))
	}
	perm := make([]int, len(cand))
	for i := range perm {
		perm[i] = i
	}
	return &Correspondence{
		Perm:    perm,
		Matched: cand.Clone(),
		Key:     KeyIdentity,
	}, nil
}

func spatial(ref, cand snapshot.Snapshot) (*Correspondence, error) {
	refOrder := lexOrder(ref)
	candOrder := lexOrder(cand)

	perm := make([]int, len(ref))
	for rank, i := range refOrder {
		perm[i] = candOrder[rank]
	}
	matched, err := cand.Permute(perm)
	if err != nil {
		return nil, err
	}

	return &Correspondence{
		Perm:    perm,
		Matched: matched,
		Key:     KeySpatial,
	}, nil
}

// lexOrder sorts indices by x, then y.
func lexOrder(s snapshot.Snapshot) []int {
	order := make([]int, len(s))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := s[order[a]], s[order[b]]
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return pa.Y < pb.Y
	})
	return order
}
