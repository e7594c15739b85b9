package snapshot

import (
	"fmt"
	"math"
	"sort"
)

// Record widths in doubles.
const (
	WidthResult = 5
	WidthInput  = 6
)

const bytesPerField = 8

// Particle is one record of a snapshot file.
type Particle struct {
	X          float64
	Y          float64
	Mass       float64
	VX         float64
	VY         float64
	Brightness float64
}

// Snapshot is the ordered particle sequence at one instant. Order is whatever
// the producer wrote; two producers need not agree on it.
type Snapshot []Particle

func ValidWidth(width int) bool {
	return width == WidthResult || width == WidthInput
}

// RecordSize returns the byte size of one record of the given width.
func RecordSize(width int) int {
	return width * bytesPerField
}

func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	copy(c, s)
	return c
}

func (s Snapshot) Masses() []float64 {
	m := make([]float64, len(s))
	for i, p := range s {
		m[i] = p.Mass
	}
	return m
}

func (s Snapshot) IsValid() bool {
	for _, p := range s {
		for _, v := range [...]float64{p.X, p.Y, p.Mass, p.VX, p.VY, p.Brightness} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// DistinctMasses counts mass values that differ by more than tol after
// sorting. tol == 0 counts exactly distinct values.
func (s Snapshot) DistinctMasses(tol float64) int {
	if len(s) == 0 {
		return 0
	}
	m := s.Masses()
	sort.Float64s(m)
	n := 1
	for i := 1; i < len(m); i++ {
		if m[i]-m[i-1] > tol {
			n++
		}
	}
	return n
}

// Permute returns out where out[i] = s[perm[i]].
func (s Snapshot) Permute(perm []int) (Snapshot, error) {
	if len(perm) != len(s) {
		return nil, fmt.Errorf("%w: length %d for %d particles", ErrInvalidPermutation, len(perm), len(s))
	}
	seen := make([]bool, len(s))
	out := make(Snapshot, len(s))
	for i, j := range perm {
		if j < 0 || j >= len(s) || seen[j] {
			return nil, fmt.Errorf("%w: index %d at position %d", ErrInvalidPermutation, j, i)
		}
		seen[j] = true
		out[i] = s[j]
	}
	return out, nil
}

// Bounds returns the axis-aligned bounding box of all positions.
func (s Snapshot) Bounds() (minX, minY, maxX, maxY float64) {
	if len(s) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = s[0].X, s[0].Y
	maxX, maxY = s[0].X, s[0].Y
	for _, p := range s[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return
}
