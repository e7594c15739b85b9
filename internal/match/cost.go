package match

import (
	"math"

	"github.com/san-kum/nbodyval/internal/dynamo"
	"github.com/san-kum/nbodyval/internal/snapshot"
)

// DefaultMassWeight makes a unit mass difference outweigh any realistic
// position distance.
const DefaultMassWeight = 1e6

// parallelRows is the smallest row chunk worth a goroutine.
const parallelRows = 64

// CostMatrix is a dense row-major N x N matrix.
type CostMatrix struct {
	n    int
	data []float64
}

func NewCostMatrix(n int) *CostMatrix {
	return &CostMatrix{n: n, data: make([]float64, n*n)}
}

// costMatrixFrom copies a square [][]float64.
func costMatrixFrom(rows [][]float64) (*CostMatrix, error) {
	n := len(rows)
	m := NewCostMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errNotSquare
		}
		copy(m.data[i*n:(i+1)*n], row)
	}
	return m, nil
}

func (m *CostMatrix) Size() int               { return m.n }
func (m *CostMatrix) At(i, j int) float64     { return m.data[i*m.n+j] }
func (m *CostMatrix) Set(i, j int, v float64) { m.data[i*m.n+j] = v }
func (m *CostMatrix) Row(i int) []float64     { return m.data[i*m.n : (i+1)*m.n] }

func (m *CostMatrix) valid() bool {
	for _, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BuildCost fills cost[i][j] = massWeight*|R[i].mass - C[j].mass| + |R[i].pos - C[j].pos|.
// Rows are independent and are filled in parallel for large N.
func BuildCost(ref, cand snapshot.Snapshot, massWeight float64) (*CostMatrix, error) {
	if len(ref) != len(cand) {
		return nil, ErrSizeMismatch
	}
	n := len(ref)
	m := NewCostMatrix(n)

	dynamo.ParallelFor(n, parallelRows, func(start, end int) {
		for i := start; i < end; i++ {
			r := ref[i]
			row := m.Row(i)
			for j, c := range cand {
				row[j] = massWeight*math.Abs(r.Mass-c.Mass) + math.Hypot(r.X-c.X, r.Y-c.Y)
			}
		}
	})

	return m, nil
}
