package match

import "math"

// Solve returns the assignment minimising the total cost: row i is paired
// with column assign[i]. It is the O(N^3) shortest augmenting path variant of
// the Hungarian method with row and column potentials.
func Solve(cost *CostMatrix) ([]int, float64, error) {
	n := cost.Size()
	if n == 0 {
		return []int{}, 0, nil
	}
	if !cost.valid() {
		return nil, 0, ErrInvalidCost
	}

	// 1-based indexing; row 0 and column 0 are the virtual source.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)   // p[j] = row matched to column j
	way := make([]int, n+1) // way[j] = previous column on the augmenting path
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0

			row := cost.Row(i0 - 1)
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := row[j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		assign[p[j]-1] = j - 1
	}

	total := 0.0
	for i, j := range assign {
		total += cost.At(i, j)
	}
	return assign, total, nil
}
