package compute

import (
	"fmt"
	"math"
	"runtime"
	"sync"
)

// Forces computes accelerations for positions laid out x0, y0, x1, y1, ...
type Forces interface {
	Name() string
	Accelerations(pos, masses []float64, g, softening float64) (ax, ay []float64)
}

// Pairwise accumulates softened accelerations into ax and ay, one pass per pair.
func Pairwise(pos, masses []float64, g, eps float64, ax, ay []float64) {
	n := len(masses)
	eps2 := eps * eps

	for i := 0; i < n; i++ {
		xi, yi := pos[i*2], pos[i*2+1]

		for j := i + 1; j < n; j++ {
			rx := pos[j*2] - xi
			ry := pos[j*2+1] - yi
			r2 := rx*rx + ry*ry + eps2

			rInv := 1.0 / math.Sqrt(r2)
			r3Inv := rInv * rInv * rInv

			fij := g * masses[j] * r3Inv
			ax[i] += fij * rx
			ay[i] += fij * ry

			fji := g * masses[i] * r3Inv
			ax[j] -= fji * rx
			ay[j] -= fji * ry
		}
	}
}

// parallelMin is the body count below which CPU runs Pairwise.
const parallelMin = 16

type CPU struct {
	workers int
}

// NewCPU creates a row-parallel backend; workers <= 0 uses every CPU.
func NewCPU(workers int) *CPU {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPU{workers: workers}
}

func (c *CPU) Name() string { return fmt.Sprintf("cpu/%d", c.workers) }

func (c *CPU) Accelerations(pos, masses []float64, g, softening float64) ([]float64, []float64) {
	n := len(masses)
	ax := make([]float64, n)
	ay := make([]float64, n)

	if n < parallelMin || c.workers == 1 {
		Pairwise(pos, masses, g, softening, ax, ay)
		return ax, ay
	}

	c.rows(pos, masses, g, softening, ax, ay)
	return ax, ay
}

func (c *CPU) rows(pos, masses []float64, g, eps float64, ax, ay []float64) {
	n := len(masses)
	eps2 := eps * eps

	var wg sync.WaitGroup
	chunkSize := (n + c.workers - 1) / c.workers

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				xi, yi := pos[i*2], pos[i*2+1]
				var sx, sy float64

				for j := 0; j < n; j++ {
					if i == j {
						continue
					}

					rx := pos[j*2] - xi
					ry := pos[j*2+1] - yi
					r2 := rx*rx + ry*ry + eps2

					rInv := 1.0 / math.Sqrt(r2)
					r3Inv := rInv * rInv * rInv

					f := g * masses[j] * r3Inv
					sx += f * rx
					sy += f * ry
				}
				ax[i], ay[i] = sx, sy
			}
		}(start, end)
	}

	wg.Wait()
}
