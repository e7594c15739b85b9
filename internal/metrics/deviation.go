package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// ErrLengthMismatch indicates the two snapshots are not index-aligned.
var ErrLengthMismatch = errors.New("metrics: snapshots differ in length")

// Deviation summarises per-pair position error between a reference and a
// candidate already permuted into reference order.
type Deviation struct {
	RMSE float64 `json:"rmse"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// PositionRMSE is sqrt(mean |r_ref[i] - r_cand[i]|^2) over matched pairs.
func PositionRMSE(ref, matched snapshot.Snapshot) (float64, error) {
	d, err := Deviations(ref, matched)
	if err != nil {
		return 0, err
	}
	return d.RMSE, nil
}

func Deviations(ref, matched snapshot.Snapshot) (Deviation, error) {
	if len(ref) != len(matched) {
		return Deviation{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(ref), len(matched))
	}
	if len(ref) == 0 {
		return Deviation{}, nil
	}

	var sumSq, sum, maxDev float64
	for i := range ref {
		dx := ref[i].X - matched[i].X
		dy := ref[i].Y - matched[i].Y
		d2 := dx*dx + dy*dy
		d := math.Sqrt(d2)

		sumSq += d2
		sum += d
		maxDev = math.Max(maxDev, d)
	}

	n := float64(len(ref))
	return Deviation{
		RMSE: math.Sqrt(sumSq / n),
		Max:  maxDev,
		Mean: sum / n,
	}, nil
}
