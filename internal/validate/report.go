package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/nbodyval/internal/match"
)

// Row is the outcome of one scenario.
type Row struct {
	Label         string        `json:"label"`
	Outcome       Outcome       `json:"outcome"`
	Regime        Regime        `json:"regime"`
	Threshold     float64       `json:"threshold"`
	RMSE          float64       `json:"rmse"`
	MaxDeviation  float64       `json:"max_deviation"`
	MeanDeviation float64       `json:"mean_deviation"`
	MomentumDrift float64       `json:"momentum_drift"`
	EnergyDrift   float64       `json:"energy_drift"`
	EnergyBound   float64       `json:"energy_bound,omitempty"`
	Key           match.Key     `json:"key,omitempty"`
	Message       string        `json:"message,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
}

// MarshalJSON encodes non-finite metrics as the strings "NaN", "+Inf" and
// "-Inf", which encoding/json would otherwise reject.
func (r Row) MarshalJSON() ([]byte, error) {
	type plain Row
	return json.Marshal(struct {
		plain
		Threshold     jsonFloat `json:"threshold"`
		RMSE          jsonFloat `json:"rmse"`
		MaxDeviation  jsonFloat `json:"max_deviation"`
		MeanDeviation jsonFloat `json:"mean_deviation"`
		MomentumDrift jsonFloat `json:"momentum_drift"`
		EnergyDrift   jsonFloat `json:"energy_drift"`
		EnergyBound   jsonFloat `json:"energy_bound,omitempty"`
	}{
		plain:         plain(r),
		Threshold:     jsonFloat(r.Threshold),
		RMSE:          jsonFloat(r.RMSE),
		MaxDeviation:  jsonFloat(r.MaxDeviation),
		MeanDeviation: jsonFloat(r.MeanDeviation),
		MomentumDrift: jsonFloat(r.MomentumDrift),
		EnergyDrift:   jsonFloat(r.EnergyDrift),
		EnergyBound:   jsonFloat(r.EnergyBound),
	})
}

type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.AppendQuote(nil, strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
	return json.Marshal(v)
}

// Line renders r as a report line, e.g. "theta=0.5: PASS deviation=1.234e-03 threshold=0.05".
func (r Row) Line() string {
	if r.Outcome == Error {
		return fmt.Sprintf("%s: ERROR %s", r.Label, r.Message)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s deviation=%.3e threshold=%g", r.Label, r.Outcome, r.RMSE, r.Threshold)
	if r.EnergyBound > 0 {
		fmt.Fprintf(&b, " energy_drift=%.3e bound=%g", r.EnergyDrift, r.EnergyBound)
	}
	if r.Key == match.KeySpatial {
		b.WriteString(" key=spatial")
	}
	return b.String()
}

// Report is the terminal result of a session.
type Report struct {
	ID        string    `json:"id,omitempty"`
	Reference string    `json:"reference"`
	Particles int       `json:"particles"`
	Tolerant  bool      `json:"approximate_tolerant"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Rows      []Row     `json:"rows"`
	Passed    bool      `json:"passed"`
}

const (
	AllPassed  = "ALL PASSED"
	SomeFailed = "SOME FAILED"
)

// Summary is the session-terminal line.
func (r *Report) Summary() string {
	if r.Passed {
		return AllPassed
	}
	return SomeFailed
}

// Lines returns every row line followed by the summary.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		lines = append(lines, row.Line())
	}
	return append(lines, r.Summary())
}

// Counts tallies rows by outcome.
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, row := range r.Rows {
		counts[row.Outcome]++
	}
	return counts
}
