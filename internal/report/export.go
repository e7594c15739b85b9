package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/nbodyval/internal/validate"
)

// ExportData is the JSON form of a session report.
type ExportData struct {
	*validate.Report
	Summary string                   `json:"summary"`
	Counts  map[validate.Outcome]int `json:"counts"`
}

func WriteJSON(w io.Writer, r *validate.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Report: r, Summary: r.Summary(), Counts: r.Counts()})
}

var csvHeader = []string{
	"label", "outcome", "regime", "threshold", "rmse", "max_deviation", "mean_deviation",
	"momentum_drift", "energy_drift", "energy_bound", "key", "elapsed_ms", "message",
}

func WriteCSV(w io.Writer, r *validate.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range r.Rows {
		record := []string{
			row.Label,
			string(row.Outcome),
			string(row.Regime),
			formatFloat(row.Threshold),
			formatFloat(row.RMSE),
			formatFloat(row.MaxDeviation),
			formatFloat(row.MeanDeviation),
			formatFloat(row.MomentumDrift),
			formatFloat(row.EnergyDrift),
			formatFloat(row.EnergyBound),
			string(row.Key),
			strconv.FormatInt(row.Elapsed.Milliseconds(), 10),
			row.Message,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Export writes r to path, choosing JSON or CSV from the extension.
func Export(path string, r *validate.Report) error {
	var write func(io.Writer, *validate.Report) error
	switch {
	case strings.HasSuffix(path, ".json"):
		write = WriteJSON
	case strings.HasSuffix(path, ".csv"):
		write = WriteCSV
	default:
		return fmt.Errorf("unsupported export format: %s", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file, r); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
