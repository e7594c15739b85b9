package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/nbodyval/internal/metrics"
	"github.com/san-kum/nbodyval/internal/validate"
)

// WriteText writes one line per row and the terminal summary line. With
// color, outcome words are styled; the text is otherwise unchanged.
func WriteText(w io.Writer, r *validate.Report, color bool) error {
	for _, row := range r.Rows {
		line := row.Line()
		if color {
			line = colorLine(row, line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	summary := r.Summary()
	if color {
		if r.Passed {
			summary = PassStyle.Render(summary)
		} else {
			summary = FailStyle.Render(summary)
		}
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func colorLine(row validate.Row, line string) string {
	prefix := row.Label + ": "
	word := string(row.Outcome)
	if !strings.HasPrefix(line, prefix+word) {
		return line
	}
	rest := line[len(prefix)+len(word):]
	return prefix + outcomeStyle(row.Outcome).Render(word) + rest
}

// WriteTable writes every metric of every row in aligned columns. With color,
// the column header and error messages are styled.
func WriteTable(w io.Writer, r *validate.Report, color bool) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "session\t%s\n", orDash(r.ID))
	fmt.Fprintf(tw, "reference\t%s\n", r.Reference)
	fmt.Fprintf(tw, "particles\t%d\n", r.Particles)
	fmt.Fprintf(tw, "started\t%s\n", r.Started.Format(time.RFC3339))
	fmt.Fprintf(tw, "tolerant\t%t\n\n", r.Tolerant)

	fmt.Fprintln(tw, tableHeader)
	for _, row := range r.Rows {
		if row.Outcome == validate.Error {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t%g\t-\t-\t-\t-\t-\t%s\n",
				row.Label, row.Outcome, orDash(string(row.Regime)), row.Threshold, row.Elapsed.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3e\t%g\t%.3e\t%.3e\t%.3e\t%.3e\t%s\t%s\n",
			row.Label, row.Outcome, row.Regime, row.RMSE, row.Threshold, row.MaxDeviation, row.MeanDeviation,
			row.MomentumDrift, row.EnergyDrift, orDash(string(row.Key)), row.Elapsed.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// styled after alignment so escape codes do not skew column widths
	for _, line := range strings.SplitAfter(buf.String(), "\n") {
		if color && strings.HasPrefix(line, "SCENARIO") {
			line = HeaderStyle.Render(strings.TrimRight(line, " \n")) + "\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}

	for _, row := range r.Rows {
		if row.Outcome == validate.Error {
			line := fmt.Sprintf("%s: %s", row.Label, row.Message)
			if color {
				line = Subtle.Render(line)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, r.Summary())
	return err
}

const tableHeader = "SCENARIO\tOUTCOME\tREGIME\tRMSE\tTHRESHOLD\tMAX\tMEAN\tMOMENTUM\tENERGY\tKEY\tELAPSED"

// WriteSummary describes a single snapshot's conservation quantities.
func WriteSummary(w io.Writer, path string, s metrics.Summary, color bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	field := func(label, format string, args ...any) {
		value := fmt.Sprintf(format, args...)
		if color {
			label, value = MetricLabel.Render(label), MetricValue.Render(value)
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, value)
	}

	field("file", "%s", path)
	field("particles", "%d", s.Particles)
	field("distinct masses", "%d", s.DistinctMasses)
	field("total mass", "%.10g", s.TotalMass)
	field("momentum", "(%.6e, %.6e)", s.Momentum.X, s.Momentum.Y)
	field("angular momentum", "%.6e", s.AngularMomentum)
	field("kinetic energy", "%.10g", s.Energy.Kinetic)
	field("potential energy", "%.10g", s.Energy.Potential)
	field("total energy", "%.10g", s.Energy.Total)
	if s.DistinctMasses < s.Particles {
		field("note", "masses are not distinct, correspondence falls back to spatial ranking")
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
