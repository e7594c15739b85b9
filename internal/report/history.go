package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/san-kum/nbodyval/internal/storage"
	"github.com/san-kum/nbodyval/internal/validate"
)

// WriteHistory lists stored sessions, one per line.
func WriteHistory(w io.Writer, sessions []storage.SessionMetadata) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "no sessions recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tREFERENCE\tN\tSCENARIOS\tRESULT")
	for _, s := range sessions {
		result := validate.SomeFailed
		if s.Passed {
			result = validate.AllPassed
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID, s.Started.Local().Format(time.DateTime), s.Reference, s.Particles, s.Scenarios, result)
	}
	return tw.Flush()
}
