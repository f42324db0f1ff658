package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/myschema/internal/plan"
)

// NoChanges is printed for an empty plan
const NoChanges = "No changes required."

// ReportFormatter writes a plan as a runnable SQL script
type ReportFormatter struct {
	writer io.Writer
}

// NewReportFormatter creates a new plan report formatter
func NewReportFormatter(w io.Writer) *ReportFormatter {
	return &ReportFormatter{writer: w}
}

// Format writes one commented statement per plan step
func (f *ReportFormatter) Format(stmts []plan.Statement) error {
	if len(stmts) == 0 {
		_, err := fmt.Fprintln(f.writer, NoChanges)
		return err
	}

	for i, stmt := range stmts {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(f.writer, "-- %d. %s %s\n%s;\n", i+1, stmt.Kind, stmt.Object, strings.TrimSpace(stmt.SQL)); err != nil {
			return err
		}
	}
	return nil
}
