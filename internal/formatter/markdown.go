package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/myschema/internal/schema"
)

// MarkdownFormatter formats a document as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the document in markdown format
func (f *MarkdownFormatter) Format(doc *schema.Document) error {
	title := "Database Schema"
	if doc.Database.Name != "" {
		title = "Database Schema: " + doc.Database.Name
	}
	_, _ = fmt.Fprintf(f.writer, "# %s\n\n", title)

	for _, obj := range doc.Objects {
		f.formatObject(obj)
	}
	return nil
}

func (f *MarkdownFormatter) formatObject(obj schema.Object) {
	if obj.IsView() {
		_, _ = fmt.Fprintf(f.writer, "## %s (view)\n\n", obj.Name)
	} else {
		_, _ = fmt.Fprintf(f.writer, "## %s\n\n", obj.Name)
	}

	if len(obj.Fields) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Columns")
		_, _ = fmt.Fprintln(f.writer)

		pk := primaryColumns(obj.Indexes)
		for _, field := range obj.Fields {
			constraintStr := f.formatConstraints(field, pk)
			if constraintStr != "" {
				_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", field.Name, field.Type, constraintStr)
			} else {
				_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", field.Name, field.Type)
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(obj.Indexes) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Idx")
		_, _ = fmt.Fprintln(f.writer)
		for _, ix := range obj.Indexes {
			if ix.Unique {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s), unique\n", ix.Name, strings.Join(indexColumnNames(ix), ", "))
			} else {
				_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", ix.Name, strings.Join(indexColumnNames(ix), ", "))
			}
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if obj.IsView() && obj.CreateSQL != "" {
		_, _ = fmt.Fprintf(f.writer, "```sql\n%s\n```\n\n", strings.TrimSpace(obj.CreateSQL))
	}
}

func (f *MarkdownFormatter) formatConstraints(field schema.Field, primaryKey []string) string {
	var constraints []string

	for _, pk := range primaryKey {
		if pk == field.Name {
			constraints = append(constraints, "PK")
			break
		}
	}

	if !field.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	switch field.DefaultKind {
	case schema.DefaultLiteral:
		constraints = append(constraints, fmt.Sprintf("DEFAULT '%s'", field.DefaultValue))
	case schema.DefaultExpression:
		constraints = append(constraints, "DEFAULT "+field.DefaultValue)
	}

	if field.GenerationExpression != "" {
		constraints = append(constraints, fmt.Sprintf("GENERATED(%s)", field.GenerationExpression))
	}

	if field.Comment != "" {
		constraints = append(constraints, field.Comment)
	}

	return strings.Join(constraints, ", ")
}
