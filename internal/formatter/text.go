package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/myschema/internal/schema"
)

// TextFormatter formats a document as a compact text summary
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the document in compact text format
func (f *TextFormatter) Format(doc *schema.Document) error {
	if doc.Database.Name != "" {
		_, _ = fmt.Fprintf(f.writer, "DATABASE %s (%s, %s)\n\n", doc.Database.Name, doc.Database.DefaultCharacterSet, doc.Database.DefaultCollation)
	}

	for i, obj := range doc.Objects {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between objects
		}
		f.formatObject(obj)
	}
	return nil
}

func (f *TextFormatter) formatObject(obj schema.Object) {
	if obj.IsView() {
		_, _ = fmt.Fprintf(f.writer, "VIEW %s\n", obj.Name)
	} else {
		var options []string
		if pk := primaryColumns(obj.Indexes); len(pk) > 0 {
			options = append(options, "PK: "+strings.Join(pk, ", "))
		}
		if obj.Engine != "" {
			options = append(options, obj.Engine)
		}
		if obj.Collation != "" {
			options = append(options, obj.Collation)
		}

		optStr := ""
		if len(options) > 0 {
			optStr = " (" + strings.Join(options, "; ") + ")"
		}
		_, _ = fmt.Fprintf(f.writer, "TABLE %s%s\n", obj.Name, optStr)
	}

	for _, field := range obj.Fields {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatField(field))
	}

	var secondary []schema.Index
	for _, ix := range obj.Indexes {
		if !ix.IsPrimary() {
			secondary = append(secondary, ix)
		}
	}
	if len(secondary) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  INDEXES:")
		for _, ix := range secondary {
			unique := ""
			if ix.Unique {
				unique = " UNIQUE"
			}
			kind := ""
			if ix.Type != "" && ix.Type != schema.DefaultIndexType {
				kind = " " + ix.Type
			}
			_, _ = fmt.Fprintf(f.writer, "    %s (%s)%s%s\n", ix.Name, strings.Join(indexColumnNames(ix), ", "), unique, kind)
		}
	}
}

func formatField(field schema.Field) string {
	parts := []string{field.Name + ":", field.Type}

	if field.GenerationExpression != "" {
		parts = append(parts, "AS ("+field.GenerationExpression+")")
	}

	if !field.Nullable {
		parts = append(parts, "NOT NULL")
	}

	switch field.DefaultKind {
	case schema.DefaultLiteral:
		parts = append(parts, fmt.Sprintf("DEFAULT '%s'", field.DefaultValue))
	case schema.DefaultExpression:
		parts = append(parts, "DEFAULT "+field.DefaultValue)
	}

	if extra := strings.TrimSpace(field.Extra); extra != "" {
		parts = append(parts, extra)
	}

	if field.Comment != "" {
		parts = append(parts, "-- "+field.Comment)
	}

	return strings.Join(parts, " ")
}

func primaryColumns(indexes []schema.Index) []string {
	for _, ix := range indexes {
		if ix.IsPrimary() {
			return indexColumnNames(ix)
		}
	}
	return nil
}

func indexColumnNames(ix schema.Index) []string {
	names := make([]string, 0, len(ix.Columns))
	for _, c := range ix.Columns {
		if c.Length != nil {
			names = append(names, fmt.Sprintf("%s(%d)", c.Name, *c.Length))
			continue
		}
		names = append(names, c.Name)
	}
	return names
}
