package formatter

import (
	"io"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// Write renders doc to w. The tabular form is written as a single CSV stream.
func Write(doc *schema.Document, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(w).Format(doc)
	case FormatYAML:
		return NewYAMLFormatter(w).Format(doc)
	case FormatXLSX:
		return NewXLSXFormatter(w).Format(doc)
	case FormatTabular:
		return writeCSV(w, mergeSheets(doc.Sheets()))
	case FormatText:
		return NewTextFormatter(w).Format(doc)
	case FormatMarkdown:
		return NewMarkdownFormatter(w).Format(doc)
	default:
		return myerrors.Newf(myerrors.ErrTypeConfig, "invalid format: %s", format)
	}
}
