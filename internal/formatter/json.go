package formatter

import (
	"encoding/json"
	"io"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// JSONFormatter writes the record form as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes the document
func (f *JSONFormatter) Format(doc *schema.Document) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return myerrors.Wrap(err, myerrors.ErrTypeInternal, "unable to encode JSON output")
	}
	return nil
}

// ReadJSON decodes and normalizes a JSON document
func ReadJSON(r io.Reader, n schema.Normalizer) (*schema.Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeInputFormat, "invalid JSON input")
	}
	return n.Normalize(raw)
}
