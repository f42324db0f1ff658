package formatter

import (
	"io"

	"gopkg.in/yaml.v3"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// YAMLFormatter writes the record form as YAML
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the document
func (f *YAMLFormatter) Format(doc *schema.Document) error {
	enc := yaml.NewEncoder(f.writer)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return myerrors.Wrap(err, myerrors.ErrTypeInternal, "unable to encode YAML output")
	}
	return enc.Close()
}

// ReadYAML decodes and normalizes a YAML document
func ReadYAML(r io.Reader, n schema.Normalizer) (*schema.Document, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, myerrors.New(myerrors.ErrTypeInputFormat, "empty YAML input")
		}
		return nil, myerrors.Wrap(err, myerrors.ErrTypeInputFormat, "invalid YAML input")
	}
	return n.Normalize(raw)
}
