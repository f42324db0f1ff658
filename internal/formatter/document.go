// Package formatter reads and writes schema documents in their file forms:
// JSON, YAML and the tabular layout (an XLSX workbook or CSV files), plus
// human-readable summaries.
package formatter

import (
	"os"
	"path/filepath"
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// Format is a document file format
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXLSX     Format = "xlsx"
	FormatTabular  Format = "csv"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// DetectFormat picks the document format from a path. Directories and .csv
// files hold the tabular form.
func DetectFormat(path string) (Format, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return FormatTabular, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".js":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatTabular, nil
	case ".txt":
		return FormatText, nil
	case ".md":
		return FormatMarkdown, nil
	default:
		return "", myerrors.Newf(myerrors.ErrTypeInputFormat, "unsupported file format: %s (use .json, .yaml, .xlsx, .csv or a directory)", path)
	}
}

// ParseFormat validates a --format flag value
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case FormatJSON, FormatYAML, FormatXLSX, FormatTabular, FormatText, FormatMarkdown:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", myerrors.Newf(myerrors.ErrTypeConfig, "invalid format: %s (must be json, yaml, xlsx, csv, text or markdown)", v)
	}
}

// ReadFile loads and normalizes the document at path
func ReadFile(path string, n schema.Normalizer) (*schema.Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatTabular:
		return ReadTabular(path, n)
	case FormatJSON, FormatYAML, FormatXLSX:
		file, err := os.Open(path)
		if err != nil {
			return nil, myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "failed to open %s", path)
		}
		defer func() { _ = file.Close() }()

		switch format {
		case FormatJSON:
			return ReadJSON(file, n)
		case FormatXLSX:
			return ReadXLSX(file, n)
		default:
			return ReadYAML(file, n)
		}
	default:
		return nil, myerrors.Newf(myerrors.ErrTypeInputFormat, "%s output cannot be read back: %s", format, path)
	}
}

// WriteFile writes doc to path in the given format. The tabular form writes
// a directory of CSV files unless path ends in .csv.
func WriteFile(doc *schema.Document, path string, format Format) error {
	if format == FormatTabular {
		return NewTabularFormatter(path).Format(doc)
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return myerrors.Newf(myerrors.ErrTypeConfig, "directory does not exist: %s", dir)
	}

	file, err := os.Create(path)
	if err != nil {
		return myerrors.Wrapf(err, myerrors.ErrTypeInternal, "failed to create output file")
	}
	defer func() { _ = file.Close() }()

	if err := Write(doc, file, format); err != nil {
		return err
	}
	return file.Close()
}
