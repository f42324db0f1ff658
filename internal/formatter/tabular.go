package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

const csvExt = ".csv"

// TabularFormatter writes the tabular form: a directory holding one CSV file
// per object, or a single CSV file when the path ends in .csv
type TabularFormatter struct {
	Path string
}

// NewTabularFormatter creates a new tabular formatter
func NewTabularFormatter(path string) *TabularFormatter {
	return &TabularFormatter{Path: path}
}

// Format writes the document's sheets
func (f *TabularFormatter) Format(doc *schema.Document) error {
	sheets := doc.Sheets()

	if strings.EqualFold(filepath.Ext(f.Path), csvExt) {
		return f.writeFile(f.Path, mergeSheets(sheets))
	}

	if err := os.MkdirAll(f.Path, 0755); err != nil {
		return myerrors.Wrap(err, myerrors.ErrTypeInternal, "failed to create output directory")
	}

	used := make(map[string]int, len(sheets))
	for _, sheet := range sheets {
		name := sheetFileName(sheet.Name)
		used[name]++
		if used[name] > 1 {
			name = fmt.Sprintf("%s_%d", name, used[name])
		}

		if err := f.writeFile(filepath.Join(f.Path, name+csvExt), sheet); err != nil {
			return fmt.Errorf("failed to write sheet for %s: %w", sheet.Name, err)
		}
	}

	return nil
}

func (f *TabularFormatter) writeFile(path string, sheet schema.Sheet) error {
	file, err := os.Create(path)
	if err != nil {
		return myerrors.Wrap(err, myerrors.ErrTypeInternal, "failed to create output file")
	}
	defer func() { _ = file.Close() }()

	if err := writeCSV(file, sheet); err != nil {
		return err
	}
	return file.Close()
}

func writeCSV(w io.Writer, sheet schema.Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(sheet.Rows); err != nil {
		return myerrors.Wrap(err, myerrors.ErrTypeInternal, "unable to write CSV output")
	}
	return nil
}

// mergeSheets stacks every sheet under a single header. Rows carry their
// table_name so objects stay separable.
func mergeSheets(sheets []schema.Sheet) schema.Sheet {
	merged := schema.Sheet{Name: "schema", Rows: [][]string{append([]string(nil), schema.TabularHeader...)}}
	for _, sheet := range sheets {
		if len(sheet.Rows) > 1 {
			merged.Rows = append(merged.Rows, sheet.Rows[1:]...)
		}
	}
	return merged
}

// sheetFileName keeps object names usable as file names
func sheetFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "sheet"
	}
	return name
}

// ReadTabular loads a CSV file or a directory of CSV files. Files in a
// directory are read in name order; each file name is the default object
// name for its rows.
func ReadTabular(path string, n schema.Normalizer) (*schema.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "failed to open %s", path)
	}

	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "failed to read %s", path)
		}
		files = files[:0]
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), csvExt) {
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(files)
	}

	sheets := make([]schema.Sheet, 0, len(files))
	for _, file := range files {
		sheet, err := readSheet(file)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}

	return n.NormalizeSheets(sheets)
}

func readSheet(path string) (schema.Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return schema.Sheet{}, myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "failed to open %s", path)
	}
	defer func() { _ = file.Close() }()

	rows, err := ReadCSV(file)
	if err != nil {
		return schema.Sheet{}, myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "invalid CSV in %s", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return schema.Sheet{Name: name, Rows: rows}, nil
}

// ReadCSV reads all records, tolerating ragged rows and a UTF-8 byte order
// mark left by spreadsheet exports
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
