package formatter

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

const maxSheetNameLength = 31

// XLSXFormatter writes the tabular form as a workbook, one worksheet per object
type XLSXFormatter struct {
	writer io.Writer
}

// NewXLSXFormatter creates a new workbook formatter
func NewXLSXFormatter(w io.Writer) *XLSXFormatter {
	return &XLSXFormatter{writer: w}
}

// Format writes the document as an .xlsx workbook
func (f *XLSXFormatter) Format(doc *schema.Document) error {
	book, err := newWorkbook(doc.Sheets())
	if err != nil {
		return err
	}
	defer func() { _ = book.Close() }()

	if err := book.Write(f.writer); err != nil {
		return myerrors.Wrap(err, myerrors.ErrTypeInternal, "unable to write workbook")
	}
	return nil
}

func newWorkbook(sheets []schema.Sheet) (*excelize.File, error) {
	book := excelize.NewFile()
	names := worksheetNames(sheets)

	for i, sheet := range sheets {
		name := names[i]
		if i == 0 {
			if err := book.SetSheetName(book.GetSheetName(0), name); err != nil {
				_ = book.Close()
				return nil, myerrors.Wrapf(err, myerrors.ErrTypeInternal, "invalid worksheet name %q", name)
			}
		} else if _, err := book.NewSheet(name); err != nil {
			_ = book.Close()
			return nil, myerrors.Wrapf(err, myerrors.ErrTypeInternal, "invalid worksheet name %q", name)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				_ = book.Close()
				return nil, myerrors.Wrap(err, myerrors.ErrTypeInternal, "worksheet too large")
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := book.SetSheetRow(name, cell, &values); err != nil {
				_ = book.Close()
				return nil, myerrors.Wrapf(err, myerrors.ErrTypeInternal, "failed to write worksheet %q", name)
			}
		}
	}

	return book, nil
}

// worksheetNames maps object names to worksheet names Excel accepts: at most
// 31 characters, none of []:*?/\, unique regardless of case. The table_name
// column keeps the real name, so shortening is lossless.
func worksheetNames(sheets []schema.Sheet) []string {
	names := make([]string, len(sheets))
	used := make(map[string]bool, len(sheets))

	for i, sheet := range sheets {
		base := strings.Map(func(r rune) rune {
			switch r {
			case '[', ']', ':', '*', '?', '/', '\\':
				return '_'
			}
			return r
		}, sheet.Name)
		base = strings.Trim(strings.TrimSpace(base), "'")
		if base == "" {
			base = "Sheet"
		}
		base = truncateRunes(base, maxSheetNameLength)

		candidate := base
		for n := 1; used[strings.ToLower(candidate)]; n++ {
			suffix := "_" + strconv.Itoa(n)
			candidate = truncateRunes(base, max(1, maxSheetNameLength-len(suffix))) + suffix
		}

		used[strings.ToLower(candidate)] = true
		names[i] = candidate
	}
	return names
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ReadXLSX loads a workbook. Worksheets are read in workbook order and each
// worksheet name is the default object name for its rows.
func ReadXLSX(r io.Reader, n schema.Normalizer) (*schema.Document, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeInputFormat, "invalid XLSX workbook")
	}
	defer func() { _ = book.Close() }()

	var sheets []schema.Sheet
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "failed to read worksheet %q", name)
		}
		sheets = append(sheets, schema.Sheet{Name: name, Rows: rows})
	}

	return n.NormalizeSheets(sheets)
}
