package ddl

import (
	"strconv"
	"strings"

	"github.com/tordrt/myschema/internal/schema"
)

// FieldSignature fingerprints the parts of a column that a MODIFY COLUMN would
// change. Identifiers and keywords compare case-insensitively; default values,
// comments and generation expressions compare exactly.
func FieldSignature(f schema.Field) string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(f.Name)),
		strings.ToLower(strings.Join(strings.Fields(f.Type), " ")),
		boolFlag(f.Nullable),
		strings.ToLower(strings.TrimSpace(string(f.DefaultKind))),
		f.DefaultValue,
		strings.ToLower(StripDefaultGenerated(f.Extra)),
		strings.ToLower(strings.TrimSpace(f.Collation)),
		f.Comment,
		f.GenerationExpression,
	}, "|")
}

// IndexSignature fingerprints name, uniqueness, type and the ordered
// column:length pairs of an index. PRIMARY is always unique.
func IndexSignature(ix schema.Index) string {
	columns := make([]string, 0, len(ix.Columns))
	for _, col := range ix.Columns {
		length := ""
		if col.Length != nil {
			length = strconv.Itoa(*col.Length)
		}
		columns = append(columns, strings.ToLower(col.Name)+":"+length)
	}

	indexType := strings.ToUpper(strings.TrimSpace(ix.Type))
	if indexType == "" {
		indexType = schema.DefaultIndexType
	}

	return strings.Join([]string{
		strings.ToUpper(ix.Name),
		boolFlag(ix.Unique || ix.IsPrimary()),
		indexType,
		strings.Join(columns, ","),
	}, "|")
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
