package ddl

import (
	"regexp"
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

var defaultGenerated = regexp.MustCompile(`(?i)\bDEFAULT_GENERATED\b`)

// ColumnDefinition renders the full declaration of a column as used by
// CREATE TABLE, ADD COLUMN and MODIFY COLUMN
func ColumnDefinition(f schema.Field) (string, error) {
	fieldType := strings.TrimSpace(f.Type)
	if f.Name == "" || fieldType == "" {
		return "", myerrors.Newf(myerrors.ErrTypeInputFormat, "invalid field definition %q", f.Name)
	}

	var b strings.Builder
	b.WriteString(QuoteIdentifier(f.Name))
	b.WriteString(" ")
	b.WriteString(fieldType)

	extra := strings.TrimSpace(f.Extra)

	if expr := strings.TrimSpace(f.GenerationExpression); expr != "" {
		b.WriteString(" AS (")
		b.WriteString(expr)
		b.WriteString(")")
		if strings.Contains(strings.ToUpper(extra), "STORED") {
			b.WriteString(" STORED")
		} else {
			b.WriteString(" VIRTUAL")
		}
		if f.Comment != "" {
			b.WriteString(" COMMENT ")
			b.WriteString(QuoteString(f.Comment))
		}
		return b.String(), nil
	}

	if collation := strings.TrimSpace(f.Collation); collation != "" && IsSafeIdentifier(collation) {
		b.WriteString(" COLLATE ")
		b.WriteString(collation)
	}

	if f.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}

	switch schema.DefaultKind(strings.ToLower(string(f.DefaultKind))) {
	case schema.DefaultNull:
		b.WriteString(" DEFAULT NULL")
	case schema.DefaultLiteral:
		b.WriteString(" DEFAULT ")
		b.WriteString(QuoteString(f.DefaultValue))
	case schema.DefaultExpression:
		b.WriteString(" DEFAULT ")
		b.WriteString(f.DefaultValue)
	}

	if cleaned := StripDefaultGenerated(extra); cleaned != "" {
		b.WriteString(" ")
		b.WriteString(cleaned)
	}

	if f.Comment != "" {
		b.WriteString(" COMMENT ")
		b.WriteString(QuoteString(f.Comment))
	}

	return b.String(), nil
}

// StripDefaultGenerated removes the DEFAULT_GENERATED marker that MySQL 8
// reports in EXTRA but does not accept in a column declaration
func StripDefaultGenerated(extra string) string {
	return strings.Join(strings.Fields(defaultGenerated.ReplaceAllString(extra, "")), " ")
}
