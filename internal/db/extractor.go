package db

import (
	"context"
	"regexp"
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// Extractor dumps a whole database into a Document
type Extractor interface {
	ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error)
}

var (
	_ Extractor = (*MySQLExtractor)(nil)
	_ Extractor = (*PostgresExtractor)(nil)
	_ Extractor = (*SQLiteExtractor)(nil)

	quotedLiteral  = regexp.MustCompile(`^'((?:[^']|'')*)'(?:::[\w\s\[\]]+)?$`)
	numericLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// selectTables keeps the rows named in requested, in the order the database
// returned them. An empty request keeps everything.
func selectTables[T any](rows []T, requested []string, name func(T) string) ([]T, error) {
	if len(requested) == 0 {
		return rows, nil
	}

	wanted := make(map[string]bool, len(requested))
	for _, t := range requested {
		wanted[t] = true
	}

	var out []T
	for _, row := range rows {
		if wanted[name(row)] {
			out = append(out, row)
			delete(wanted, name(row))
		}
	}
	for _, t := range requested {
		if wanted[t] {
			return nil, myerrors.Newf(myerrors.ErrTypeIntrospection, "table %q not found", t)
		}
	}
	return out, nil
}

// portableDefault classifies a default expression as reported by PostgreSQL
// or SQLite. Quoted strings and plain numbers are literals; anything else is
// kept as an expression.
func portableDefault(raw *string, nullable bool) (schema.DefaultKind, string) {
	if raw == nil {
		if nullable {
			return schema.DefaultNull, ""
		}
		return schema.DefaultNone, ""
	}

	value := strings.TrimSpace(*raw)
	if strings.EqualFold(value, "NULL") || strings.HasPrefix(strings.ToUpper(value), "NULL::") {
		return schema.DefaultNull, ""
	}
	if m := quotedLiteral.FindStringSubmatch(value); m != nil {
		return schema.DefaultLiteral, strings.ReplaceAll(m[1], "''", "'")
	}
	if numericLiteral.MatchString(value) {
		return schema.DefaultLiteral, value
	}
	if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
		return schema.DefaultExpression, strings.ToUpper(value)
	}
	return schema.DefaultExpression, value
}
