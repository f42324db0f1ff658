package ddl

import (
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// CreateTable returns the statement creating o. A stored create_sql is used
// verbatim (minus a trailing semicolon); otherwise the statement is
// synthesized from fields and indexes.
func CreateTable(o schema.Object) (string, error) {
	if createSQL := strings.TrimSpace(o.CreateSQL); createSQL != "" {
		return strings.TrimRight(createSQL, ";"), nil
	}

	if len(o.Fields) == 0 {
		return "", myerrors.Newf(myerrors.ErrTypeMissingTableDefinition, "table %q has no fields and no create_sql", o.Name)
	}

	fields := append([]schema.Field(nil), o.Fields...)
	schema.SortFields(fields)

	lines := make([]string, 0, len(fields)+len(o.Indexes))
	for _, f := range fields {
		def, err := ColumnDefinition(f)
		if err != nil {
			return "", myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "table %q", o.Name)
		}
		lines = append(lines, "  "+def)
	}

	indexes := append([]schema.Index(nil), o.Indexes...)
	schema.SortIndexes(indexes)
	for _, ix := range indexes {
		if def := IndexDefinition(ix, false); def != "" {
			lines = append(lines, "  "+def)
		}
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(QuoteIdentifier(o.Name))
	b.WriteString(" (\n")
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")

	if o.Engine != "" && IsSafeIdentifier(o.Engine) {
		b.WriteString(" ENGINE=")
		b.WriteString(o.Engine)
	}
	if o.Collation != "" && IsSafeIdentifier(o.Collation) {
		b.WriteString(" COLLATE=")
		b.WriteString(o.Collation)
	}
	return b.String(), nil
}

// CreateDatabase returns the CREATE DATABASE statement for db. Character set
// and collation fall back to the defaults when they are not safe identifiers.
func CreateDatabase(db schema.Database) string {
	charset := db.DefaultCharacterSet
	if !IsSafeIdentifier(charset) {
		charset = schema.DefaultCharacterSet
	}
	collation := db.DefaultCollation
	if !IsSafeIdentifier(collation) {
		collation = schema.DefaultCollation
	}
	return "CREATE DATABASE " + QuoteIdentifier(db.Name) + " CHARACTER SET " + charset + " COLLATE " + collation
}
