package ddl

import (
	"strconv"
	"strings"

	"github.com/tordrt/myschema/internal/schema"
)

// IndexDefinition renders an index clause. withAdd prefixes ADD for use inside
// ALTER TABLE. An index without usable columns renders as "".
func IndexDefinition(ix schema.Index, withAdd bool) string {
	if ix.Name == "" {
		return ""
	}

	parts := make([]string, 0, len(ix.Columns))
	for _, col := range ix.Columns {
		if col.Name == "" {
			continue
		}
		part := QuoteIdentifier(col.Name)
		if col.Length != nil {
			part += "(" + strconv.Itoa(*col.Length) + ")"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return ""
	}
	columns := "(" + strings.Join(parts, ", ") + ")"

	prefix := ""
	if withAdd {
		prefix = "ADD "
	}

	if ix.IsPrimary() {
		return prefix + "PRIMARY KEY " + columns
	}

	switch strings.ToUpper(ix.Type) {
	case "FULLTEXT":
		return prefix + "FULLTEXT KEY " + QuoteIdentifier(ix.Name) + " " + columns
	case "SPATIAL":
		return prefix + "SPATIAL KEY " + QuoteIdentifier(ix.Name) + " " + columns
	}

	if ix.Unique {
		return prefix + "UNIQUE KEY " + QuoteIdentifier(ix.Name) + " " + columns
	}
	return prefix + "KEY " + QuoteIdentifier(ix.Name) + " " + columns
}

// DropIndex renders the ALTER TABLE operation removing an index
func DropIndex(name string) string {
	if name == schema.PrimaryIndexName {
		return "DROP PRIMARY KEY"
	}
	return "DROP INDEX " + QuoteIdentifier(name)
}
