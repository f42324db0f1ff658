// Package ddl renders canonical schema objects into MySQL DDL fragments and
// computes the signatures used to detect material differences.
package ddl

import (
	"regexp"
	"strings"
)

var safeIdentifier = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// QuoteIdentifier wraps s in backticks, doubling embedded backticks
func QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `''`)

// QuoteString wraps s in single quotes. Backslashes are escaped and single
// quotes doubled, so the literal reads back unchanged unless the server runs
// with NO_BACKSLASH_ESCAPES.
func QuoteString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

// IsSafeIdentifier reports whether s may be interpolated bare, as for
// ENGINE=, COLLATE= and CHARACTER SET tokens
func IsSafeIdentifier(s string) bool {
	return safeIdentifier.MatchString(s)
}
