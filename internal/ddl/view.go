package ddl

import (
	"regexp"
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

var (
	definerClause   = regexp.MustCompile("(?i)\\s+DEFINER=`[^`]+`@`[^`]+`")
	createOrReplace = regexp.MustCompile(`(?i)^CREATE\s+OR\s+REPLACE\s+`)
	createPrefix    = regexp.MustCompile(`(?i)^CREATE\s+`)
)

// PrepareViewSQL rewrites a stored view definition so it can be replayed on
// another server: the DEFINER clause is removed and the statement is forced
// to CREATE OR REPLACE.
func PrepareViewSQL(createSQL, name string) (string, error) {
	sql := strings.TrimSpace(createSQL)
	if sql == "" {
		return "", myerrors.Newf(myerrors.ErrTypeMissingViewDefinition, "view %q has no create_sql", name)
	}

	sql = strings.TrimRight(sql, ";")
	sql = definerClause.ReplaceAllString(sql, "")

	if !createOrReplace.MatchString(sql) {
		if loc := createPrefix.FindStringIndex(sql); loc != nil {
			sql = "CREATE OR REPLACE " + sql[loc[1]:]
		}
	}
	if !createPrefix.MatchString(sql) {
		return "", myerrors.Newf(myerrors.ErrTypeInputFormat, "invalid create_sql for view %q", name)
	}
	return sql, nil
}
