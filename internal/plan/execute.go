package plan

import (
	"context"
	"database/sql"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

// Executor runs a single statement. *sql.DB and *sql.Conn satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Execute runs stmts in order and stops at the first failure. It returns the
// number of statements that succeeded. Nothing is wrapped in a transaction,
// so a failure leaves the earlier statements applied.
func Execute(ctx context.Context, ex Executor, stmts []Statement, opts ...Option) (int, error) {
	o := buildOptions(opts)

	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return i, myerrors.Wrapf(err, myerrors.ErrTypeExecution, "interrupted before statement %d", i+1)
		}

		if _, err := ex.ExecContext(ctx, stmt.SQL); err != nil {
			o.logger.Error().
				Err(err).
				Int("statement", i+1).
				Str("object", stmt.Object).
				Str("sql", stmt.SQL).
				Msg("statement failed")
			return i, myerrors.Wrapf(err, myerrors.ErrTypeExecution, "statement %d (%s %s) failed: %s", i+1, stmt.Kind, stmt.Object, stmt.SQL)
		}

		o.logger.Info().
			Int("statement", i+1).
			Str("object", stmt.Object).
			Str("kind", string(stmt.Kind)).
			Msg(stmt.SQL)
	}

	return len(stmts), nil
}
