package db

import (
	"context"
	"database/sql"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

// SQLiteClient wraps a database/sql handle on a SQLite file
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens the SQLite file at path. A read-only client never
// creates the file and rejects writes; dumps use one.
func NewSQLiteClient(ctx context.Context, path string, readOnly bool) (*SQLiteClient, error) {
	dsn := path
	if readOnly {
		file := path
		if i := strings.IndexByte(file, '?'); i >= 0 {
			file = file[:i]
		}
		file = strings.TrimPrefix(file, "file:")
		if file != ":memory:" {
			if _, err := os.Stat(file); err != nil {
				return nil, myerrors.Wrapf(err, myerrors.ErrTypeConnection, "sqlite database %s is not readable", file)
			}
		}
		dsn = sqliteReadOnlyDSN(path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConnection, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConnection, "failed to ping database")
	}

	return &SQLiteClient{db: db}, nil
}

// sqliteReadOnlyDSN turns a path into a file: URI opened with mode=ro
func sqliteReadOnlyDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	if strings.Contains(path, "?") {
		return path + "&mode=ro"
	}
	return path + "?mode=ro"
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
