package db

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/myschema/internal/ddl"
	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient opens and pings a MySQL connection. The DSN may omit the
// database name to connect at server level.
func NewMySQLClient(ctx context.Context, dsn string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConnection, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConnection, "failed to ping database")
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// ExecContext runs one statement; it lets the client act as a plan executor
func (c *MySQLClient) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// DatabaseExists reports whether the schema name exists on the server
func (c *MySQLClient) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ? LIMIT 1`,
		name,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to look up database %q", name)
	}
	return true, nil
}

// CreateDatabase creates db with its character set and collation
func (c *MySQLClient) CreateDatabase(ctx context.Context, db schema.Database) error {
	if _, err := c.db.ExecContext(ctx, ddl.CreateDatabase(db)); err != nil {
		return myerrors.Wrapf(err, myerrors.ErrTypeExecution, "failed to create database %q", db.Name)
	}
	return nil
}

// ParseDatabaseName returns the database named in a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", myerrors.Wrap(err, myerrors.ErrTypeConfig, "invalid MySQL DSN")
	}
	if cfg.DBName == "" {
		return "", myerrors.New(myerrors.ErrTypeConfig, "no database name in MySQL DSN")
	}
	return cfg.DBName, nil
}

// WithDatabase rewrites dsn to select database. An empty name yields a
// server-level DSN.
func WithDatabase(dsn, database string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", myerrors.Wrap(err, myerrors.ErrTypeConfig, "invalid MySQL DSN")
	}
	cfg.DBName = database
	return cfg.FormatDSN(), nil
}
