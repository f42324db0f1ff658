package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

// PostgresClient holds a single pgx connection used for introspection
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient connects with a read-only session. Dumps never write to
// PostgreSQL, so every transaction defaults to READ ONLY.
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConfig, "invalid postgres connection string")
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = map[string]string{}
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = "myschema"
	}
	cfg.RuntimeParams["default_transaction_read_only"] = "on"

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, myerrors.Wrapf(err, myerrors.ErrTypeConnection, "failed to connect to %s:%d", cfg.Host, cfg.Port)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, myerrors.Wrap(err, myerrors.ErrTypeConnection, "failed to ping database")
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}
