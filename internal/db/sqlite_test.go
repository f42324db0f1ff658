package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

func TestSQLiteReadOnlyDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"shop.db", "file:shop.db?mode=ro"},
		{"/var/lib/shop.db", "file:/var/lib/shop.db?mode=ro"},
		{"file:shop.db", "file:shop.db?mode=ro"},
		{"shop.db?_busy_timeout=500", "file:shop.db?_busy_timeout=500&mode=ro"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteReadOnlyDSN(tt.path))
		})
	}
}

func TestNewSQLiteClientReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shop.db")

	_, err := NewSQLiteClient(ctx, path, true)
	require.Error(t, err)
	assert.True(t, myerrors.IsType(err, myerrors.ErrTypeConnection))
	assert.NoFileExists(t, path)

	rw, err := NewSQLiteClient(ctx, path, false)
	require.NoError(t, err)
	_, err = rw.GetDB().ExecContext(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := NewSQLiteClient(ctx, path, true)
	require.NoError(t, err)
	defer func() { _ = ro.Close() }()

	var n int
	require.NoError(t, ro.GetDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'users'").Scan(&n))
	assert.Equal(t, 1, n)

	_, err = ro.GetDB().ExecContext(ctx, "CREATE TABLE orders (id INTEGER)")
	assert.Error(t, err)
}
