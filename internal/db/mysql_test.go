package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

func TestParseDatabaseName(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{"tcp with params", "root:pw@tcp(127.0.0.1:3306)/shop?parseTime=true", "shop", false},
		{"no credentials", "tcp(localhost:3306)/inventory", "inventory", false},
		{"server level", "root:pw@tcp(127.0.0.1:3306)/", "", true},
		{"malformed", "root:pw@tcp(127.0.0.1:3306", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatabaseName(tt.dsn)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, myerrors.IsType(err, myerrors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithDatabase(t *testing.T) {
	dsn, err := WithDatabase("root:pw@tcp(127.0.0.1:3306)/?parseTime=true", "shop")
	require.NoError(t, err)

	name, err := ParseDatabaseName(dsn)
	require.NoError(t, err)
	assert.Equal(t, "shop", name)
	assert.Contains(t, dsn, "parseTime=true")

	server, err := WithDatabase(dsn, "")
	require.NoError(t, err)
	_, err = ParseDatabaseName(server)
	require.Error(t, err)
}
