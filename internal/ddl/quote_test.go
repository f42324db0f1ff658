package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"users", "`users`"},
		{"order items", "`order items`"},
		{"we`ird", "`we``ird`"},
		{"", "``"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteIdentifier(tt.input))
		})
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "'plain'"},
		{"it's", "'it''s'"},
		{"'; DROP TABLE x; --", "'''; DROP TABLE x; --'"},
		{`C:\temp`, `'C:\\temp'`},
		{`x\', DROP COLUMN id -- `, `'x\\'', DROP COLUMN id -- '`},
		{`\`, `'\\'`},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, QuoteString(tt.input))
		})
	}
}

func TestIsSafeIdentifier(t *testing.T) {
	assert.True(t, IsSafeIdentifier("InnoDB"))
	assert.True(t, IsSafeIdentifier("utf8mb4_0900_ai_ci"))
	assert.False(t, IsSafeIdentifier(""))
	assert.False(t, IsSafeIdentifier("Foo; DROP TABLE x"))
	assert.False(t, IsSafeIdentifier("utf8mb4-bin"))
	assert.False(t, IsSafeIdentifier("InnoDB\n"))
}
