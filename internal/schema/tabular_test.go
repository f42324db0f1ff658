package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSheets(t *testing.T) {
	sheets := []Sheet{
		{
			Name: "Sheet1",
			Rows: [][]string{
				{"Kind", "Table Name", "Field Name", "Position", "Column Type", "Nullable", "Default Kind", "Default Value", "Extra", "Key", "Collation", "Comment", "Generation Expression", "Indexes JSON", "Table Engine", "Table Collation", "Create SQL"},
				{"table", "orders", "id", "1", "int", "NO", "", "", "auto_increment", "PRI", "", "", "", `[{"name":"PRIMARY","unique":true,"type":"BTREE","columns":[{"name":"id","length":null}]}]`, "InnoDB", "utf8mb4_bin", ""},
				{"", "", "", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
				{"table", "orders", "status", "", "varchar(16)", "", "", "new", "", "", "", "", "", "", "MyISAM", "latin1_bin", ""},
				{"table", "orders", "note", "", "", "maybe", "", "", "", "", "", "", "", "", "", "", ""},
			},
		},
		{
			Name: "v_orders",
			Rows: [][]string{
				{"kind", "table_name", "field_name", "create_sql"},
				{"view", "", "", "CREATE VIEW v_orders AS SELECT id FROM orders"},
			},
		},
		{
			Name: "empty",
			Rows: [][]string{
				{"kind", "table_name", "field_name"},
				{"table", "", ""},
			},
		},
		{Name: "no header", Rows: [][]string{{"!!", "??"}, {"a", "b"}}},
		{Name: "nothing"},
	}

	doc, err := NormalizeSheets(sheets)
	require.NoError(t, err)
	require.Len(t, doc.Objects, 2)

	orders := doc.Objects[0]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, ObjectTable, orders.Type)
	assert.Equal(t, "InnoDB", orders.Engine)
	assert.Equal(t, "utf8mb4_bin", orders.Collation)
	require.Len(t, orders.Indexes, 1)
	assert.Equal(t, "PRIMARY", orders.Indexes[0].Name)

	assert.Equal(t, []Field{
		{Name: "id", Position: 1, Type: "int", Nullable: false, DefaultKind: DefaultNone, Extra: "auto_increment", Key: "PRI"},
		{Name: "status", Position: 2, Type: "varchar(16)", Nullable: true, DefaultKind: DefaultLiteral, DefaultValue: "new"},
		{Name: "note", Position: 3, Type: "varchar(255)", Nullable: true, DefaultKind: DefaultNull},
	}, orders.Fields)

	view := doc.Objects[1]
	assert.Equal(t, "v_orders", view.Name)
	assert.Equal(t, ObjectView, view.Type)
	assert.Equal(t, "CREATE VIEW v_orders AS SELECT id FROM orders", view.CreateSQL)
	assert.Empty(t, view.Fields)

	assert.Equal(t, DefaultCharacterSet, doc.Database.DefaultCharacterSet)
}

func TestNormalizeSheetsMultipleObjectsPerSheet(t *testing.T) {
	rows := append([][]string{TabularHeader},
		[]string{"table", "a", "id", "1", "int", "NO", "", "", "", "", "", "", "", "", "", "", ""},
		[]string{"table", "b", "id", "1", "int", "NO", "", "", "", "", "", "", "", "", "", "", ""},
		[]string{"", "", "name", "2", "text", "YES", "", "", "", "", "", "", "", "", "", "", ""},
	)

	doc, err := NormalizeSheets([]Sheet{{Name: "all", Rows: rows}})
	require.NoError(t, err)
	require.Len(t, doc.Objects, 2)
	assert.Equal(t, "a", doc.Objects[0].Name)
	assert.Len(t, doc.Objects[0].Fields, 1)
	assert.Equal(t, "b", doc.Objects[1].Name)
	assert.Len(t, doc.Objects[1].Fields, 2)
}

func TestSheetsRoundTrip(t *testing.T) {
	want := sampleDocument()
	want.Database = Database{DefaultCharacterSet: DefaultCharacterSet, DefaultCollation: DefaultCollation}
	want.GeneratedAt = ""

	sheets := want.Sheets()
	require.Len(t, sheets, 2)
	assert.Equal(t, TabularHeader, sheets[0].Rows[0])
	assert.Len(t, sheets[0].Rows, 6)
	assert.Equal(t, "", sheets[0].Rows[2][14], "object metadata only on the first data row")

	got, err := NormalizeSheets(sheets)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSheetsPlaceholderRow(t *testing.T) {
	doc := &Document{Objects: []Object{{Name: "v", Type: ObjectView, CreateSQL: "CREATE VIEW v AS SELECT 1"}}}

	sheets := doc.Sheets()
	require.Len(t, sheets, 1)
	require.Len(t, sheets[0].Rows, 2)
	assert.Equal(t, "", sheets[0].Rows[1][2])
	assert.Equal(t, "[]", sheets[0].Rows[1][13])

	got, err := NormalizeSheets(sheets)
	require.NoError(t, err)
	require.Len(t, got.Objects, 1)
	assert.Equal(t, "CREATE VIEW v AS SELECT 1", got.Objects[0].CreateSQL)
	assert.Empty(t, got.Objects[0].Fields)
}

func TestSheetsEmptyDocument(t *testing.T) {
	sheets := (&Document{}).Sheets()
	require.Len(t, sheets, 1)
	assert.Equal(t, "schema", sheets[0].Name)
	assert.Len(t, sheets[0].Rows, 1)
}
