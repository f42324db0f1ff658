package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// SQLiteExtractor dumps a SQLite database into the portable document. Table
// DDL is not carried over since SQLite syntax does not replay on MySQL; view
// definitions are kept as written.
type SQLiteExtractor struct {
	client *SQLiteClient
	name   string
}

// NewSQLiteExtractor creates a new SQLite schema extractor. name becomes the
// document's database name.
func NewSQLiteExtractor(client *SQLiteClient, name string) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
		name:   name,
	}
}

type sqliteObject struct {
	name      string
	isView    bool
	createSQL string
}

// ExtractSchema extracts the tables and views of the database.
// If tables is empty, every object is extracted.
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	objects, err := e.getObjects(ctx)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeIntrospection, "failed to get table names")
	}
	objects, err = selectTables(objects, tables, func(o sqliteObject) string { return o.name })
	if err != nil {
		return nil, err
	}

	doc := &schema.Document{
		Database: schema.Database{
			Name:                e.name,
			DefaultCharacterSet: schema.DefaultCharacterSet,
			DefaultCollation:    schema.DefaultCollation,
		},
		GeneratedAt: time.Now().Format(time.RFC3339),
	}

	for _, o := range objects {
		obj, err := e.extractObject(ctx, o)
		if err != nil {
			return nil, myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to extract %s", o.name)
		}
		doc.Objects = append(doc.Objects, *obj)
	}

	return doc, nil
}

// getObjects returns tables and views ordered by name
func (e *SQLiteExtractor) getObjects(ctx context.Context) ([]sqliteObject, error) {
	query := `
		SELECT name, type, COALESCE(sql, '')
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []sqliteObject
	for rows.Next() {
		var o sqliteObject
		var objectType string
		if err := rows.Scan(&o.name, &objectType, &o.createSQL); err != nil {
			return nil, err
		}
		o.isView = objectType == "view"
		objects = append(objects, o)
	}

	return objects, rows.Err()
}

func (e *SQLiteExtractor) extractObject(ctx context.Context, o sqliteObject) (*schema.Object, error) {
	obj := &schema.Object{Name: o.name, Type: schema.ObjectTable}
	if o.isView {
		obj.Type = schema.ObjectView
		obj.CreateSQL = o.createSQL
	}

	fields, primaryKey, err := e.extractColumns(ctx, o.name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if o.isView {
		obj.Fields = fields
		return obj, nil
	}

	// a lone INTEGER PRIMARY KEY AUTOINCREMENT is the rowid alias
	if len(primaryKey) == 1 && strings.Contains(strings.ToUpper(o.createSQL), "AUTOINCREMENT") {
		for i := range fields {
			if fields[i].Name == primaryKey[0] {
				fields[i].Extra = "auto_increment"
			}
		}
	}
	obj.Fields = fields

	if len(primaryKey) > 0 {
		pk := schema.Index{Name: schema.PrimaryIndexName, Unique: true, Type: schema.DefaultIndexType}
		for _, c := range primaryKey {
			pk.Columns = append(pk.Columns, schema.IndexColumn{Name: c})
		}
		obj.Indexes = append(obj.Indexes, pk)
	}

	indexes, err := e.extractIndexes(ctx, o.name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	obj.Indexes = append(obj.Indexes, indexes...)
	schema.SortIndexes(obj.Indexes)

	return obj, nil
}

// extractColumns extracts column information and the primary key columns in
// key order
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Field, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var fields []schema.Field
	pkOrder := make(map[int]string)

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}

		f := schema.Field{
			Name:     name,
			Position: cid + 1,
			Type:     strings.ToLower(colType),
			Nullable: notNull == 0 && pk == 0,
		}
		if f.Type == "" {
			f.Type = schema.DefaultFieldType
		}

		var raw *string
		if defaultValue.Valid {
			raw = &defaultValue.String
		}
		f.DefaultKind, f.DefaultValue = portableDefault(raw, f.Nullable)

		if pk > 0 {
			pkOrder[pk] = name
			f.Key = "PRI"
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	order := make([]int, 0, len(pkOrder))
	for k := range pkOrder {
		order = append(order, k)
	}
	sort.Ints(order)
	primaryKey := make([]string, 0, len(order))
	for _, k := range order {
		primaryKey = append(primaryKey, pkOrder[k])
	}

	return fields, primaryKey, nil
}

type sqliteIndex struct {
	name   string
	unique bool
	origin string
}

// extractIndexes extracts secondary indexes. Auto-indexes behind UNIQUE
// constraints are named after their columns.
func (e *SQLiteExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	list, err := e.indexList(ctx, tableName)
	if err != nil {
		return nil, err
	}

	var indexes []schema.Index
	for _, ix := range list {
		if ix.origin == "pk" {
			continue
		}

		columns, err := e.indexColumns(ctx, ix.name)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			continue
		}

		name := ix.name
		if strings.HasPrefix(name, "sqlite_autoindex") {
			parts := make([]string, len(columns))
			for i, c := range columns {
				parts[i] = c.Name
			}
			name = strings.Join(parts, "_")
		}

		indexes = append(indexes, schema.Index{
			Name:    name,
			Unique:  ix.unique,
			Type:    schema.DefaultIndexType,
			Columns: columns,
		})
	}

	return indexes, nil
}

func (e *SQLiteExtractor) indexList(ctx context.Context, tableName string) ([]sqliteIndex, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", quoteSQLite(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []sqliteIndex
	for rows.Next() {
		var seq, unique, partial int
		var ix sqliteIndex

		if err := rows.Scan(&seq, &ix.name, &unique, &ix.origin, &partial); err != nil {
			return nil, err
		}
		ix.unique = unique == 1
		list = append(list, ix)
	}

	return list, rows.Err()
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]schema.IndexColumn, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", quoteSQLite(indexName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.IndexColumn
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}

		// expression parts have no column name
		if colName.Valid && colName.String != "" {
			columns = append(columns, schema.IndexColumn{Name: colName.String})
		}
	}

	return columns, rows.Err()
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
