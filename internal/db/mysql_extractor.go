package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tordrt/myschema/internal/ddl"
	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/plan"
	"github.com/tordrt/myschema/internal/schema"
)

// MySQLExtractor reads a MySQL schema through information_schema. It serves
// both full dumps and the live reads of the plan compiler.
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
}

var _ plan.LiveSchemaReader = (*MySQLExtractor)(nil)

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
	}
}

// ExtractSchema dumps the database: its defaults and every table and view
// ordered by name. If tables is non-empty only those objects are read.
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	database, err := e.extractDatabase(ctx)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeIntrospection, "failed to read database defaults")
	}

	rows, err := e.listTables(ctx, e.schemaName)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeIntrospection, "failed to get table names")
	}
	rows, err = selectTables(rows, tables, func(r tableRow) string { return r.name })
	if err != nil {
		return nil, err
	}

	doc := &schema.Document{
		Database:    database,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	for _, row := range rows {
		obj, err := e.extractObject(ctx, row)
		if err != nil {
			return nil, myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to extract %s", row.name)
		}
		doc.Objects = append(doc.Objects, *obj)
	}

	return doc, nil
}

type tableRow struct {
	name      string
	isView    bool
	engine    string
	collation string
}

func (e *MySQLExtractor) extractDatabase(ctx context.Context) (schema.Database, error) {
	database := schema.Database{
		Name:                e.schemaName,
		DefaultCharacterSet: schema.DefaultCharacterSet,
		DefaultCollation:    schema.DefaultCollation,
	}

	query := `
		SELECT schema_name, default_character_set_name, default_collation_name
		FROM information_schema.schemata
		WHERE schema_name = ?
	`

	var name, charset, collation sql.NullString
	err := e.client.GetDB().QueryRowContext(ctx, query, e.schemaName).Scan(&name, &charset, &collation)
	if err == sql.ErrNoRows {
		return schema.Database{}, fmt.Errorf("database %q does not exist", e.schemaName)
	}
	if err != nil {
		return schema.Database{}, err
	}

	if name.String != "" {
		database.Name = name.String
	}
	if charset.String != "" {
		database.DefaultCharacterSet = charset.String
	}
	if collation.String != "" {
		database.DefaultCollation = collation.String
	}
	return database, nil
}

func (e *MySQLExtractor) listTables(ctx context.Context, schemaName string) ([]tableRow, error) {
	query := `
		SELECT table_name, table_type, engine, table_collation
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableRow
	for rows.Next() {
		var row tableRow
		var tableType string
		var engine, collation sql.NullString

		if err := rows.Scan(&row.name, &tableType, &engine, &collation); err != nil {
			return nil, err
		}

		row.isView = strings.EqualFold(tableType, "VIEW")
		row.engine = engine.String
		row.collation = collation.String
		tables = append(tables, row)
	}

	return tables, rows.Err()
}

// extractObject extracts all information for a single table or view
func (e *MySQLExtractor) extractObject(ctx context.Context, row tableRow) (*schema.Object, error) {
	obj := &schema.Object{
		Name:      row.name,
		Type:      schema.ObjectTable,
		Collation: row.collation,
	}
	if row.isView {
		obj.Type = schema.ObjectView
	} else {
		obj.Engine = row.engine
	}

	fields, err := e.DescribeFields(ctx, e.schemaName, row.name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	obj.Fields = fields

	if !row.isView {
		indexes, err := e.DescribeIndexes(ctx, e.schemaName, row.name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract indexes: %w", err)
		}
		obj.Indexes = indexes
	}

	createSQL, err := e.showCreate(ctx, row.name, row.isView)
	if err != nil {
		return nil, fmt.Errorf("failed to read create statement: %w", err)
	}
	obj.CreateSQL = createSQL

	return obj, nil
}

// ListObjects returns the tables and views of schemaName
func (e *MySQLExtractor) ListObjects(ctx context.Context, schemaName string) ([]plan.LiveObject, error) {
	rows, err := e.listTables(ctx, schemaName)
	if err != nil {
		return nil, err
	}

	objects := make([]plan.LiveObject, 0, len(rows))
	for _, row := range rows {
		objects = append(objects, plan.LiveObject{Name: row.name, IsView: row.isView})
	}
	return objects, nil
}

// DescribeFields returns the columns of a table or view in ordinal order
func (e *MySQLExtractor) DescribeFields(ctx context.Context, schemaName, object string) ([]schema.Field, error) {
	query := `
		SELECT
			column_name,
			column_type,
			is_nullable,
			column_default,
			extra,
			column_key,
			collation_name,
			column_comment,
			ordinal_position,
			generation_expression
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, object)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []schema.Field
	for rows.Next() {
		var f schema.Field
		var nullable string
		var defaultVal, extra, key, collation, comment, generation sql.NullString

		if err := rows.Scan(&f.Name, &f.Type, &nullable, &defaultVal, &extra, &key, &collation, &comment, &f.Position, &generation); err != nil {
			return nil, err
		}

		f.Nullable = strings.EqualFold(nullable, "YES")
		f.Extra = extra.String
		f.Key = key.String
		f.Collation = collation.String
		f.Comment = comment.String
		f.GenerationExpression = generation.String

		var columnDefault *string
		if defaultVal.Valid {
			columnDefault = &defaultVal.String
		}
		f.DefaultKind, f.DefaultValue = schema.DetectDefault(columnDefault, f.Nullable, f.Extra)

		fields = append(fields, f)
	}

	return fields, rows.Err()
}

// DescribeIndexes returns the indexes of a table with PRIMARY first. Rows of
// information_schema.statistics are grouped by index name in scan order.
func (e *MySQLExtractor) DescribeIndexes(ctx context.Context, schemaName, object string) ([]schema.Index, error) {
	query := `
		SELECT index_name, non_unique, index_type, column_name, sub_part
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ?
		ORDER BY index_name, seq_in_index
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, object)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []string
	grouped := make(map[string]*schema.Index)
	for rows.Next() {
		var name string
		var nonUnique int
		var indexType, columnName sql.NullString
		var subPart sql.NullInt64

		if err := rows.Scan(&name, &nonUnique, &indexType, &columnName, &subPart); err != nil {
			return nil, err
		}

		ix, ok := grouped[name]
		if !ok {
			ix = &schema.Index{
				Name:   name,
				Unique: nonUnique == 0,
				Type:   strings.ToUpper(indexType.String),
			}
			if ix.Type == "" {
				ix.Type = schema.DefaultIndexType
			}
			grouped[name] = ix
			order = append(order, name)
		}

		// functional key parts have no column name
		if columnName.String == "" {
			continue
		}
		col := schema.IndexColumn{Name: columnName.String}
		if subPart.Valid {
			col.Length = schema.IntPtr(int(subPart.Int64))
		}
		ix.Columns = append(ix.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]schema.Index, 0, len(order))
	for _, name := range order {
		if ix := grouped[name]; len(ix.Columns) > 0 {
			indexes = append(indexes, *ix)
		}
	}
	schema.SortIndexes(indexes)
	return indexes, nil
}

// DescribeTableOptions returns the engine and collation of a table
func (e *MySQLExtractor) DescribeTableOptions(ctx context.Context, schemaName, object string) (plan.TableOptions, error) {
	query := `
		SELECT engine, table_collation
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ?
	`

	var engine, collation sql.NullString
	err := e.client.GetDB().QueryRowContext(ctx, query, schemaName, object).Scan(&engine, &collation)
	if err == sql.ErrNoRows {
		return plan.TableOptions{}, nil
	}
	if err != nil {
		return plan.TableOptions{}, err
	}
	return plan.TableOptions{Engine: engine.String, Collation: collation.String}, nil
}

// showCreate returns the verbatim SHOW CREATE TABLE|VIEW text
func (e *MySQLExtractor) showCreate(ctx context.Context, name string, isView bool) (string, error) {
	kind := "TABLE"
	if isView {
		kind = "VIEW"
	}
	query := "SHOW CREATE " + kind + " " + ddl.QuoteIdentifier(e.schemaName) + "." + ddl.QuoteIdentifier(name)

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}
	if !rows.Next() {
		return "", rows.Err()
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return "", err
	}

	for i, column := range columns {
		if strings.HasPrefix(strings.ToLower(column), "create ") {
			return strings.TrimSpace(values[i].String), nil
		}
	}
	return "", rows.Err()
}
