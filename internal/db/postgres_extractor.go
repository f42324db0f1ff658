package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/myschema/internal/ddl"
	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// PostgresExtractor dumps a PostgreSQL schema into the portable document.
// Types are reported in their PostgreSQL spelling; views carry a rebuilt
// CREATE VIEW statement.
type PostgresExtractor struct {
	client *PostgresClient
	schema string
}

// NewPostgresExtractor creates a new schema extractor
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
	}
}

type pgObject struct {
	name   string
	isView bool
}

// ExtractSchema extracts the tables and views of the schema.
// If tables is empty, every object is extracted.
func (e *PostgresExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	database, err := e.extractDatabase(ctx)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeIntrospection, "failed to read database")
	}

	objects, err := e.getObjects(ctx)
	if err != nil {
		return nil, myerrors.Wrap(err, myerrors.ErrTypeIntrospection, "failed to get table names")
	}
	objects, err = selectTables(objects, tables, func(o pgObject) string { return o.name })
	if err != nil {
		return nil, err
	}

	doc := &schema.Document{
		Database:    database,
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

func (e *PostgresExtractor) extractDatabase(ctx context.Context) (schema.Database, error) {
	var name string
	if err := e.client.GetConnection().QueryRow(ctx, `SELECT current_database()`).Scan(&name); err != nil {
		return schema.Database{}, err
	}

	// encodings and collations have no MySQL counterpart; the defaults apply
	return schema.Database{
		Name:                name,
		DefaultCharacterSet: schema.DefaultCharacterSet,
		DefaultCollation:    schema.DefaultCollation,
	}, nil
}

// getObjects returns the tables and views of the schema ordered by name
func (e *PostgresExtractor) getObjects(ctx context.Context) ([]pgObject, error) {
	query := `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (pgObject, error) {
		var o pgObject
		var tableType string
		err := row.Scan(&o.name, &tableType)
		o.isView = tableType == "VIEW"
		return o, err
	})
}

func (e *PostgresExtractor) extractObject(ctx context.Context, o pgObject) (*schema.Object, error) {
	obj := &schema.Object{Name: o.name, Type: schema.ObjectTable}

	fields, err := e.extractColumns(ctx, o.name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	obj.Fields = fields

	if o.isView {
		obj.Type = schema.ObjectView
		definition, err := e.extractViewDefinition(ctx, o.name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract view definition: %w", err)
		}
		obj.CreateSQL = "CREATE VIEW " + ddl.QuoteIdentifier(o.name) + " AS " + definition
		return obj, nil
	}

	indexes, err := e.extractIndexes(ctx, o.name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	obj.Indexes = indexes

	return obj, nil
}

// normalizePostgresType maps verbose SQL type names to commonly-used PostgreSQL equivalents
func normalizePostgresType(dataType, udtName string, charMaxLength *int) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return "varchar"
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "ARRAY":
		// udt_name has underscore prefix for arrays (e.g., "_text" for text[], "_int4" for integer[])
		if len(udtName) > 0 && udtName[0] == '_' {
			elementType := normalizeUdtName(udtName[1:])
			return fmt.Sprintf("%s[]", elementType)
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

var udtNames = map[string]string{
	"int2":   "smallint",
	"int4":   "integer",
	"int8":   "bigint",
	"float4": "real",
	"float8": "double precision",
	"bool":   "boolean",
}

// normalizeUdtName spells array element types the way columns spell them
func normalizeUdtName(udtName string) string {
	if name, ok := udtNames[udtName]; ok {
		return name
	}
	return udtName
}

// enumType renders enum labels as a MySQL enum column type
func enumType(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = ddl.QuoteString(l)
	}
	return "enum(" + strings.Join(quoted, ",") + ")"
}

// extractColumns extracts column information for a table or view
func (e *PostgresExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Field, error) {
	query := `
		SELECT
			c.column_name,
			c.ordinal_position,
			c.data_type,
			c.udt_name,
			c.character_maximum_length,
			c.is_nullable,
			c.column_default,
			c.is_generated,
			COALESCE(c.generation_expression, ''),
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position), '')
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []schema.Field
	var enumTypes []string
	enumColumns := make(map[int]string)

	for rows.Next() {
		var f schema.Field
		var dataType, udtName, nullable, generated string
		var charMaxLength *int
		var defaultVal *string

		if err := rows.Scan(&f.Name, &f.Position, &dataType, &udtName, &charMaxLength, &nullable, &defaultVal, &generated, &f.GenerationExpression, &f.Comment); err != nil {
			return nil, err
		}

		f.Type = normalizePostgresType(dataType, udtName, charMaxLength)
		f.Nullable = nullable == "YES"

		if generated == "ALWAYS" && f.GenerationExpression != "" {
			f.Extra = "STORED GENERATED"
			f.DefaultKind = schema.DefaultNone
		} else {
			f.DefaultKind, f.DefaultValue = portableDefault(defaultVal, f.Nullable)
		}

		if dataType == "USER-DEFINED" {
			enumTypes = append(enumTypes, udtName)
			enumColumns[len(fields)] = udtName
		}

		fields = append(fields, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(enumTypes) > 0 {
		enumValuesMap, err := e.extractEnumValuesMap(ctx, enumTypes)
		if err != nil {
			return nil, err
		}

		for i, typeName := range enumColumns {
			if labels, ok := enumValuesMap[typeName]; ok {
				fields[i].Type = enumType(labels)
			}
		}
	}

	return fields, nil
}

// extractEnumValuesMap extracts enum values for multiple enum types at once
func (e *PostgresExtractor) extractEnumValuesMap(ctx context.Context, enumTypeNames []string) (map[string][]string, error) {
	query := `
		SELECT t.typname, e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON t.typnamespace = n.oid
		WHERE n.nspname = $1 AND t.typname = ANY($2)
		ORDER BY t.typname, e.enumsortorder
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, enumTypeNames)
	if err != nil {
		return nil, err
	}

	labels := make(map[string][]string)
	var typName, label string
	_, err = pgx.ForEachRow(rows, []any{&typName, &label}, func() error {
		labels[typName] = append(labels[typName], label)
		return nil
	})
	return labels, err
}

// extractIndexes extracts indexes including the primary key. Expression
// index parts have no attribute and are skipped.
func (e *PostgresExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT
			i.relname AS index_name,
			ix.indisprimary AS is_primary,
			ix.indisunique AS is_unique,
			upper(am.amname) AS index_type,
			array_agg(a.attname::text ORDER BY array_position(ix.indkey, a.attnum)) AS column_names
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON am.oid = i.relam
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
		GROUP BY i.relname, ix.indisprimary, ix.indisunique, am.amname
		ORDER BY i.relname
	`

	rows, err := e.client.GetConnection().Query(ctx, query, e.schema, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		var isPrimary bool
		var columns []string
		if err := rows.Scan(&idx.Name, &isPrimary, &idx.Unique, &idx.Type, &columns); err != nil {
			return nil, err
		}

		if isPrimary {
			idx.Name = schema.PrimaryIndexName
		}
		for _, c := range columns {
			idx.Columns = append(idx.Columns, schema.IndexColumn{Name: c})
		}
		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schema.SortIndexes(indexes)
	return indexes, nil
}

func (e *PostgresExtractor) extractViewDefinition(ctx context.Context, viewName string) (string, error) {
	var definition string
	err := e.client.GetConnection().QueryRow(ctx,
		`SELECT pg_get_viewdef(format('%I.%I', $1::text, $2::text)::regclass, true)`,
		e.schema, viewName,
	).Scan(&definition)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSpace(definition), ";"), nil
}
