// Package plan compares a desired schema with the live state of a MySQL
// database and compiles the ordered DDL statements that reconcile them.
package plan

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tordrt/myschema/internal/ddl"
	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// LiveObject is a table or view that currently exists in the target schema
type LiveObject struct {
	Name   string
	IsView bool
}

// TableOptions holds the table-level options compared by the option plan
type TableOptions struct {
	Engine    string
	Collation string
}

// LiveSchemaReader reads the current state of the target schema. Fields are
// returned in ordinal order and indexes with PRIMARY first.
type LiveSchemaReader interface {
	ListObjects(ctx context.Context, schemaName string) ([]LiveObject, error)
	DescribeFields(ctx context.Context, schemaName, object string) ([]schema.Field, error)
	DescribeIndexes(ctx context.Context, schemaName, object string) ([]schema.Index, error)
	DescribeTableOptions(ctx context.Context, schemaName, object string) (TableOptions, error)
}

// Kind identifies what a Statement does
type Kind string

const (
	KindCreateTable Kind = "create_table"
	KindAlterTable  Kind = "alter_table"
	KindDropTable   Kind = "drop_table"
	KindCreateView  Kind = "create_view"
	KindDropView    Kind = "drop_view"
)

// Statement is one DDL statement of a plan
type Statement struct {
	Object string
	Kind   Kind
	SQL    string
}

type options struct {
	logger zerolog.Logger
	strict bool
}

// Option configures a Compiler or Execute
type Option func(*options)

// WithLogger sets the logger. Planning decisions are logged at debug level
// and executed statements at info level.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStrictIdentifiers makes an unsafe engine, collation or charset token an
// error instead of silently omitting it
func WithStrictIdentifiers() Option {
	return func(o *options) {
		o.strict = true
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compiler produces plans against one live schema
type Compiler struct {
	reader     LiveSchemaReader
	schemaName string
	opts       options
}

// New creates a Compiler reading live state for schemaName from reader
func New(reader LiveSchemaReader, schemaName string, opts ...Option) *Compiler {
	return &Compiler{
		reader:     reader,
		schemaName: schemaName,
		opts:       buildOptions(opts),
	}
}

// Plan compiles the statements needed to turn the live schema into desired.
// Objects are planned in the order given. Live objects that are not part of
// desired are left untouched.
func (c *Compiler) Plan(ctx context.Context, desired []schema.Object) ([]Statement, error) {
	liveObjects, err := c.reader.ListObjects(ctx, c.schemaName)
	if err != nil {
		return nil, myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to list objects in %q", c.schemaName)
	}

	live := make(map[string]LiveObject, len(liveObjects))
	for _, lo := range liveObjects {
		live[lo.Name] = lo
	}

	var stmts []Statement
	for _, obj := range desired {
		current, exists := live[obj.Name]

		planned, err := c.planObject(ctx, obj, current, exists)
		if err != nil {
			return nil, err
		}

		c.opts.logger.Debug().
			Str("object", obj.Name).
			Str("type", string(obj.Type)).
			Bool("exists", exists).
			Bool("live_view", current.IsView).
			Int("statements", len(planned)).
			Msg("planned object")

		stmts = append(stmts, planned...)
	}

	return stmts, nil
}

func (c *Compiler) planObject(ctx context.Context, obj schema.Object, current LiveObject, exists bool) ([]Statement, error) {
	if obj.IsView() {
		viewSQL, err := ddl.PrepareViewSQL(obj.CreateSQL, obj.Name)
		if err != nil {
			return nil, err
		}

		var stmts []Statement
		if exists && !current.IsView {
			stmts = append(stmts, Statement{Object: obj.Name, Kind: KindDropTable, SQL: "DROP TABLE " + ddl.QuoteIdentifier(obj.Name)})
		}
		return append(stmts, Statement{Object: obj.Name, Kind: KindCreateView, SQL: viewSQL}), nil
	}

	if err := c.checkIdentifiers(obj); err != nil {
		return nil, err
	}

	if !exists {
		createSQL, err := ddl.CreateTable(obj)
		if err != nil {
			return nil, err
		}
		return []Statement{{Object: obj.Name, Kind: KindCreateTable, SQL: createSQL}}, nil
	}

	if current.IsView {
		createSQL, err := ddl.CreateTable(obj)
		if err != nil {
			return nil, err
		}
		return []Statement{
			{Object: obj.Name, Kind: KindDropView, SQL: "DROP VIEW " + ddl.QuoteIdentifier(obj.Name)},
			{Object: obj.Name, Kind: KindCreateTable, SQL: createSQL},
		}, nil
	}

	alterSQL, err := c.alterTable(ctx, obj)
	if err != nil || alterSQL == "" {
		return nil, err
	}
	return []Statement{{Object: obj.Name, Kind: KindAlterTable, SQL: alterSQL}}, nil
}

// checkIdentifiers reports unsafe option tokens in strict mode
func (c *Compiler) checkIdentifiers(obj schema.Object) error {
	if !c.opts.strict {
		return nil
	}

	if obj.Engine != "" && !ddl.IsSafeIdentifier(obj.Engine) {
		return myerrors.Newf(myerrors.ErrTypeUnsafeIdentifier, "table %q: unsafe engine %q", obj.Name, obj.Engine)
	}
	if obj.Collation != "" && !ddl.IsSafeIdentifier(obj.Collation) {
		return myerrors.Newf(myerrors.ErrTypeUnsafeIdentifier, "table %q: unsafe collation %q", obj.Name, obj.Collation)
	}
	for _, f := range obj.Fields {
		if f.Collation != "" && f.GenerationExpression == "" && !ddl.IsSafeIdentifier(f.Collation) {
			return myerrors.Newf(myerrors.ErrTypeUnsafeIdentifier, "column %q.%q: unsafe collation %q", obj.Name, f.Name, f.Collation)
		}
	}
	for _, ix := range obj.Indexes {
		if ix.Type != "" && !ddl.IsSafeIdentifier(ix.Type) {
			return myerrors.Newf(myerrors.ErrTypeUnsafeIdentifier, "index %q.%q: unsafe type %q", obj.Name, ix.Name, ix.Type)
		}
	}
	return nil
}

// Diff plans desired against a snapshot of current instead of a live server
func Diff(ctx context.Context, current, desired []schema.Object, opts ...Option) ([]Statement, error) {
	return New(NewSnapshotReader(current), "", opts...).Plan(ctx, desired)
}
