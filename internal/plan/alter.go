package plan

import (
	"context"
	"strings"

	"github.com/tordrt/myschema/internal/ddl"
	myerrors "github.com/tordrt/myschema/internal/errors"
	"github.com/tordrt/myschema/internal/schema"
)

// alterTable returns the ALTER TABLE statement for an existing base table, or
// "" when nothing differs. A desired table without fields is never altered.
func (c *Compiler) alterTable(ctx context.Context, obj schema.Object) (string, error) {
	if len(obj.Fields) == 0 {
		return "", nil
	}

	liveFields, err := c.reader.DescribeFields(ctx, c.schemaName, obj.Name)
	if err != nil {
		return "", myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to describe columns of %q", obj.Name)
	}
	liveIndexes, err := c.reader.DescribeIndexes(ctx, c.schemaName, obj.Name)
	if err != nil {
		return "", myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to describe indexes of %q", obj.Name)
	}
	liveOptions, err := c.reader.DescribeTableOptions(ctx, c.schemaName, obj.Name)
	if err != nil {
		return "", myerrors.Wrapf(err, myerrors.ErrTypeIntrospection, "failed to describe options of %q", obj.Name)
	}

	columnOps, err := columnPlan(liveFields, obj.Fields)
	if err != nil {
		return "", myerrors.Wrapf(err, myerrors.ErrTypeInputFormat, "table %q", obj.Name)
	}
	indexDrops, indexAdds := indexPlan(liveIndexes, obj.Indexes)
	optionOps := optionPlan(liveOptions, obj)

	ops := make([]string, 0, len(indexDrops)+len(columnOps)+len(indexAdds)+len(optionOps))
	ops = append(ops, indexDrops...)
	ops = append(ops, columnOps...)
	ops = append(ops, indexAdds...)
	ops = append(ops, optionOps...)
	if len(ops) == 0 {
		return "", nil
	}

	return "ALTER TABLE " + ddl.QuoteIdentifier(obj.Name) + " " + strings.Join(ops, ", "), nil
}

// columnPlan adds, modifies and drops columns. Every added or modified column
// is placed FIRST or AFTER its desired predecessor. A column whose definition
// matches is still modified when its 1-based ordinal differs.
func columnPlan(live, desired []schema.Field) ([]string, error) {
	liveByName := make(map[string]schema.Field, len(live))
	liveOrder := make(map[string]int, len(live))
	for i, f := range live {
		liveByName[f.Name] = f
		liveOrder[f.Name] = i + 1
	}

	fields := append([]schema.Field(nil), desired...)
	schema.SortFields(fields)

	var ops []string
	desiredNames := make(map[string]bool, len(fields))
	prev := ""
	for i, f := range fields {
		if f.Name == "" {
			continue
		}
		desiredNames[f.Name] = true

		placement := " FIRST"
		if prev != "" {
			placement = " AFTER " + ddl.QuoteIdentifier(prev)
		}
		prev = f.Name

		current, ok := liveByName[f.Name]
		if !ok {
			def, err := ddl.ColumnDefinition(f)
			if err != nil {
				return nil, err
			}
			ops = append(ops, "ADD COLUMN "+def+placement)
			continue
		}

		if ddl.FieldSignature(current) == ddl.FieldSignature(f) && liveOrder[f.Name] == i+1 {
			continue
		}
		def, err := ddl.ColumnDefinition(f)
		if err != nil {
			return nil, err
		}
		ops = append(ops, "MODIFY COLUMN "+def+placement)
	}

	for _, f := range live {
		if !desiredNames[f.Name] {
			ops = append(ops, "DROP COLUMN "+ddl.QuoteIdentifier(f.Name))
		}
	}
	return ops, nil
}

// indexPlan compares indexes by name. Changed indexes are dropped and re-added.
func indexPlan(live, desired []schema.Index) (drops, adds []string) {
	live = sortedIndexes(live)
	desired = sortedIndexes(desired)

	liveByName := make(map[string]schema.Index, len(live))
	for _, ix := range live {
		liveByName[ix.Name] = ix
	}
	desiredByName := make(map[string]bool, len(desired))
	for _, ix := range desired {
		desiredByName[ix.Name] = true
	}

	for _, ix := range live {
		if !desiredByName[ix.Name] {
			drops = append(drops, ddl.DropIndex(ix.Name))
		}
	}

	for _, ix := range desired {
		current, ok := liveByName[ix.Name]
		if ok {
			if ddl.IndexSignature(current) == ddl.IndexSignature(ix) {
				continue
			}
			drops = append(drops, ddl.DropIndex(ix.Name))
		}
		if def := ddl.IndexDefinition(ix, true); def != "" {
			adds = append(adds, def)
		}
	}
	return drops, adds
}

func sortedIndexes(indexes []schema.Index) []schema.Index {
	out := make([]schema.Index, 0, len(indexes))
	seen := make(map[string]bool, len(indexes))
	for _, ix := range indexes {
		if ix.Name == "" || seen[ix.Name] {
			continue
		}
		seen[ix.Name] = true
		out = append(out, ix)
	}
	schema.SortIndexes(out)
	return out
}

// optionPlan changes engine and collation when the desired value is safe and
// differs case-insensitively from the live one
func optionPlan(live TableOptions, obj schema.Object) []string {
	var ops []string
	if obj.Engine != "" && ddl.IsSafeIdentifier(obj.Engine) && !strings.EqualFold(obj.Engine, live.Engine) {
		ops = append(ops, "ENGINE="+obj.Engine)
	}
	if obj.Collation != "" && ddl.IsSafeIdentifier(obj.Collation) && !strings.EqualFold(obj.Collation, live.Collation) {
		ops = append(ops, "COLLATE="+obj.Collation)
	}
	return ops
}
