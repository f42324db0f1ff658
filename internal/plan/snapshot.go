package plan

import (
	"context"
	"sort"

	"github.com/tordrt/myschema/internal/schema"
)

// SnapshotReader serves a fixed set of objects as if they were live. It is
// used to diff two documents offline. The schema name is ignored.
type SnapshotReader struct {
	objects map[string]schema.Object
}

var _ LiveSchemaReader = (*SnapshotReader)(nil)

// NewSnapshotReader indexes objects by name; the first occurrence of a name wins
func NewSnapshotReader(objects []schema.Object) *SnapshotReader {
	r := &SnapshotReader{objects: make(map[string]schema.Object, len(objects))}
	for _, o := range objects {
		if _, ok := r.objects[o.Name]; ok {
			continue
		}
		r.objects[o.Name] = o
	}
	return r
}

func (r *SnapshotReader) ListObjects(_ context.Context, _ string) ([]LiveObject, error) {
	out := make([]LiveObject, 0, len(r.objects))
	for name, o := range r.objects {
		out = append(out, LiveObject{Name: name, IsView: o.IsView()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *SnapshotReader) DescribeFields(_ context.Context, _, object string) ([]schema.Field, error) {
	o, ok := r.objects[object]
	if !ok {
		return nil, nil
	}
	fields := append([]schema.Field(nil), o.Fields...)
	schema.SortFields(fields)
	return fields, nil
}

func (r *SnapshotReader) DescribeIndexes(_ context.Context, _, object string) ([]schema.Index, error) {
	o, ok := r.objects[object]
	if !ok {
		return nil, nil
	}
	indexes := append([]schema.Index(nil), o.Indexes...)
	schema.SortIndexes(indexes)
	return indexes, nil
}

func (r *SnapshotReader) DescribeTableOptions(_ context.Context, _, object string) (TableOptions, error) {
	o, ok := r.objects[object]
	if !ok || o.IsView() {
		return TableOptions{}, nil
	}
	return TableOptions{Engine: o.Engine, Collation: o.Collation}, nil
}
