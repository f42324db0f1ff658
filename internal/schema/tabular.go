package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TabularHeader is the fixed column layout of the tabular form
var TabularHeader = []string{
	"kind",
	"table_name",
	"field_name",
	"position",
	"column_type",
	"nullable",
	"default_kind",
	"default_value",
	"extra",
	"key",
	"collation",
	"comment",
	"generation_expression",
	"indexes_json",
	"table_engine",
	"table_collation",
	"create_sql",
}

// Sheet is one worksheet (or CSV file) of the tabular form. Rows[0] is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

// tabularObject accumulates the rows of one object while scanning a sheet
type tabularObject struct {
	record map[string]any
	fields []any
}

// orderedObjects is a name-keyed accumulator that remembers insertion order
type orderedObjects struct {
	keys  []string
	items map[string]*tabularObject
}

func (o *orderedObjects) get(name string) *tabularObject {
	if o.items == nil {
		o.items = make(map[string]*tabularObject)
	}
	if t, ok := o.items[name]; ok {
		return t
	}
	t := &tabularObject{record: map[string]any{"name": name}}
	o.items[name] = t
	o.keys = append(o.keys, name)
	return t
}

// NormalizeSheets converts tabular input using the default Normalizer
func NormalizeSheets(sheets []Sheet) (*Document, error) {
	return Normalizer{}.NormalizeSheets(sheets)
}

// NormalizeSheets converts worksheets into a Document. Each sheet holds one
// object by default; a non-blank table_name cell starts or continues the object
// of that name. Object-level cells keep their first non-empty value.
//
// A blank position cell takes the 1-based ordinal of the row among the
// sheet's non-empty data rows, so hand-edited sheets keep their row order.
// Record input without a position still gets 0.
func (n Normalizer) NormalizeSheets(sheets []Sheet) (*Document, error) {
	var acc orderedObjects

	for _, sheet := range sheets {
		if len(sheet.Rows) == 0 {
			continue
		}

		header := make([]string, len(sheet.Rows[0]))
		usable := false
		for i, label := range sheet.Rows[0] {
			header[i] = NormalizeHeader(label)
			usable = usable || header[i] != ""
		}
		if !usable {
			continue
		}

		current := sheet.Name
		ordinal := 0
		for _, row := range sheet.Rows[1:] {
			assoc := make(map[string]string, len(header))
			for i, key := range header {
				if key == "" {
					continue
				}
				if i < len(row) {
					assoc[key] = row[i]
				} else {
					assoc[key] = ""
				}
			}
			if rowIsEmpty(assoc) {
				continue
			}
			ordinal++

			if name := strings.TrimSpace(assoc["table_name"]); name != "" {
				current = name
			}
			obj := acc.get(current)
			obj.merge(assoc)

			fieldName := firstNonEmpty(assoc["field_name"], assoc["column_name"], assoc["field"], assoc["name"])
			if fieldName == "" {
				continue
			}

			field := make(map[string]any, len(assoc)+1)
			for k, v := range assoc {
				field[k] = v
			}
			field["field_name"] = fieldName
			if strings.TrimSpace(assoc["position"]) == "" {
				field["position"] = ordinal
			}
			obj.fields = append(obj.fields, field)
		}
	}

	root := map[string]any{}
	objects := make([]any, 0, len(acc.keys))
	for _, name := range acc.keys {
		obj := acc.items[name]
		obj.record["fields"] = obj.fields
		objects = append(objects, obj.record)
	}
	root["objects"] = objects

	return n.Normalize(root)
}

// merge copies object-level cells, keeping the first non-empty occurrence.
// kind follows the latest non-empty cell.
func (t *tabularObject) merge(assoc map[string]string) {
	if kind := strings.TrimSpace(assoc["kind"]); kind != "" {
		t.record["type"] = kind
	}
	for _, key := range []string{"table_engine", "table_collation", "create_sql", "indexes_json"} {
		if asString(t.record[key]) != "" {
			continue
		}
		if v := assoc[key]; strings.TrimSpace(v) != "" {
			t.record[key] = v
		}
	}
	if v, ok := t.record["indexes_json"]; ok {
		t.record["indexes"] = v
	}
}

// Sheets serializes the document into the tabular form, one sheet per object.
// Objects without fields still get one row so their metadata survives.
func (d *Document) Sheets() []Sheet {
	sheets := make([]Sheet, 0, len(d.Objects))
	for _, o := range d.Objects {
		fields := o.Fields
		if len(fields) == 0 {
			fields = []Field{{Position: 1, Nullable: true, DefaultKind: DefaultNone}}
		}

		rows := [][]string{append([]string(nil), TabularHeader...)}
		for i, f := range fields {
			row := []string{
				string(o.Type),
				o.Name,
				f.Name,
				strconv.Itoa(f.Position),
				f.Type,
				yesNo(f.Nullable),
				string(f.DefaultKind),
				f.DefaultValue,
				f.Extra,
				f.Key,
				f.Collation,
				f.Comment,
				f.GenerationExpression,
				"", "", "", "",
			}
			if i == 0 {
				row[13] = encodeIndexes(o.Indexes)
				row[14] = o.Engine
				row[15] = o.Collation
				row[16] = o.CreateSQL
			}
			rows = append(rows, row)
		}
		sheets = append(sheets, Sheet{Name: o.Name, Rows: rows})
	}

	if len(sheets) == 0 {
		sheets = append(sheets, Sheet{Name: "schema", Rows: [][]string{append([]string(nil), TabularHeader...)}})
	}
	return sheets
}

func encodeIndexes(indexes []Index) string {
	if len(indexes) == 0 {
		return "[]"
	}
	data, err := json.Marshal(indexes)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func rowIsEmpty(assoc map[string]string) bool {
	for _, v := range assoc {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
