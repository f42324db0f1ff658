package schema

import (
	"encoding/json"
	"sort"
	"strings"

	myerrors "github.com/tordrt/myschema/internal/errors"
)

// Normalizer turns loosely-structured documents into the canonical model.
// The zero value drops objects that have neither fields nor create_sql.
type Normalizer struct {
	// KeepIncomplete keeps objects without fields and create_sql so that the
	// plan compiler reports them instead of skipping them silently.
	KeepIncomplete bool
}

// Normalize converts a decoded JSON or YAML document using the default Normalizer
func Normalize(raw any) (*Document, error) {
	return Normalizer{}.Normalize(raw)
}

// Normalize converts a decoded document into a Document. Objects may be given
// as a list, as a mapping keyed by name, or split into "tables" and "views".
func (n Normalizer) Normalize(raw any) (*Document, error) {
	root, ok := asMap(raw)
	if !ok {
		return nil, myerrors.New(myerrors.ErrTypeInputFormat, "document must be a mapping")
	}

	objectsRaw, err := extractObjects(root)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Database:    normalizeDatabase(root),
		GeneratedAt: asString(root["generated_at"]),
	}

	seen := make(map[string]bool, len(objectsRaw))
	for _, item := range objectsRaw {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		obj, ok := n.normalizeObject(m)
		if !ok || seen[obj.Name] {
			continue
		}
		seen[obj.Name] = true
		doc.Objects = append(doc.Objects, obj)
	}

	return doc, nil
}

func extractObjects(root map[string]any) ([]any, error) {
	if v, ok := root["objects"]; ok && v != nil {
		list, ok := namedList(v)
		if !ok {
			return nil, myerrors.New(myerrors.ErrTypeInputFormat, "objects must be a list or a mapping")
		}
		return list, nil
	}

	var out []any
	if v, ok := root["tables"]; ok && v != nil {
		list, ok := namedList(v)
		if !ok {
			return nil, myerrors.New(myerrors.ErrTypeInputFormat, "tables must be a list or a mapping")
		}
		out = append(out, list...)
	}
	if v, ok := root["views"]; ok && v != nil {
		list, ok := namedList(v)
		if !ok {
			return nil, myerrors.New(myerrors.ErrTypeInputFormat, "views must be a list or a mapping")
		}
		for _, item := range list {
			m, ok := asMap(item)
			if !ok {
				continue
			}
			view := make(map[string]any, len(m)+1)
			for k, val := range m {
				view[k] = val
			}
			view["type"] = string(ObjectView)
			out = append(out, view)
		}
	}
	return out, nil
}

// namedList flattens a list, or a mapping keyed by name, into a list of
// elements. Mapping keys are promoted to "name" when the element lacks one and
// are visited in sorted order so the result is deterministic.
func namedList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}

	m, ok := asMap(v)
	if !ok {
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		elem, ok := asMap(m[k])
		if !ok {
			continue
		}
		if asString(elem["name"]) == "" {
			named := make(map[string]any, len(elem)+1)
			for ek, ev := range elem {
				named[ek] = ev
			}
			named["name"] = k
			elem = named
		}
		out = append(out, elem)
	}
	return out, true
}

func normalizeDatabase(root map[string]any) Database {
	db := Database{
		DefaultCharacterSet: DefaultCharacterSet,
		DefaultCollation:    DefaultCollation,
	}

	if m, ok := asMap(root["database"]); ok {
		db.Name = firstString(m, "name", "db")
		if v := firstString(m, "default_character_set", "charset"); v != "" {
			db.DefaultCharacterSet = v
		}
		if v := firstString(m, "default_collation", "collation"); v != "" {
			db.DefaultCollation = v
		}
	}
	if db.Name == "" {
		db.Name = firstString(root, "db", "database_name")
	}
	return db
}

func (n Normalizer) normalizeObject(m map[string]any) (Object, bool) {
	name := firstString(m, "name", "table_name")
	if name == "" {
		return Object{}, false
	}

	obj := Object{
		Name:      name,
		Type:      ParseObjectType(firstString(m, "type", "kind")),
		Engine:    firstString(m, "engine", "table_engine"),
		Collation: firstString(m, "collation", "table_collation"),
		CreateSQL: firstString(m, "create_sql", "sql"),
	}

	if raw, ok := firstValue(m, "fields", "columns"); ok {
		if list, ok := namedList(raw); ok {
			seen := make(map[string]bool, len(list))
			for _, item := range list {
				fm, ok := asMap(item)
				if !ok {
					continue
				}
				f, ok := normalizeField(fm)
				if !ok || seen[f.Name] {
					continue
				}
				seen[f.Name] = true
				obj.Fields = append(obj.Fields, f)
			}
		}
	}
	SortFields(obj.Fields)

	obj.Indexes = normalizeIndexes(m["indexes"])

	if len(obj.Fields) == 0 && strings.TrimSpace(obj.CreateSQL) == "" && !n.KeepIncomplete {
		return Object{}, false
	}
	return obj, true
}

func normalizeField(m map[string]any) (Field, bool) {
	name := firstString(m, "field", "field_name", "column_name", "name")
	if name == "" {
		return Field{}, false
	}

	nullableRaw, _ := firstValue(m, "nullable", "null")
	nullable := asBool(nullableRaw, true)

	defaultValue := firstString(m, "default_value", "default")

	position := 0
	if raw, ok := firstValue(m, "position", "ordinal_position"); ok {
		if p, ok := asInt(raw); ok {
			position = p
		}
	}

	fieldType := strings.TrimSpace(firstString(m, "type", "column_type"))
	if fieldType == "" {
		fieldType = DefaultFieldType
	}

	return Field{
		Name:                 name,
		Position:             position,
		Type:                 fieldType,
		Nullable:             nullable,
		DefaultKind:          InferDefaultKind(asString(m["default_kind"]), defaultValue, nullable),
		DefaultValue:         defaultValue,
		Extra:                asString(m["extra"]),
		Key:                  asString(m["key"]),
		Collation:            asString(m["collation"]),
		Comment:              asString(m["comment"]),
		GenerationExpression: asString(m["generation_expression"]),
	}, true
}

// normalizeIndexes accepts a list, a mapping keyed by name, or a string holding
// a JSON-encoded list. Entries without a name or usable columns are dropped.
func normalizeIndexes(raw any) []Index {
	if s, ok := raw.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil
		}
		raw = decoded
	}
	if raw == nil {
		return nil
	}

	list, ok := namedList(raw)
	if !ok {
		return nil
	}

	var indexes []Index
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		name := asString(m["name"])
		if name == "" || seen[name] {
			continue
		}

		columns := normalizeIndexColumns(m["columns"])
		if len(columns) == 0 {
			continue
		}

		indexType := strings.ToUpper(strings.TrimSpace(asString(m["type"])))
		if indexType == "" {
			indexType = DefaultIndexType
		}

		seen[name] = true
		indexes = append(indexes, Index{
			Name:    name,
			Unique:  name == PrimaryIndexName || asBool(m["unique"], false),
			Type:    indexType,
			Columns: columns,
		})
	}

	SortIndexes(indexes)
	return indexes
}

func normalizeIndexColumns(raw any) []IndexColumn {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var columns []IndexColumn
	for _, item := range list {
		if s, ok := item.(string); ok {
			if strings.TrimSpace(s) == "" {
				continue
			}
			columns = append(columns, IndexColumn{Name: s})
			continue
		}

		m, ok := asMap(item)
		if !ok {
			continue
		}
		name := asString(m["name"])
		if strings.TrimSpace(name) == "" {
			continue
		}

		col := IndexColumn{Name: name}
		if lengthRaw, ok := firstValue(m, "length", "sub_part"); ok {
			if length, ok := asInt(lengthRaw); ok {
				col.Length = IntPtr(length)
			}
		}
		columns = append(columns, col)
	}
	return columns
}
