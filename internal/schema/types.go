package schema

import (
	"sort"
	"strings"
)

// Defaults applied to a Database when the document omits them
const (
	DefaultCharacterSet = "utf8mb4"
	DefaultCollation    = "utf8mb4_unicode_ci"
	DefaultFieldType    = "varchar(255)"
	DefaultIndexType    = "BTREE"

	// PrimaryIndexName is reserved for the primary key and always sorts first
	PrimaryIndexName = "PRIMARY"
)

// ObjectType is either a base table or a view
type ObjectType string

const (
	ObjectTable ObjectType = "table"
	ObjectView  ObjectType = "view"
)

// ParseObjectType maps anything other than "view" to ObjectTable
func ParseObjectType(v string) ObjectType {
	if strings.EqualFold(strings.TrimSpace(v), string(ObjectView)) {
		return ObjectView
	}
	return ObjectTable
}

// DefaultKind describes how DefaultValue is interpreted
type DefaultKind string

const (
	DefaultNone       DefaultKind = "none"
	DefaultNull       DefaultKind = "null"
	DefaultLiteral    DefaultKind = "literal"
	DefaultExpression DefaultKind = "expression"
)

// Document is the portable representation of one database schema
type Document struct {
	Database    Database `json:"database" yaml:"database"`
	Objects     []Object `json:"objects" yaml:"objects"`
	GeneratedAt string   `json:"generated_at,omitempty" yaml:"generated_at,omitempty"`
}

// Database describes the schema container
type Database struct {
	Name                string `json:"name" yaml:"name"`
	DefaultCharacterSet string `json:"default_character_set" yaml:"default_character_set"`
	DefaultCollation    string `json:"default_collation" yaml:"default_collation"`
}

// Object is a table or a view
type Object struct {
	Name      string     `json:"name" yaml:"name"`
	Type      ObjectType `json:"type" yaml:"type"`
	Engine    string     `json:"engine" yaml:"engine"`
	Collation string     `json:"collation" yaml:"collation"`
	CreateSQL string     `json:"create_sql" yaml:"create_sql"`
	Fields    []Field    `json:"fields" yaml:"fields"`
	Indexes   []Index    `json:"indexes" yaml:"indexes"`
}

// IsView reports whether the object is a view
func (o Object) IsView() bool {
	return o.Type == ObjectView
}

// Field is a single column
type Field struct {
	Name                 string      `json:"name" yaml:"name"`
	Position             int         `json:"position" yaml:"position"`
	Type                 string      `json:"type" yaml:"type"`
	Nullable             bool        `json:"nullable" yaml:"nullable"`
	DefaultKind          DefaultKind `json:"default_kind" yaml:"default_kind"`
	DefaultValue         string      `json:"default_value" yaml:"default_value"`
	Extra                string      `json:"extra" yaml:"extra"`
	Key                  string      `json:"key" yaml:"key"`
	Collation            string      `json:"collation" yaml:"collation"`
	Comment              string      `json:"comment" yaml:"comment"`
	GenerationExpression string      `json:"generation_expression" yaml:"generation_expression"`
}

// Index is a named index over one or more columns
type Index struct {
	Name    string        `json:"name" yaml:"name"`
	Unique  bool          `json:"unique" yaml:"unique"`
	Type    string        `json:"type" yaml:"type"`
	Columns []IndexColumn `json:"columns" yaml:"columns"`
}

// IsPrimary reports whether this is the primary key
func (ix Index) IsPrimary() bool {
	return ix.Name == PrimaryIndexName
}

// IndexColumn is one indexed column with an optional prefix length
type IndexColumn struct {
	Name   string `json:"name" yaml:"name"`
	Length *int   `json:"length" yaml:"length"`
}

// SortFields orders fields by (position, name). The sort is stable.
func SortFields(fields []Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Position != fields[j].Position {
			return fields[i].Position < fields[j].Position
		}
		return fields[i].Name < fields[j].Name
	})
}

// SortIndexes puts PRIMARY first, then orders by name
func SortIndexes(indexes []Index) {
	sort.SliceStable(indexes, func(i, j int) bool {
		a, b := indexes[i].Name, indexes[j].Name
		if a == PrimaryIndexName || b == PrimaryIndexName {
			return a == PrimaryIndexName && b != PrimaryIndexName
		}
		return a < b
	})
}

// Find returns the object with the given name
func (d *Document) Find(name string) (Object, bool) {
	for _, o := range d.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// IntPtr is a convenience for building IndexColumn lengths
func IntPtr(v int) *int {
	return &v
}
