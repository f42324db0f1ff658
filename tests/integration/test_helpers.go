//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tordrt/myschema/internal/schema"
)

// verifyObjectsExist checks that exactly the expected objects are present
func verifyObjectsExist(t *testing.T, doc *schema.Document, expected []string) {
	t.Helper()

	if len(doc.Objects) != len(expected) {
		t.Errorf("Expected %d objects, got %d", len(expected), len(doc.Objects))
	}

	for _, name := range expected {
		if _, ok := doc.Find(name); !ok {
			t.Errorf("Expected object %s not found in document", name)
		}
	}
}

// verifyColumns checks that expected columns exist, in order, in an object
func verifyColumns(t *testing.T, obj *schema.Object, expected []string) {
	t.Helper()

	if len(obj.Fields) != len(expected) {
		t.Errorf("Expected %d columns in %s, got %d", len(expected), obj.Name, len(obj.Fields))
		return
	}

	for i, name := range expected {
		if obj.Fields[i].Name != name {
			t.Errorf("Expected column %d of %s to be %s, got %s", i+1, obj.Name, name, obj.Fields[i].Name)
		}
		if obj.Fields[i].Position != i+1 {
			t.Errorf("Expected column %s.%s at position %d, got %d", obj.Name, name, i+1, obj.Fields[i].Position)
		}
	}
}

// verifyPrimaryKey checks that the first index is PRIMARY over the expected columns
func verifyPrimaryKey(t *testing.T, obj *schema.Object, expected []string) {
	t.Helper()

	if len(obj.Indexes) == 0 || !obj.Indexes[0].IsPrimary() {
		t.Errorf("Expected %s to start with a PRIMARY index, got %v", obj.Name, obj.Indexes)
		return
	}

	verifyIndexColumns(t, obj.Name, obj.Indexes[0], expected)
}

// verifyIndex checks that an index exists with the expected columns and uniqueness
func verifyIndex(t *testing.T, obj *schema.Object, indexName string, unique bool, expected []string) {
	t.Helper()

	for _, ix := range obj.Indexes {
		if ix.Name != indexName {
			continue
		}
		if ix.Unique != unique {
			t.Errorf("Expected index %s.%s unique=%v, got %v", obj.Name, indexName, unique, ix.Unique)
		}
		verifyIndexColumns(t, obj.Name, ix, expected)
		return
	}

	t.Errorf("Expected index %s on %s not found", indexName, obj.Name)
}

func verifyIndexColumns(t *testing.T, objName string, ix schema.Index, expected []string) {
	t.Helper()

	if len(ix.Columns) != len(expected) {
		t.Errorf("Expected index %s.%s on %v, got %v", objName, ix.Name, expected, ix.Columns)
		return
	}
	for i, col := range expected {
		if ix.Columns[i].Name != col {
			t.Errorf("Expected index %s.%s on %v, got %v", objName, ix.Name, expected, ix.Columns)
			return
		}
	}
}

// findObject is a helper function to find an object by name in the document
func findObject(t *testing.T, doc *schema.Document, name string) *schema.Object {
	t.Helper()

	for i := range doc.Objects {
		if doc.Objects[i].Name == name {
			return &doc.Objects[i]
		}
	}
	t.Fatalf("Object %s not found", name)
	return nil
}
