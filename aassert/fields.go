package aassert

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// NumFields asserts that object, a struct or a pointer to one, has expected exported fields.
// Fields of nested structs count as well, also if they are reached through a pointer,
// slice, array, or map.
//
// Use it next to code mapping a struct between layers, e.g. an entity to a database row,
// so a new field makes the test fail until the mapping is revisited.
func NumFields(t *testing.T, expected int, object any, msgAndArgs ...any) bool {
	t.Helper()

	typ := reflect.TypeOf(object)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ == nil || typ.Kind() != reflect.Struct {
		return assert.Fail(t, fmt.Sprintf("expected a struct, got: %T", object), msgAndArgs...)
	}

	actual := countFields(typ)
	if actual != expected {
		t.Logf("the fields of %s changed: check every function mapping it and update the expected count", typ)

		return assert.Fail(t, fmt.Sprintf("struct %s has %d fields, expected: %d", typ, actual, expected), msgAndArgs...)
	}

	return true
}

func countFields(typ reflect.Type) int {
	for typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice ||
		typ.Kind() == reflect.Array || typ.Kind() == reflect.Map {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return 0
	}

	var n int

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		n += 1 + countFields(field.Type)
	}

	return n
}
