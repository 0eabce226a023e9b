// Package doc holds the JSON-like document tree edited by guideforge and the
// path-addressed, copy-on-write operations over it.
//
// A tree is built from Map, List, string, int, float64, bool and nil.
// Values coming from JSON, YAML or Go structs are brought into that shape
// with Normalize before they are stored.
package doc

import (
	"math"
	"reflect"

	"github.com/goccy/go-json"
)

// Map is a record node.
type Map = map[string]any

// List is a collection node.
type List = []any

// Normalize returns a deep copy of v using only the tree's value types.
// Integral floats become ints so that values decoded from JSON and YAML
// compare equal.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, int:
		return t
	case Map:
		out := make(Map, len(t))
		for k, x := range t {
			out[k] = Normalize(x)
		}
		return out
	case List:
		out := make(List, len(t))
		for i, x := range t {
			out[i] = Normalize(x)
		}
		return out
	case float64:
		return normalizeFloat(t)
	case float32:
		return normalizeFloat(float64(t))
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case uint64:
		return int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return normalizeFloat(f)
		}
		return t.String()
	}
	return normalizeReflect(reflect.ValueOf(v))
}

func normalizeFloat(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}

// normalizeReflect handles typed slices, string-keyed maps and pointers,
// e.g. []string skill levels built in Go code.
func normalizeReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make(List, rv.Len())
		for i := range out {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		if rv.IsNil() {
			return nil
		}
		out := make(Map, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return rv.Interface()
}

// Equal reports whether a and b are structurally equal after normalization.
func Equal(a, b any) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}

// Same reports whether a and b are the same container instance. It backs
// change detection by reference: untouched branches keep their identity
// across mutations.
func Same(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() || ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map:
		return ra.UnsafePointer() == rb.UnsafePointer()
	case reflect.Slice:
		return ra.Len() == rb.Len() && ra.UnsafePointer() == rb.UnsafePointer()
	}
	return false
}
