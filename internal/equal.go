package internal

import (
	"math"
	"reflect"
)

// sameValue reports whether a and b are the same value, NaN being equal to itself.
// Values that can't be compared (slices, maps, funcs) are never the same.
func sameValue(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}

	return a == b
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}

	return false
}

// isObject reports whether v may change in place without changing identity.
func isObject(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case *Object, *Array:
		return true
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		return true
	}

	return false
}
