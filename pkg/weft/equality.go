package weft

import (
	"math"
	"reflect"
)

// sameValue reports whether a and b are the same value.
//
// This is same-value equality, not structural equality: NaN is equal to
// itself, +0 and -0 are distinct, comparable values use ==, and
// non-comparable kinds (slice, map, func, chan) compare by referent
// identity. Values of different dynamic types are never equal.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && sameFloat(av, bv)
	case float32:
		bv, ok := b.(float32)
		return ok && sameFloat(float64(av), float64(bv))
	}

	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		// Identity of the referent, never deep equality.
		if ra.IsNil() || rb.IsNil() {
			return ra.IsNil() && rb.IsNil()
		}
		return ra.Pointer() == rb.Pointer()
	}

	if !ra.Comparable() {
		return false
	}
	return a == b
}

// sameFloat is same-value equality for floats: NaN equals NaN, and +0 and
// -0 are distinct.
func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	if a != b {
		return false
	}
	// a == b: catch +0 vs -0
	return math.Signbit(a) == math.Signbit(b)
}

// sameValueOf is sameValue over a generic pair.
func sameValueOf[T any](a, b T) bool {
	return sameValue(any(a), any(b))
}

// depsChanged reports whether a dependency snapshot changed: any length
// mismatch or any positional same-value inequality means "changed".
func depsChanged(old, next []any) bool {
	if len(old) != len(next) {
		return true
	}
	for i := range next {
		if !sameValue(old[i], next[i]) {
			return true
		}
	}
	return false
}
