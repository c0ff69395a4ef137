package identity

import "reflect"

// refKey is a comparable stand-in for an object reference, used to key the
// side tables. Two views produce the same refKey exactly when they are the
// same pointer, map, channel, function, or slice header. The type is part of
// the key so that unrelated objects that happen to share an address (such as
// a struct and its first field) stay distinct.
type refKey struct {
	ptr uintptr
	typ reflect.Type
}

// referenceKey classifies a value as a reference and returns its identity
// key. Non-reference values (nil, strings, numbers, plain struct values) have
// no stable identity and report ok=false.
func referenceKey(v any) (refKey, bool) {
	if v == nil {
		return refKey{}, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		if rv.IsNil() {
			return refKey{}, false
		}

		return refKey{ptr: rv.Pointer(), typ: rv.Type()}, true
	default:
		return refKey{}, false
	}
}

// isReference reports whether v is a non-nil reference value.
func isReference(v any) bool {
	_, ok := referenceKey(v)
	return ok
}

// sameReference reports whether a and b denote the identical reference.
// Unlike ==, it never panics on non-comparable dynamic types.
func sameReference(a, b any) bool {
	ka, okA := referenceKey(a)
	if !okA {
		return false
	}

	kb, okB := referenceKey(b)
	if !okB {
		return false
	}

	return ka == kb
}
