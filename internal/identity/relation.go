package identity

import "reflect"

// Views can point at a "more canonical" sibling through one of exactly two
// relation slots, tried in fixed priority order: the raw slot first, then the
// request slot. Raw-before-request encodes the common case where a primitive
// representation nests one level inside a decorated one; any fixed tie-break
// would do as long as every caller shares it.
//
// A relation slot is recognized in one of two shapes:
//
//   - an accessor interface (RawCarrier, RequestCarrier), or
//   - an exported struct field named Raw or Request, or a "raw"/"req" entry
//     in a string-keyed map view.

// RawCarrier exposes the raw relation slot: the undecorated object this view
// wraps.
type RawCarrier interface {
	RawView() any
}

// RequestCarrier exposes the request relation slot: the request object a
// higher-level context carries.
type RequestCarrier interface {
	RequestView() any
}

// relation names, in priority order.
var (
	rawFieldName = "Raw"
	reqFieldName = "Request"
	rawMapKey    = "raw"
	reqMapKey    = "req"
)

// pickRelation returns the first relation slot of view that is present and
// itself a reference, or view itself when neither slot qualifies. It looks
// exactly one hop deep, so cyclic relation graphs cannot recurse.
func pickRelation(view any) any {
	if rc, ok := view.(RawCarrier); ok {
		if rel := rc.RawView(); isReference(rel) {
			return rel
		}
	} else if rel, ok := slotValue(view, rawFieldName, rawMapKey); ok && isReference(rel) {
		return rel
	}

	if rc, ok := view.(RequestCarrier); ok {
		if rel := rc.RequestView(); isReference(rel) {
			return rel
		}
	} else if rel, ok := slotValue(view, reqFieldName, reqMapKey); ok && isReference(rel) {
		return rel
	}

	return view
}

// slotValue reads a named slot from a struct pointer or a string-keyed map.
// Unexported fields and absent slots report ok=false.
func slotValue(view any, fieldName, mapKey string) (any, bool) {
	rv := reflect.ValueOf(view)

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		f, ok := rv.Type().FieldByName(fieldName)
		if !ok || !f.IsExported() || len(f.Index) != 1 {
			return nil, false
		}

		return rv.Field(f.Index[0]).Interface(), true

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		mv := rv.MapIndex(reflect.ValueOf(mapKey).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}

		return mv.Interface(), true

	default:
		return nil, false
	}
}
