package dispatch

import "reflect"

// Serializable is implemented by values that convert themselves to a plain
// map for the wire.
type Serializable interface {
	ToMap() map[string]any
}

// Deserializable is implemented by body types that build themselves from a
// decoded JSON object.
type Deserializable interface {
	FromMap(m map[string]any) error
}

var (
	serializableType   = reflect.TypeFor[Serializable]()
	deserializableType = reflect.TypeFor[Deserializable]()
)

// Serialize converts v to its wire form:
//
//	nil                    nil
//	Serializable           ToMap, serialized recursively
//	pointer                the serialized pointee
//	slice, array           []any of serialized elements (a nil slice is empty)
//	map with string keys   map[string]any of serialized values
//	anything else          unchanged
func Serialize(v any) any {
	if v == nil {
		return nil
	}
	return serializeValue(reflect.ValueOf(v))
}

func serializeValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	if rv.Type().Implements(serializableType) {
		if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return nil
		}
		return serializeValue(reflect.ValueOf(rv.Interface().(Serializable).ToMap()))
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(serializableType) {
		return serializeValue(reflect.ValueOf(rv.Addr().Interface().(Serializable).ToMap()))
	}

	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return serializeValue(rv.Elem())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Interface()
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = serializeValue(rv.Index(i))
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = serializeValue(iter.Value())
		}
		return out
	}
	return rv.Interface()
}
