package coerce

import (
	"reflect"
	"strings"
)

// Describe names the values of t for error messages shown to clients, such
// as "an integer" or "a list of string". It never exposes Go type names.
func Describe(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(alternativesType) {
		alts := reflect.New(t).Interface().(Alternatives).Alternatives()
		names := make([]string, 0, len(alts))
		for _, alt := range alts {
			names = append(names, Describe(alt))
		}
		return strings.Join(names, " or ")
	}
	if t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return "a valid " + strings.ToLower(t.Name())
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "a list of " + strings.TrimPrefix(strings.TrimPrefix(Describe(t.Elem()), "an "), "a ")
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a valid value"
}
