// Package coerce converts untyped input (path segments, query strings, decoded
// JSON) into declared Go types.
//
// The conversion is driven entirely by the target reflect.Type:
//
//	*T                 nullable T; nil or "" become nil
//	OneOf[A, B]        first alternative that coerces wins
//	[]T, [N]T          each element coerced in order
//	int*, uint*, float*, string, bool
//	encoding.TextUnmarshaler (time.Time, netip.Addr, ...)
//	anything else      raw value passed through when assignable
//
// Every function in this package is pure.
package coerce

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ErrInvalid is matched by every coercion failure.
var ErrInvalid = errors.New("invalid value")

var errNotAssignable = errors.New("not assignable")

// Error describes a value that could not be coerced to a target type.
type Error struct {
	Value any
	Type  reflect.Type
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot use %#v as %s: %v", e.Value, e.Type, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalid.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

var (
	alternativesType    = reflect.TypeFor[Alternatives]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Coerce converts raw to t and returns the result as an interface value.
// A nil raw value is returned as nil for every target type, and a nil
// pointer result is returned as an untyped nil.
func Coerce(raw any, t reflect.Type) (any, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := Value(raw, t)
	if err != nil {
		return nil, err
	}
	return Interface(v), nil
}

// To is the generic form of Coerce.
func To[T any](raw any) (T, error) {
	var zero T
	v, err := Value(raw, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	if !v.IsValid() {
		return zero, nil
	}
	return v.Interface().(T), nil
}

// Interface unwraps v, mapping invalid values and nil pointers, slices,
// maps and interfaces to an untyped nil.
func Interface(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

// Value converts raw to a value of type t. A nil raw value yields the zero
// value of t.
func Value(raw any, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(t), nil
	}
	if rv := reflect.ValueOf(raw); rv.Type() == t {
		return rv, nil
	}

	if reflect.PointerTo(t).Implements(alternativesType) {
		return alternatives(raw, t)
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Pointer:
		if absent(raw) {
			return reflect.Zero(t), nil
		}
		inner, err := Value(raw, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if s, ok := raw.(string); ok {
				return reflect.ValueOf([]byte(s)).Convert(t), nil
			}
		}
		return sequence(raw, t)
	case reflect.Array:
		return sequence(raw, t)
	}

	if t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		if s, ok := raw.(string); ok {
			p := reflect.New(t)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return reflect.Value{}, &Error{Value: raw, Type: t, Err: err}
			}
			return p.Elem(), nil
		}
	}

	return primitive(raw, t)
}

// absent reports whether raw stands for a missing optional value.
func absent(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && s == ""
}

func alternatives(raw any, t reflect.Type) (reflect.Value, error) {
	if absent(raw) {
		return reflect.Zero(t), nil
	}
	alts := reflect.New(t).Interface().(Alternatives).Alternatives()
	errs := make([]error, 0, len(alts))
	for _, alt := range alts {
		v, err := Value(raw, alt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p := reflect.New(t)
		p.Interface().(Alternatives).SetAlternative(v.Interface())
		return p.Elem(), nil
	}
	return reflect.Value{}, &Error{Value: raw, Type: t, Err: errors.Join(errs...)}
}

func sequence(raw any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return reflect.Value{}, &Error{Value: raw, Type: t, Err: errors.New("not a sequence")}
	}

	n := rv.Len()
	var out reflect.Value
	if t.Kind() == reflect.Array {
		if n != t.Len() {
			return reflect.Value{}, &Error{Value: raw, Type: t, Err: fmt.Errorf("want %d elements, got %d", t.Len(), n)}
		}
		out = reflect.New(t).Elem()
	} else {
		out = reflect.MakeSlice(t, n, n)
	}

	for i := range n {
		elem, err := Value(rv.Index(i).Interface(), t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("index %d: %w", i, err)
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

func primitive(raw any, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	fail := func(err error) (reflect.Value, error) {
		return reflect.Value{}, &Error{Value: raw, Type: t, Err: err}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(raw)
		if err != nil {
			return fail(err)
		}
		if out.OverflowInt(n) {
			return fail(strconv.ErrRange)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := toInt(raw)
		if err != nil {
			return fail(err)
		}
		if n < 0 || out.OverflowUint(uint64(n)) {
			return fail(strconv.ErrRange)
		}
		out.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat(raw)
		if err != nil {
			return fail(err)
		}
		if out.OverflowFloat(f) {
			return fail(strconv.ErrRange)
		}
		out.SetFloat(f)
	case reflect.String:
		out.SetString(toString(raw))
	case reflect.Bool:
		b, err := toBool(raw)
		if err != nil {
			return fail(err)
		}
		out.SetBool(b)
	default:
		rv := reflect.ValueOf(raw)
		switch {
		case rv.Type().AssignableTo(t):
			out.Set(rv)
		case rv.Type().ConvertibleTo(t) && t.Kind() != reflect.Struct:
			return rv.Convert(t), nil
		default:
			return fail(errNotAssignable)
		}
	}
	return out, nil
}

func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return truncate(f)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}

	rv := reflect.ValueOf(raw)
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, strconv.ErrRange
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return truncate(rv.Float())
	case reflect.String:
		return strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
	}
	return 0, fmt.Errorf("%T is not a number", raw)
}

func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrRange
	}
	return int64(f), nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case json.Number:
		return v.Float64()
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}

	rv := reflect.ValueOf(raw)
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
	}
	return 0, fmt.Errorf("%T is not a number", raw)
}

func toString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(raw)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	n, err := toInt(raw)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
