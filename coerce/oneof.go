package coerce

import (
	"encoding/json"
	"reflect"
)

// Alternatives is implemented by union types that accept one of several
// declared representations. Value tries each type returned by Alternatives in
// order and stores the first successful conversion with SetAlternative.
//
// Alternatives is called on a fresh zero value, so implementations must not
// depend on receiver state.
type Alternatives interface {
	Alternatives() []reflect.Type
	SetAlternative(v any)
}

// OneOf holds a value that is either an A or a B. A is preferred when the
// raw input satisfies both.
type OneOf[A, B any] struct {
	Value any
}

// Alternatives returns A and B, in that order.
func (*OneOf[A, B]) Alternatives() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
}

// SetAlternative stores v.
func (o *OneOf[A, B]) SetAlternative(v any) { o.Value = v }

// First returns the value when it holds an A.
func (o OneOf[A, B]) First() (A, bool) {
	v, ok := o.Value.(A)
	return v, ok
}

// Second returns the value when it holds a B.
func (o OneOf[A, B]) Second() (B, bool) {
	v, ok := o.Value.(B)
	return v, ok
}

// IsZero reports whether no alternative has been set.
func (o OneOf[A, B]) IsZero() bool { return o.Value == nil }

// MarshalJSON encodes the held value.
func (o OneOf[A, B]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes data and coerces it to the first matching alternative.
func (o *OneOf[A, B]) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		o.Value = nil
		return nil
	}
	v, err := Value(raw, reflect.TypeFor[OneOf[A, B]]())
	if err != nil {
		return err
	}
	*o = v.Interface().(OneOf[A, B])
	return nil
}
