package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/bjaus/dispatch/coerce"
)

// New builds a record from provided values.
//
// A provided field is coerced to its declared Type (or built from its nested
// Schema), checked, stored and marked explicitly set. A missing field gets a
// fresh value from its Factory, else its Default, else nil, and is not marked.
// Provided names the schema does not declare are retained as given and are
// marked explicitly set.
//
// All field failures are collected into a single *ValidationError.
func (s *Schema) New(provided map[string]any) (*Record, error) {
	r := &Record{
		schema: s,
		values: make(map[string]any, len(s.fields)+len(provided)),
		set:    make(map[string]struct{}, len(provided)),
	}

	var errs []FieldError
	for _, f := range s.fields {
		raw, ok := provided[f.Name]
		if !ok {
			if f.Required {
				errs = append(errs, FieldError{Field: f.Name, Message: "field required"})
				continue
			}
			r.values[f.Name] = f.defaultValue()
			continue
		}

		v, err := f.convert(raw)
		if err != nil {
			errs = append(errs, fieldErrors(f.Name, err)...)
			continue
		}
		if v == nil && f.Required {
			errs = append(errs, FieldError{Field: f.Name, Message: "must not be null"})
			continue
		}
		r.values[f.Name] = v
		r.set[f.Name] = struct{}{}
	}

	for name, v := range provided {
		if _, declared := s.index[name]; declared {
			continue
		}
		r.values[name] = v
		r.set[name] = struct{}{}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Schema: s.name, Errors: errs}
	}
	return r, nil
}

func (f Field) defaultValue() any {
	if f.Factory != nil {
		return f.Factory()
	}
	return f.Default
}

func (f Field) convert(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	var v any
	switch {
	case f.Schema != nil:
		switch in := raw.(type) {
		case *Record:
			v = in
		case map[string]any:
			rec, err := f.Schema.New(in)
			if err != nil {
				return nil, err
			}
			v = rec
		default:
			return nil, fmt.Errorf("must be an object, got %T", raw)
		}
	case f.Type != nil:
		c, err := coerce.Coerce(raw, f.Type)
		if err != nil {
			return nil, err
		}
		v = c
	default:
		v = raw
	}

	if f.Check != nil && v != nil {
		if err := f.Check(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// fieldErrors flattens err into field errors rooted at name.
func fieldErrors(name string, err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		out := make([]FieldError, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			out = append(out, FieldError{Field: name + "." + fe.Field, Message: fe.Message})
		}
		return out
	}
	var ce *coerce.Error
	if errors.As(err, &ce) {
		return []FieldError{{Field: name, Message: "must be " + coerce.Describe(ce.Type)}}
	}
	return []FieldError{{Field: name, Message: err.Error()}}
}

// Record is a schema instance: a value per field plus the set of fields that
// were explicitly supplied.
//
// Records are not safe for concurrent mutation.
type Record struct {
	schema *Schema
	values map[string]any
	set    map[string]struct{}
}

// Schema returns the schema r was built from.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of name, or nil.
func (r *Record) Get(name string) any { return r.values[name] }

// Lookup returns the value of name and whether r holds it at all.
func (r *Record) Lookup(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set stores v and marks name explicitly set.
func (r *Record) Set(name string, v any) {
	r.values[name] = v
	r.set[name] = struct{}{}
}

// IsSet reports whether name was explicitly supplied.
func (r *Record) IsSet(name string) bool {
	_, ok := r.set[name]
	return ok
}

// Names returns the explicitly set field names in sorted order.
func (r *Record) Names() []string {
	return slices.Sorted(maps.Keys(r.set))
}

// ExplicitFields returns only the explicitly set fields. Nested records
// contribute their own explicit fields. Explicit nil values are included.
func (r *Record) ExplicitFields() map[string]any {
	out := make(map[string]any, len(r.set))
	for name := range r.set {
		out[name] = plain(r.values[name], true)
	}
	return out
}

// ToMap returns every field value, converting nested records to maps.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, len(r.values))
	for name, v := range r.values {
		out[name] = plain(v, false)
	}
	return out
}

// MarshalJSON encodes ToMap.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

func plain(v any, explicit bool) any {
	switch t := v.(type) {
	case *Record:
		if t == nil {
			return nil
		}
		if explicit {
			return t.ExplicitFields()
		}
		return t.ToMap()
	case []*Record:
		out := make([]any, len(t))
		for i, rec := range t {
			out[i] = plain(rec, explicit)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e, explicit)
		}
		return out
	}
	return v
}

// Value returns the value of name as a T. Values stored with a different
// type are coerced; ok is false when the field is nil or does not convert.
func Value[T any](r *Record, name string) (v T, ok bool) {
	raw := r.Get(name)
	if raw == nil {
		return v, false
	}
	if t, isT := raw.(T); isT {
		return t, true
	}
	t, err := coerce.To[T](raw)
	if err != nil {
		return v, false
	}
	return t, true
}
