// Package model provides declarative records with field defaults,
// per-instance default factories, and tracking of which fields were supplied
// explicitly. The explicitly-set fields of a record are what a partial update
// should write; defaulted fields never leak into it.
//
//	var contact = model.NewSchema("Contact",
//	    model.Field{Name: "phone", Type: model.String},
//	)
//	var member = model.NewSchema("Member",
//	    model.Field{Name: "name", Type: model.String, Required: true},
//	    model.Field{Name: "contact", Schema: contact, Factory: contact.Factory()},
//	)
//
//	rec, err := member.New(map[string]any{"name": "Kento"})
//	rec.ExplicitFields() // map[name:Kento]
package model

import (
	"fmt"
	"reflect"
)

// Common field types.
var (
	String  = reflect.TypeFor[string]()
	Int     = reflect.TypeFor[int64]()
	Float   = reflect.TypeFor[float64]()
	Bool    = reflect.TypeFor[bool]()
	Strings = reflect.TypeFor[[]string]()
	Ints    = reflect.TypeFor[[]int64]()
)

// Field declares one field of a Schema.
type Field struct {
	// Name is the wire name of the field.
	Name string

	// Type, when set, is the type provided values are coerced to.
	// A nil Type stores values as given.
	Type reflect.Type

	// Schema, when set, builds nested records from provided maps.
	Schema *Schema

	// Default is stored when the field is not provided and Factory is nil.
	// It is shared by every record, so it should be immutable.
	Default any

	// Factory produces a fresh default for each record.
	Factory func() any

	// Required fields must be provided with a non-nil value.
	Required bool

	// Check validates a provided non-nil value after coercion.
	Check Check

	// Description documents the field.
	Description string
}

// Schema is an ordered set of field declarations.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
}

// NewSchema creates a schema. It panics on duplicate or empty field names.
func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		s.add(f)
	}
	return s
}

func (s *Schema) add(f Field) {
	if f.Name == "" {
		panic(fmt.Sprintf("model: %s: field with empty name", s.name))
	}
	if i, ok := s.index[f.Name]; ok {
		// Redeclaration in an extension replaces the inherited field in place.
		s.fields[i] = f
		return
	}
	s.index[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the field declarations in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Extend returns a new schema with the fields of s followed by fields.
// A field whose name already exists in s replaces the inherited declaration.
func (s *Schema) Extend(name string, fields ...Field) *Schema {
	out := NewSchema(name, s.fields...)
	for _, f := range fields {
		out.add(f)
	}
	return out
}

// Partial returns a schema for partial updates: every field of s becomes
// optional with a nil default. Types, nested schemas and checks are kept.
func (s *Schema) Partial(name string) *Schema {
	out := &Schema{
		name:   name,
		fields: make([]Field, 0, len(s.fields)),
		index:  make(map[string]int, len(s.fields)),
	}
	for _, f := range s.fields {
		f.Required = false
		f.Default = nil
		f.Factory = nil
		out.add(f)
	}
	return out
}

// Factory returns a default factory that builds an empty record of s.
// Each call of the returned function yields a new record.
func (s *Schema) Factory() func() any {
	return func() any {
		rec, err := s.New(nil)
		if err != nil {
			panic(fmt.Sprintf("model: %s: default record: %v", s.name, err))
		}
		return rec
	}
}

// List returns a default factory that yields a new empty slice of T.
func List[T any]() func() any {
	return func() any { return []T{} }
}
