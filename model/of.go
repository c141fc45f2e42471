package model

import "encoding/json"

// Definition names the schema of a record type. Implementations are
// zero-size marker types:
//
//	type materialSpec struct{}
//
//	func (materialSpec) Schema() *model.Schema { return materialSchema }
//
//	type Material = model.Of[materialSpec]
type Definition interface {
	Schema() *Schema
}

// Of is a record of the schema named by S. It can be built from a raw map
// and converted back to one, so it works as a typed request body.
type Of[S Definition] struct {
	*Record
}

// FromMap builds the record from m using the schema of S.
func (o *Of[S]) FromMap(m map[string]any) error {
	var def S
	rec, err := def.Schema().New(m)
	if err != nil {
		return err
	}
	o.Record = rec
	return nil
}

// Build constructs an Of[S] from m.
func Build[S Definition](m map[string]any) (Of[S], error) {
	var o Of[S]
	err := o.FromMap(m)
	return o, err
}

// ToMap returns every field value, or nil for an unbuilt record.
func (o Of[S]) ToMap() map[string]any {
	if o.Record == nil {
		return nil
	}
	return o.Record.ToMap()
}

// ExplicitFields returns the explicitly set fields, or an empty map for an
// unbuilt record.
func (o Of[S]) ExplicitFields() map[string]any {
	if o.Record == nil {
		return map[string]any{}
	}
	return o.Record.ExplicitFields()
}

// MarshalJSON encodes ToMap.
func (o Of[S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ToMap())
}

// UnmarshalJSON decodes a JSON object and builds the record from it.
func (o *Of[S]) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	return o.FromMap(m)
}
