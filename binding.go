package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/bjaus/dispatch/coerce"
)

// BindingKind classifies how a handler parameter is resolved.
type BindingKind int

// Binding kinds.
const (
	BindDefault    BindingKind = iota // path, then query, then body, then default
	BindDependency                    // resolver registered under a key
	BindPath                          // declared path capture
	BindQuery                         // query parameter with a typed default
	BindBody                          // request body
)

func (k BindingKind) String() string {
	switch k {
	case BindDependency:
		return "dependency"
	case BindPath:
		return "path"
	case BindQuery:
		return "query"
	case BindBody:
		return "body"
	default:
		return "default"
	}
}

// QueryInfo is the metadata of a query parameter. Default is already typed
// and is used verbatim when the query does not carry the parameter.
type QueryInfo struct {
	Default     any
	Description string
}

// Param is the binding spec of one request field.
//
// Request structs declare their parameters with field tags:
//
//	type getTasksReq struct {
//	    Store      *store.Store `depends:"store"`
//	    ScheduleID int64        `path:"schedule_id"`
//	    Stage      *string      `query:"stage" doc:"Filter by stage"`
//	    Limit      int          `query:"limit" default:"50"`
//	    Body       TaskCreate   `body:""`
//	    Verbose    bool         `param:"verbose" default:"false"`
//	}
//
// Untagged exported fields bind by their snake_case name. A `param:"-"` tag
// excludes a field.
type Param struct {
	Name        string
	Field       string
	Type        reflect.Type
	Kind        BindingKind
	Dependency  string
	Query       *QueryInfo
	Default     any
	HasDefault  bool
	Description string

	index int
	def   reflect.Value
}

// ParamsOf derives the binding specs of a request struct type. It is
// stateless; registration calls it once per route.
func ParamsOf(t reflect.Type) ([]Param, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("request type %s is not a struct", t)
	}

	params := make([]Param, 0, t.NumField())
	names := make(map[string]string, t.NumField())
	bodies := 0
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("param") == "-" {
			continue
		}

		p := Param{
			Name:        snakeCase(f.Name),
			Field:       f.Name,
			Type:        f.Type,
			Kind:        BindDefault,
			Description: f.Tag.Get("doc"),
			index:       i,
		}

		if name, ok := f.Tag.Lookup("param"); ok && name != "" {
			p.Name = name
		}
		if key, ok := f.Tag.Lookup("depends"); ok {
			if key == "" {
				return nil, fmt.Errorf("field %s: empty dependency key", f.Name)
			}
			p.Kind = BindDependency
			p.Dependency = key
		}
		if name, ok := f.Tag.Lookup("path"); ok {
			p.Kind = BindPath
			if name != "" {
				p.Name = name
			}
		}
		if name, ok := f.Tag.Lookup("query"); ok {
			p.Kind = BindQuery
			if name != "" {
				p.Name = name
			}
		}
		if name, ok := f.Tag.Lookup("body"); ok {
			p.Kind = BindBody
			if name != "" {
				p.Name = name
			}
			bodies++
		}

		if raw, ok := f.Tag.Lookup("default"); ok {
			v, err := coerce.Value(raw, f.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: default: %w", f.Name, err)
			}
			p.def = v
			p.Default = coerce.Interface(v)
			p.HasDefault = true
		}
		if p.Kind == BindQuery {
			p.Query = &QueryInfo{Default: p.Default, Description: p.Description}
		}

		if prev, dup := names[p.Name]; dup && p.Kind != BindDependency {
			return nil, fmt.Errorf("fields %s and %s share parameter name %q", prev, f.Name, p.Name)
		}
		if p.Kind != BindDependency {
			names[p.Name] = f.Name
		}
		params = append(params, p)
	}

	if bodies > 1 {
		return nil, fmt.Errorf("request type %s declares %d body fields", t, bodies)
	}
	return params, nil
}

// input is the raw data of one dispatched request.
type input struct {
	path  map[string]string
	query url.Values
	body  any
}

// bind resolves every param into the fields of target, a settable struct.
// The override registry is read-locked for the whole bind phase.
func (a *App) bind(ctx context.Context, params []Param, target reflect.Value, in input) error {
	a.overrides.mu.RLock()
	defer a.overrides.mu.RUnlock()

	consumed := false
	for _, p := range params {
		v, err := a.resolve(ctx, p, in, &consumed)
		if err != nil {
			return &ResolutionError{Param: p.Name, Err: err}
		}
		if !v.IsValid() {
			continue
		}
		if !v.Type().AssignableTo(p.Type) {
			return &ResolutionError{
				Param: p.Name,
				Err:   fmt.Errorf("%w: %s is not assignable to %s", coerce.ErrInvalid, v.Type(), p.Type),
			}
		}
		target.Field(p.index).Set(v)
	}
	return nil
}

// resolve applies the precedence: dependency, path, query, query default,
// body, declared default.
func (a *App) resolve(ctx context.Context, p Param, in input, consumed *bool) (reflect.Value, error) {
	if p.Kind == BindDependency {
		return a.resolveDependency(ctx, p)
	}

	if raw, ok := in.path[p.Name]; ok {
		v, err := coerce.Value(raw, p.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrBindPath, p.Name, err)
		}
		return v, nil
	}

	if vals, ok := in.query[p.Name]; ok && len(vals) > 0 {
		var raw any = vals[0]
		if multiValued(p.Type) {
			raw = vals
		}
		v, err := coerce.Value(raw, p.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrBindQuery, p.Name, err)
		}
		return v, nil
	}

	if p.Query != nil {
		return p.def, nil
	}

	if in.body != nil && !*consumed {
		*consumed = true
		v, err := buildBody(in.body, p.Type)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %w", ErrBindBody, err)
		}
		return v, nil
	}

	if p.HasDefault {
		return p.def, nil
	}
	if p.Kind == BindBody {
		return reflect.Value{}, ErrMissingBody
	}
	return reflect.Value{}, ErrUnresolved
}

func (a *App) resolveDependency(ctx context.Context, p Param) (reflect.Value, error) {
	fn, ok := a.overrides.lookup(p.Dependency)
	if !ok {
		prov, found := a.provider(p.Dependency)
		if !found {
			return reflect.Value{}, fmt.Errorf("%w: %q: no provider", ErrDependency, p.Dependency)
		}
		fn = prov.fn
	}

	v, err := fn(ctx)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %q: %w", ErrDependency, p.Dependency, err)
	}
	if v == nil {
		return reflect.Zero(p.Type), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(p.Type) {
		return reflect.Value{}, fmt.Errorf("%w: %q: %s is not assignable to %s", ErrDependency, p.Dependency, rv.Type(), p.Type)
	}
	return rv, nil
}

// buildBody constructs a value of type t from a decoded body. Deserializable
// types build themselves from the raw object; assignable values pass through
// unchanged; anything else is coerced, then decoded through JSON.
func buildBody(raw any, t reflect.Type) (reflect.Value, error) {
	switch {
	case reflect.PointerTo(t).Implements(deserializableType):
		p := reflect.New(t)
		if err := fromMap(p.Interface().(Deserializable), raw); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	case t.Kind() == reflect.Pointer && t.Implements(deserializableType):
		p := reflect.New(t.Elem())
		if err := fromMap(p.Interface().(Deserializable), raw); err != nil {
			return reflect.Value{}, err
		}
		return p, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if v, err := coerce.Value(raw, t); err == nil && v.Type().AssignableTo(t) {
		return v, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(t)
	if err := json.Unmarshal(data, p.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return p.Elem(), nil
}

func fromMap(d Deserializable, raw any) error {
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("want an object, got %T", raw)
	}
	return d.FromMap(m)
}

func multiValued(t reflect.Type) bool {
	//exhaustive:ignore
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	case reflect.Pointer:
		return multiValued(t.Elem())
	}
	return false
}

// snakeCase converts a Go field name such as "MaterialID" to "material_id".
func snakeCase(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := rs[i-1]
				nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
