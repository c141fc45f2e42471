package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// Key identifies a dependency of type T. Request fields reference it by name
// with a `depends:"name"` tag.
type Key[T any] struct {
	name string
}

// NewKey returns the key for the dependency called name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the dependency name.
func (k Key[T]) Name() string { return k.name }

// Type returns the type the dependency resolves to.
func (k Key[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

// Identity is implemented by every Key.
type Identity interface {
	Name() string
}

// Resolver produces a dependency value. It runs once per parameter per
// dispatch and may block or have side effects; results are not cached.
type Resolver[T any] func(ctx context.Context) (T, error)

type resolverFunc func(ctx context.Context) (any, error)

type provider struct {
	typ reflect.Type
	fn  resolverFunc
}

func erase[T any](fn Resolver[T]) resolverFunc {
	return func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Provide registers the resolver for k, replacing any earlier one.
func Provide[T any](a *App, k Key[T], fn Resolver[T]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deps[k.name] = provider{typ: k.Type(), fn: erase(fn)}
}

// ProvideValue registers a resolver that always returns v.
func ProvideValue[T any](a *App, k Key[T], v T) {
	Provide(a, k, func(context.Context) (T, error) { return v, nil })
}

func (a *App) provider(name string) (provider, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.deps[name]
	return p, ok
}

// Validate checks that every dependency parameter of every route has a
// provider whose type is assignable to the parameter. Overrides are not
// considered. Call it once after registration.
func (a *App) Validate() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var errs []error
	for _, r := range a.routes {
		for _, p := range r.params {
			if p.Kind != BindDependency {
				continue
			}
			prov, ok := a.deps[p.Dependency]
			if !ok {
				errs = append(errs, fmt.Errorf("%s %s: parameter %q: %w: %q has no provider",
					r.method, r.pattern, p.Name, ErrDependency, p.Dependency))
				continue
			}
			if !prov.typ.AssignableTo(p.Type) {
				errs = append(errs, fmt.Errorf("%s %s: parameter %q: %w: %q provides %s, want %s",
					r.method, r.pattern, p.Name, ErrDependency, p.Dependency, prov.typ, p.Type))
			}
		}
	}
	return errors.Join(errs...)
}
