package dispatch

import (
	"context"
	"sync"
)

// Overrides maps dependency names to replacement resolvers. An App binds
// under its read lock, so changes never interleave with a bind phase.
//
// Resolvers must not change overrides; doing so from inside a dispatch
// deadlocks.
type Overrides struct {
	mu sync.RWMutex
	m  map[string]resolverFunc
}

// NewOverrides returns an empty registry. Share one between apps with
// WithOverrides.
func NewOverrides() *Overrides {
	return &Overrides{m: make(map[string]resolverFunc)}
}

// lookup must be called with mu held.
func (o *Overrides) lookup(name string) (resolverFunc, bool) {
	fn, ok := o.m[name]
	return fn, ok
}

func (o *Overrides) set(name string, fn resolverFunc) func() {
	o.mu.Lock()
	prev, had := o.m[name]
	o.m[name] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if had {
				o.m[name] = prev
				return
			}
			delete(o.m, name)
		})
	}
}

// Clear removes the override for name.
func (o *Overrides) Clear(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.m, name)
}

// ClearAll removes every override.
func (o *Overrides) ClearAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.m)
}

// Len returns the number of active overrides.
func (o *Overrides) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.m)
}

// Override replaces the resolver of k until the returned restore function is
// called. Restore puts back whatever override was active before, so nested
// overrides unwind in order:
//
//	restore := dispatch.Override(app, backend.StoreKey, fakeStore)
//	defer restore()
func Override[T any](a *App, k Key[T], fn Resolver[T]) (restore func()) {
	return a.overrides.set(k.name, erase(fn))
}

// OverrideValue overrides k with a resolver that always returns v.
func OverrideValue[T any](a *App, k Key[T], v T) (restore func()) {
	return Override(a, k, func(context.Context) (T, error) { return v, nil })
}

// ClearOverride removes the override for k.
func (a *App) ClearOverride(k Identity) {
	a.overrides.Clear(k.Name())
}

// ClearOverrides removes every override.
func (a *App) ClearOverrides() {
	a.overrides.ClearAll()
}

// Overrides returns the registry the app resolves overrides from.
func (a *App) Overrides() *Overrides { return a.overrides }
