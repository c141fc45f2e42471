package dispatch_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
)

// connApp returns an app whose GET /conn reports the name of the resolved conn.
func connApp(opts ...dispatch.AppOption) *dispatch.App {
	type req struct {
		Conn *conn `depends:"conn"`
	}

	app := dispatch.New(opts...)
	dispatch.ProvideValue(app, connKey, &conn{name: "original"})
	dispatch.Get(app, "/conn", func(_ context.Context, r *req) (*string, error) {
		return &r.Conn.name, nil
	})
	return app
}

func observed(t *testing.T, app *dispatch.App) any {
	t.Helper()

	resp, err := app.Dispatch(context.Background(), dispatch.Request{Method: http.MethodGet, Path: "/conn"})
	require.NoError(t, err)
	return resp.Body
}

func TestOverride_clear_all(t *testing.T) {
	t.Parallel()

	app := connApp()
	dispatch.OverrideValue(app, connKey, &conn{name: "fake"})

	assert.Equal(t, "fake", observed(t, app))

	app.ClearOverrides()
	assert.Equal(t, "original", observed(t, app))
	assert.Zero(t, app.Overrides().Len())
}

func TestOverride_clear_one(t *testing.T) {
	t.Parallel()

	app := connApp()
	dispatch.OverrideValue(app, connKey, &conn{name: "fake"})
	app.ClearOverride(connKey)

	assert.Equal(t, "original", observed(t, app))
}

func TestOverride_restore_unwinds(t *testing.T) {
	t.Parallel()

	app := connApp()

	restoreOuter := dispatch.OverrideValue(app, connKey, &conn{name: "outer"})
	restoreInner := dispatch.Override(app, connKey, func(context.Context) (*conn, error) {
		return &conn{name: "inner"}, nil
	})
	assert.Equal(t, "inner", observed(t, app))

	restoreInner()
	assert.Equal(t, "outer", observed(t, app))

	restoreInner()
	assert.Equal(t, "outer", observed(t, app), "restore runs once")

	restoreOuter()
	assert.Equal(t, "original", observed(t, app))
}

func TestOverride_without_provider(t *testing.T) {
	t.Parallel()

	type req struct {
		Conn *conn `depends:"conn"`
	}

	app := dispatch.New()
	dispatch.Get(app, "/conn", func(_ context.Context, r *req) (*string, error) {
		return &r.Conn.name, nil
	})

	restore := dispatch.OverrideValue(app, connKey, &conn{name: "only"})
	assert.Equal(t, "only", observed(t, app))
	restore()

	_, err := app.Dispatch(context.Background(), dispatch.Request{Method: http.MethodGet, Path: "/conn"})
	require.ErrorIs(t, err, dispatch.ErrDependency)
}

func TestOverride_shared_registry(t *testing.T) {
	t.Parallel()

	shared := dispatch.NewOverrides()
	a := connApp(dispatch.WithOverrides(shared))
	b := connApp(dispatch.WithOverrides(shared))

	restore := dispatch.OverrideValue(a, connKey, &conn{name: "fake"})
	defer restore()

	assert.Same(t, shared, b.Overrides())
	assert.Equal(t, "fake", observed(t, b))
}

func TestOverride_concurrent_dispatch(t *testing.T) {
	t.Parallel()

	app := connApp()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 50 {
			restore := dispatch.OverrideValue(app, connKey, &conn{name: "fake"})
			restore()
		}
	}()
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				resp, err := app.Dispatch(context.Background(), dispatch.Request{Method: http.MethodGet, Path: "/conn"})
				assert.NoError(t, err)
				assert.Contains(t, []any{"fake", "original"}, resp.Body)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "original", observed(t, app))
}

func TestApp_Validate(t *testing.T) {
	t.Parallel()

	type req struct {
		Conn *conn `depends:"conn"`
	}
	noop := func(context.Context, *req) (*dispatch.Void, error) { return nil, nil }

	app := dispatch.New()
	dispatch.Get(app, "/conn", noop)
	require.ErrorIs(t, app.Validate(), dispatch.ErrDependency)

	dispatch.ProvideValue(app, connKey, &conn{})
	assert.NoError(t, app.Validate())
}
