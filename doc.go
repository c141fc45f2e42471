// Package dispatch is an in-process request dispatch and parameter-binding
// engine. Routes are registered with typed handlers; a dispatch matches
// (method, path), fills the handler's request struct from path captures,
// query values, dependencies and the body, runs the handler and serializes
// the result or maps its domain error to a response.
//
//	app := dispatch.New(dispatch.WithTitle("EventCompass"))
//	dispatch.ProvideValue(app, storeKey, st)
//	dispatch.Put(app, "/materials/{material_id}", updateMaterial)
//	dispatch.Delete(app, "/materials/{material_id}", deleteMaterial,
//	    dispatch.WithStatus(http.StatusNoContent))
//
//	resp, err := app.Dispatch(ctx, dispatch.Request{
//	    Method: http.MethodPut,
//	    Path:   "/materials/2",
//	    Body:   map[string]any{},
//	})
//
// Request structs describe their parameters with field tags (see Param).
// Each parameter resolves in this order: dependency, path capture, query
// value, query default, body (consumed at most once), declared default.
// A parameter that resolves to nothing fails the dispatch with a
// *ResolutionError.
//
// Handlers report client-facing outcomes with errors that carry a status:
//
//	return nil, dispatch.NotFound("Material not found")
//
// which dispatch turns into 404 {"detail": "Material not found"}.
//
// Tests replace dependencies with scoped overrides:
//
//	restore := dispatch.OverrideValue(app, storeKey, fake)
//	defer restore()
//
// App also implements http.Handler for serving over HTTP. Middleware in this
// package wraps that edge only.
package dispatch
