package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"
)

// notFoundDetail is the detail of the response for an unmatched route.
const notFoundDetail = "Not Found"

// Request is one dispatched request. Body is a decoded JSON value; nil
// means no body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is the outcome of a dispatch. Body is already serialized with
// Serialize.
type Response struct {
	Status int
	Body   any
}

// Event describes one finished dispatch.
type Event struct {
	Method   string
	Path     string
	Route    string // matched pattern, empty when no route matched
	Status   int    // zero when Err is a fatal dispatch error
	Duration time.Duration
	Err      error
}

// Observer is notified after every dispatch.
type Observer interface {
	ObserveDispatch(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// ObserveDispatch calls f.
func (f ObserverFunc) ObserveDispatch(ctx context.Context, ev Event) { f(ctx, ev) }

// App holds routes, dependency providers and the override registry. It
// dispatches requests in-process and implements http.Handler.
type App struct {
	mu     sync.RWMutex
	routes routeTable
	deps   map[string]provider

	overrides *Overrides
	logger    *slog.Logger
	observer  Observer

	title   string
	version string
}

// AppOption configures an App.
type AppOption func(*App)

// WithTitle sets the application title.
func WithTitle(title string) AppOption {
	return func(a *App) {
		a.title = title
	}
}

// WithVersion sets the application version.
func WithVersion(version string) AppOption {
	return func(a *App) {
		a.version = version
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// WithObserver sets an observer notified after every dispatch.
func WithObserver(o Observer) AppOption {
	return func(a *App) {
		a.observer = o
	}
}

// WithOverrides makes the app resolve overrides from o.
func WithOverrides(o *Overrides) AppOption {
	return func(a *App) {
		a.overrides = o
	}
}

// New creates an App with the given options.
func New(opts ...AppOption) *App {
	a := &App{
		deps:      make(map[string]provider),
		overrides: NewOverrides(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Title returns the application title.
func (a *App) Title() string { return a.title }

// Version returns the application version.
func (a *App) Version() string { return a.version }

// addRoute compiles the route template and appends it to the table.
func (a *App) addRoute(r *route) {
	tmpl, err := compileTemplate(r.pattern)
	if err != nil {
		panic(fmt.Sprintf("dispatch: %s %s: %v", r.method, r.pattern, err))
	}
	r.tmpl = tmpl

	caps := tmpl.captures()
	for _, p := range r.params {
		if p.Kind == BindPath && !slices.Contains(caps, p.Name) {
			panic(fmt.Sprintf("dispatch: %s %s: path parameter %q has no capture", r.method, r.pattern, p.Name))
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes = append(a.routes, r)
}

func (a *App) table() routeTable {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.routes
}

// Dispatch routes req to its handler and returns the response.
//
// An unmatched route yields 404 {"detail": "Not Found"}. A handler error
// carrying a status (StatusCoder, or wrapping ErrNotFound or ErrValidation)
// yields that status with {"detail": ...}. Success yields the route status,
// else 204 for a nil result, else 200.
//
// A non-nil error means the request could not be processed at all: a
// parameter failed to resolve (*ResolutionError) or the handler failed with
// an error that is not a domain error.
func (a *App) Dispatch(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	r, pathParams, ok := a.table().match(req.Method, req.Path)
	if !ok {
		resp := Response{Status: http.StatusNotFound, Body: map[string]any{"detail": notFoundDetail}}
		a.finish(ctx, req, "", resp.Status, start, nil)
		return resp, nil
	}

	resp, err := a.run(ctx, r, input{path: pathParams, query: req.Query, body: req.Body})
	if err != nil {
		a.logger.ErrorContext(ctx, "dispatch failed",
			"method", req.Method,
			"path", req.Path,
			"route", r.pattern,
			"error", err,
		)
		a.finish(ctx, req, r.pattern, 0, start, err)
		return Response{}, err
	}

	a.finish(ctx, req, r.pattern, resp.Status, start, nil)
	return resp, nil
}

func (a *App) run(ctx context.Context, r *route, in input) (Response, error) {
	req, err := r.bind(ctx, a, in)
	if err != nil {
		var rerr *ResolutionError
		if errors.As(err, &rerr) {
			rerr.Route = r.method + " " + r.pattern
		}
		// A dependency or body constructor may refuse the request with a
		// domain error of its own.
		if status, detail, ok := domainError(err); ok {
			return errorResponse(status, detail), nil
		}
		return Response{}, err
	}

	result, err := r.invoke(ctx, req)
	if err != nil {
		if status, detail, ok := domainError(err); ok {
			return errorResponse(status, detail), nil
		}
		return Response{}, fmt.Errorf("%s %s: %w", r.method, r.pattern, err)
	}

	status := r.status
	if status == 0 {
		status = http.StatusOK
		if result == nil {
			status = http.StatusNoContent
		}
	}
	return Response{Status: status, Body: Serialize(result)}, nil
}

func errorResponse(status int, detail any) Response {
	return Response{Status: status, Body: map[string]any{"detail": Serialize(detail)}}
}

func (a *App) finish(ctx context.Context, req Request, pattern string, status int, start time.Time, err error) {
	d := time.Since(start)
	if err == nil {
		a.logger.DebugContext(ctx, "dispatch",
			"method", req.Method,
			"path", req.Path,
			"route", pattern,
			"status", status,
			"duration", d,
		)
	}
	if a.observer != nil {
		a.observer.ObserveDispatch(ctx, Event{
			Method:   req.Method,
			Path:     req.Path,
			Route:    pattern,
			Status:   status,
			Duration: d,
			Err:      err,
		})
	}
}
