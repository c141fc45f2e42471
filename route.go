package dispatch

import (
	"context"
	"reflect"
)

// route holds a registered route: its compiled template, binding specs and
// the typed handler behind two closures.
type route struct {
	method  string
	pattern string
	tmpl    template

	status     int
	summary    string
	desc       string
	tags       []string
	deprecated bool

	reqType  reflect.Type
	respType reflect.Type
	params   []Param

	// bind builds a *Req from the input; invoke runs the handler on it.
	bind   func(ctx context.Context, a *App, in input) (any, error)
	invoke func(ctx context.Context, req any) (any, error)
}

// RouteOption configures a route at registration time.
type RouteOption func(*route)

// WithStatus sets the success status code. Without it a route responds 200,
// or 204 when the handler returns no result.
func WithStatus(code int) RouteOption {
	return func(r *route) {
		r.status = code
	}
}

// WithSummary sets the route summary.
func WithSummary(s string) RouteOption {
	return func(r *route) {
		r.summary = s
	}
}

// WithDescription sets the route description.
func WithDescription(d string) RouteOption {
	return func(r *route) {
		r.desc = d
	}
}

// WithTags adds tags to the route.
func WithTags(tags ...string) RouteOption {
	return func(r *route) {
		r.tags = append(r.tags, tags...)
	}
}

// WithDeprecated marks the route as deprecated.
func WithDeprecated() RouteOption {
	return func(r *route) {
		r.deprecated = true
	}
}
