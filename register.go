package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
)

// Registrar is the interface accepted by the registration functions.
// Both *App and *Group implement it.
type Registrar interface {
	addRoute(r *route)
}

// register is the internal generic registration function. It panics when
// the pattern or the request type cannot be compiled, since both are fixed
// at startup.
func register[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	reqType := reflect.TypeFor[Req]()
	params, err := ParamsOf(reqType)
	if err != nil {
		panic(fmt.Sprintf("dispatch: %s %s: %v", method, pattern, err))
	}

	r := &route{
		method:   method,
		pattern:  pattern,
		reqType:  reqType,
		respType: reflect.TypeFor[Resp](),
		params:   params,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.bind = func(ctx context.Context, a *App, in input) (any, error) {
		req := new(Req)
		if err := a.bind(ctx, params, reflect.ValueOf(req).Elem(), in); err != nil {
			return nil, err
		}
		return req, nil
	}
	r.invoke = func(ctx context.Context, req any) (any, error) {
		resp, err := h(ctx, req.(*Req))
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, nil
		}
		if _, ok := any(resp).(*Void); ok {
			return nil, nil
		}
		return resp, nil
	}

	reg.addRoute(r)
}

// Get registers a GET handler.
func Get[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, h, opts...)
}

// Post registers a POST handler.
func Post[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, h, opts...)
}

// Put registers a PUT handler.
func Put[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, h, opts...)
}

// Patch registers a PATCH handler.
func Patch[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, h, opts...)
}

// Delete registers a DELETE handler.
func Delete[Req, Resp any](reg Registrar, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, h, opts...)
}

// Handle registers a handler under an arbitrary method. The method is stored
// as given; incoming methods are upper-cased before matching.
func Handle[Req, Resp any](reg Registrar, method, pattern string, h Handler[Req, Resp], opts ...RouteOption) {
	register(reg, method, pattern, h, opts...)
}
