// Package dispatchtest provides typed test helpers for dispatch apps.
//
// Requests go through App.Dispatch in-process. Bodies make a JSON round trip
// in both directions so handlers and assertions see what a wire client would.
package dispatchtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/bjaus/dispatch"
)

// Client dispatches requests against an App.
type Client struct {
	App *dispatch.App
	Ctx context.Context
}

// NewClient creates a test client for app.
func NewClient(t testing.TB, app *dispatch.App) *Client {
	t.Helper()
	return &Client{App: app, Ctx: context.Background()}
}

// NewServer serves app over HTTP behind mw for the duration of the test.
func NewServer(t testing.TB, app *dispatch.App, mw ...dispatch.Middleware) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(dispatch.Chain(mw...)(app))
	t.Cleanup(srv.Close)
	return srv
}

// Response holds a decoded dispatch response.
//
// Err is the fatal dispatch error, if any; Status is then zero. Body is nil
// when there is no body or it does not decode into T.
type Response[T any] struct {
	Status int
	Body   *T
	Raw    any
	Err    error
}

// Detail returns the "detail" member of an error body.
func (r *Response[T]) Detail() any {
	if m, ok := r.Raw.(map[string]any); ok {
		return m["detail"]
	}
	return nil
}

// Get dispatches a typed GET request. The path may carry a query string.
func Get[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodGet, path, nil)
}

// Post dispatches a typed POST request with a JSON body.
func Post[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPost, path, body)
}

// Put dispatches a typed PUT request with a JSON body.
func Put[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPut, path, body)
}

// Patch dispatches a typed PATCH request with a JSON body.
func Patch[Req, Resp any](t testing.TB, c *Client, path string, body *Req) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodPatch, path, body)
}

// Delete dispatches a typed DELETE request.
func Delete[Resp any](t testing.TB, c *Client, path string) *Response[Resp] {
	t.Helper()
	return do[Resp](t, c, http.MethodDelete, path, nil)
}

// Override replaces the dependency behind k for the rest of the test.
func Override[T any](t testing.TB, app *dispatch.App, k dispatch.Key[T], fn dispatch.Resolver[T]) {
	t.Helper()
	t.Cleanup(dispatch.Override(app, k, fn))
}

// OverrideValue replaces the dependency behind k with v for the rest of the test.
func OverrideValue[T any](t testing.TB, app *dispatch.App, k dispatch.Key[T], v T) {
	t.Helper()
	t.Cleanup(dispatch.OverrideValue(app, k, v))
}

func do[Resp any](t testing.TB, c *Client, method, path string, body any) *Response[Resp] {
	t.Helper()

	u, err := url.Parse(path)
	if err != nil {
		t.Fatalf("dispatchtest: parse path: %v", err)
	}

	var reqBody any
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("dispatchtest: marshal request body: %v", err)
		}
		if err := json.Unmarshal(b, &reqBody); err != nil {
			t.Fatalf("dispatchtest: decode request body: %v", err)
		}
	}

	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := c.App.Dispatch(ctx, dispatch.Request{
		Method: method,
		Path:   u.Path,
		Query:  u.Query(),
		Body:   reqBody,
	})
	if err != nil {
		return &Response[Resp]{Err: err}
	}

	result := &Response[Resp]{Status: resp.Status, Raw: resp.Body}
	if resp.Body == nil {
		return result
	}

	b, err := json.Marshal(resp.Body)
	if err != nil {
		t.Fatalf("dispatchtest: marshal response body: %v", err)
	}
	var decoded Resp
	if err := json.Unmarshal(b, &decoded); err != nil {
		return result
	}
	result.Body = &decoded
	return result
}
