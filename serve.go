package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bjaus/dispatch/coerce"
)

// ServeHTTP implements http.Handler by decoding a JSON body, dispatching,
// and writing the response as JSON.
//
// Dispatch errors caused by request input (malformed values, an unusable or
// missing body) are answered 422 with a list of field errors; any other
// dispatch error is answered 500 without detail. Dispatch logs the full error.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body any
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge,
					map[string]any{"detail": http.StatusText(http.StatusRequestEntityTooLarge)})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
			return
		}
	}

	resp, err := a.Dispatch(r.Context(), Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
	})
	if err != nil {
		var rerr *ResolutionError
		if inputError(err) && errors.As(err, &rerr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": rerr.Fields()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": http.StatusText(http.StatusInternalServerError)})
		return
	}

	if resp.Status == http.StatusNoContent || resp.Status == http.StatusNotModified {
		w.WriteHeader(resp.Status)
		return
	}
	writeJSON(w, resp.Status, resp.Body)
}

func inputError(err error) bool {
	return errors.Is(err, coerce.ErrInvalid) ||
		errors.Is(err, ErrBindBody) ||
		errors.Is(err, ErrMissingBody)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves the app on addr behind mw (outermost first).
// It blocks until the context is cancelled, then shuts down gracefully.
func (a *App) ListenAndServe(ctx context.Context, addr string, mw ...Middleware) error {
	return Serve(ctx, addr, Chain(mw...)(a))
}

// Serve runs an HTTP server for h on addr until ctx is cancelled, then
// shuts it down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
