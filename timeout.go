package dispatch

import (
	"bytes"
	"context"
	"maps"
	"net/http"
	"sync"
	"time"
)

// Timeout returns middleware that bounds a whole request, dispatch included,
// with a context deadline. Dependency resolvers and handlers observe it
// through their ctx. When the deadline passes before the handler returns,
// the client gets 503 {"detail": "Service Unavailable"} and anything the
// handler writes afterwards is discarded.
//
// The handler runs on its own goroutine and its response is buffered until it
// returns. A panic in the handler is re-raised on the serving goroutine.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			tw := &timeoutWriter{header: make(http.Header)}
			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				tw.flush(w)
			case <-ctx.Done():
				select {
				case <-done:
					tw.flush(w)
					return
				default:
				}
				tw.expire()
				writeJSON(w, http.StatusServiceUnavailable,
					map[string]any{"detail": http.StatusText(http.StatusServiceUnavailable)})
			}
		})
	}
}

// timeoutWriter buffers a response until the handler returns or the
// deadline passes.
type timeoutWriter struct {
	header http.Header

	mu      sync.Mutex
	body    bytes.Buffer
	status  int
	expired bool
}

func (tw *timeoutWriter) Header() http.Header { return tw.header }

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.expired || tw.status != 0 {
		return
	}
	tw.status = status
}

func (tw *timeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if tw.status == 0 {
		tw.status = http.StatusOK
	}
	return tw.body.Write(p)
}

func (tw *timeoutWriter) expire() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.expired = true
}

func (tw *timeoutWriter) flush(w http.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	maps.Copy(w.Header(), tw.header)
	if tw.status == 0 {
		tw.status = http.StatusOK
	}
	w.WriteHeader(tw.status)
	//nolint:errcheck,gosec // the client may be gone
	w.Write(tw.body.Bytes())
}
