package dispatch

import "net/http"

// BodyLimit returns middleware that caps request bodies at maxBytes. A
// request whose declared Content-Length is over the cap is answered 413
// without reading the body; a body that turns out longer while being read is
// answered 413 by the App behind it.
func BodyLimit(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeJSON(w, http.StatusRequestEntityTooLarge,
					map[string]any{"detail": http.StatusText(http.StatusRequestEntityTooLarge)})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
