package dispatch_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/dispatch"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	restricted := dispatch.CORSConfig{
		AllowOrigins:  []string{"https://app.example.com"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        600,
	}

	tests := map[string]struct {
		cfg        []dispatch.CORSConfig
		method     string
		header     map[string]string
		wantStatus int
		wantHeader map[string]string
		noHeader   []string
	}{
		"any origin by default": {
			method:     http.MethodGet,
			header:     map[string]string{"Origin": "https://other.example.com"},
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": "*", "Vary": "Origin"},
		},
		"no origin header passes through": {
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			noHeader:   []string{"Access-Control-Allow-Origin"},
		},
		"allowed origin is echoed": {
			cfg:        []dispatch.CORSConfig{restricted},
			method:     http.MethodGet,
			header:     map[string]string{"Origin": "https://app.example.com"},
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":   "https://app.example.com",
				"Access-Control-Expose-Headers": "X-Request-ID",
			},
		},
		"disallowed origin gets no headers": {
			cfg:        []dispatch.CORSConfig{restricted},
			method:     http.MethodGet,
			header:     map[string]string{"Origin": "https://evil.example.com"},
			wantStatus: http.StatusOK,
			noHeader:   []string{"Access-Control-Allow-Origin"},
		},
		"preflight is answered": {
			cfg:    []dispatch.CORSConfig{restricted},
			method: http.MethodOptions,
			header: map[string]string{
				"Origin":                        "https://app.example.com",
				"Access-Control-Request-Method": http.MethodPut,
			},
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Methods": "GET, POST, PUT, PATCH, DELETE, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Request-ID",
				"Access-Control-Max-Age":       "600",
			},
		},
		"credentials echo the origin": {
			cfg:        []dispatch.CORSConfig{{AllowOrigins: []string{"*"}, AllowCredentials: true}},
			method:     http.MethodGet,
			header:     map[string]string{"Origin": "https://app.example.com"},
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":      "https://app.example.com",
				"Access-Control-Allow-Credentials": "true",
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tc.method, "/", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			dispatch.CORS(tc.cfg...)(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			for k, v := range tc.wantHeader {
				assert.Equal(t, v, rec.Header().Get(k), k)
			}
			for _, k := range tc.noHeader {
				assert.Empty(t, rec.Header().Get(k), k)
			}
		})
	}
}
