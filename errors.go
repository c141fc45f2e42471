package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bjaus/dispatch/coerce"
)

// Sentinel errors for parameter resolution.
var (
	ErrResolution  = errors.New("resolve parameter")
	ErrUnresolved  = errors.New("no value for parameter")
	ErrDependency  = errors.New("resolve dependency")
	ErrBindPath    = errors.New("bind path")
	ErrBindQuery   = errors.New("bind query")
	ErrBindBody    = errors.New("bind body")
	ErrMissingBody = errors.New("missing body")
)

// Domain signals that handlers may return, directly or wrapped.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// StatusCoder is implemented by errors that carry a response status code.
type StatusCoder interface {
	StatusCode() int
}

// Detailer is implemented by errors whose response detail is not their
// message, such as a list of field errors.
type Detailer interface {
	ErrorDetail() any
}

// HTTPError is a domain error with an explicit status and detail payload.
type HTTPError struct {
	Status int `json:"status"`
	Detail any `json:"detail"`
}

// Error returns the detail as text.
func (e *HTTPError) Error() string {
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return fmt.Sprint(e.Detail)
}

// StatusCode returns the status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// ErrorDetail returns the detail payload.
func (e *HTTPError) ErrorDetail() any { return e.Detail }

// Is matches ErrNotFound for 404 errors and ErrValidation for 400 errors.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// Error returns a domain error with the given status and detail.
func Error(status int, detail any) error {
	return &HTTPError{Status: status, Detail: detail}
}

// Errorf returns a domain error with a formatted detail.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// NotFound returns a 404 domain error.
func NotFound(detail any) error {
	return &HTTPError{Status: http.StatusNotFound, Detail: detail}
}

// BadRequest returns a 400 domain error.
func BadRequest(detail any) error {
	return &HTTPError{Status: http.StatusBadRequest, Detail: detail}
}

// ErrorStatus extracts the status code from an error. Errors wrapping
// ErrNotFound or ErrValidation report 404 and 400; any other error without a
// StatusCoder reports http.StatusInternalServerError.
func ErrorStatus(err error) int {
	var sc StatusCoder
	switch {
	case errors.As(err, &sc):
		return sc.StatusCode()
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// domainError reports whether err is a client-facing domain error and, if
// so, its status and detail.
func domainError(err error) (status int, detail any, ok bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		if d, isDetailer := sc.(Detailer); isDetailer {
			return sc.StatusCode(), d.ErrorDetail(), true
		}
		if e, isErr := sc.(error); isErr {
			return sc.StatusCode(), e.Error(), true
		}
		return sc.StatusCode(), err.Error(), true
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound, err.Error(), true
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest, err.Error(), true
	}
	return 0, nil, false
}

// ResolutionError reports a handler parameter that could not be resolved.
// It signals a misconfigured route or input the route cannot accept, never a
// domain outcome.
type ResolutionError struct {
	Route string
	Param string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Route == "" {
		return fmt.Sprintf("parameter %q: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("%s: parameter %q: %v", e.Route, e.Param, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// FieldError describes one rejected input value in terms a client can act on.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Fields describes the failure for clients. Route patterns, Go types and
// parser messages stay in Error.
func (e *ResolutionError) Fields() []FieldError {
	var (
		ce  *coerce.Error
		ute *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(e.Err, ErrMissingBody):
		return []FieldError{{Field: e.Param, Message: "required"}}
	case errors.As(e.Err, &ce):
		return []FieldError{{Field: e.Param, Message: "must be " + coerce.Describe(ce.Type)}}
	case errors.As(e.Err, &ute):
		field := e.Param
		if ute.Field != "" {
			field += "." + ute.Field
		}
		return []FieldError{{Field: field, Message: "must be " + coerce.Describe(ute.Type)}}
	case errors.Is(e.Err, ErrBindBody):
		return []FieldError{{Field: e.Param, Message: "invalid body"}}
	}
	return []FieldError{{Field: e.Param, Message: "invalid value"}}
}
