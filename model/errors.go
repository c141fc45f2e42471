package model

import (
	"net/http"
	"strings"
)

// FieldError describes a single field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field failure of one record construction.
// It reports status 422 and a list of field errors as its detail.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Schema)
	b.WriteString(": ")
	for i, fe := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(fe.Field)
		b.WriteString(": ")
		b.WriteString(fe.Message)
	}
	return b.String()
}

// StatusCode returns http.StatusUnprocessableEntity.
func (e *ValidationError) StatusCode() int { return http.StatusUnprocessableEntity }

// ErrorDetail returns the field errors.
func (e *ValidationError) ErrorDetail() any { return e.Errors }
