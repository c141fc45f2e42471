package model

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Check validates a coerced, non-nil field value. The error text becomes the
// field error message.
type Check func(v any) error

// All runs checks in order and returns the first failure.
func All(checks ...Check) Check {
	return func(v any) error {
		for _, c := range checks {
			if err := c(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// MinLength requires a string of at least n characters.
func MinLength(n int) Check {
	return func(v any) error {
		s, ok := v.(string)
		if ok && utf8.RuneCountInString(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// MaxLength requires a string of at most n characters.
func MaxLength(n int) Check {
	return func(v any) error {
		s, ok := v.(string)
		if ok && utf8.RuneCountInString(s) > n {
			return fmt.Errorf("must be at most %d characters", n)
		}
		return nil
	}
}

// Minimum requires a number of at least lower.
func Minimum(lower float64) Check {
	return func(v any) error {
		f, ok := number(v)
		if ok && f < lower {
			return fmt.Errorf("must be at least %v", lower)
		}
		return nil
	}
}

// Enum requires a string equal to one of allowed.
func Enum(allowed ...string) Check {
	return func(v any) error {
		s, ok := v.(string)
		if ok && !slices.Contains(allowed, s) {
			return fmt.Errorf("must be one of [%s]", strings.Join(allowed, ","))
		}
		return nil
	}
}

// Pattern requires a string matching expr. It panics if expr does not compile.
func Pattern(expr string) Check {
	re := regexp.MustCompile(expr)
	return func(v any) error {
		s, ok := v.(string)
		if ok && !re.MatchString(s) {
			return fmt.Errorf("must match pattern %s", expr)
		}
		return nil
	}
}

// Layout requires a string that parses with the time layout.
func Layout(layout string) Check {
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if _, err := time.Parse(layout, s); err != nil {
			return fmt.Errorf("must match layout %s", layout)
		}
		return nil
	}
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
