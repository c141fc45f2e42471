package coerce_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch/coerce"
)

func TestCoerce_primitives(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw    any
		typ    reflect.Type
		expect any
	}{
		"string to int": {
			raw:    "42",
			typ:    reflect.TypeFor[int](),
			expect: 42,
		},
		"padded string to int64": {
			raw:    " 7 ",
			typ:    reflect.TypeFor[int64](),
			expect: int64(7),
		},
		"json float to int narrows": {
			raw:    4.0,
			typ:    reflect.TypeFor[int](),
			expect: 4,
		},
		"json number to int": {
			raw:    json.Number("12"),
			typ:    reflect.TypeFor[int](),
			expect: 12,
		},
		"string to float": {
			raw:    "1.5",
			typ:    reflect.TypeFor[float64](),
			expect: 1.5,
		},
		"int to string": {
			raw:    42,
			typ:    reflect.TypeFor[string](),
			expect: "42",
		},
		"float to string": {
			raw:    2.5,
			typ:    reflect.TypeFor[string](),
			expect: "2.5",
		},
		"string to bool": {
			raw:    "true",
			typ:    reflect.TypeFor[bool](),
			expect: true,
		},
		"string to uint": {
			raw:    "3",
			typ:    reflect.TypeFor[uint8](),
			expect: uint8(3),
		},
		"nil to int stays nil": {
			raw:    nil,
			typ:    reflect.TypeFor[int](),
			expect: nil,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := coerce.Coerce(tc.raw, tc.typ)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestCoerce_primitive_failures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		raw any
		typ reflect.Type
	}{
		"letters to int":    {raw: "abc", typ: reflect.TypeFor[int]()},
		"letters to float":  {raw: "x1", typ: reflect.TypeFor[float64]()},
		"overflow int8":     {raw: "300", typ: reflect.TypeFor[int8]()},
		"negative uint":     {raw: "-1", typ: reflect.TypeFor[uint]()},
		"empty string int":  {raw: "", typ: reflect.TypeFor[int]()},
		"word to bool":      {raw: "maybe", typ: reflect.TypeFor[bool]()},
		"map to int":        {raw: map[string]any{}, typ: reflect.TypeFor[int]()},
		"scalar to slice":   {raw: "1", typ: reflect.TypeFor[[]int]()},
		"short array tuple": {raw: []any{1.0}, typ: reflect.TypeFor[[2]int]()},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := coerce.Coerce(tc.raw, tc.typ)
			require.Error(t, err)
			require.ErrorIs(t, err, coerce.ErrInvalid)

			var cerr *coerce.Error
			require.ErrorAs(t, err, &cerr)
		})
	}
}

func TestCoerce_optional(t *testing.T) {
	t.Parallel()

	typ := reflect.TypeFor[*int]()

	got, err := coerce.Coerce("42", typ)
	require.NoError(t, err)
	require.IsType(t, (*int)(nil), got)
	assert.Equal(t, 42, *got.(*int))

	got, err = coerce.Coerce("", typ)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = coerce.Coerce(nil, typ)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCoerce_optional_rejects_malformed(t *testing.T) {
	t.Parallel()

	_, err := coerce.Coerce("forty-two", reflect.TypeFor[*int]())
	require.ErrorIs(t, err, coerce.ErrInvalid)
}

func TestTo(t *testing.T) {
	t.Parallel()

	n, err := coerce.To[int]("42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	p, err := coerce.To[*string]("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = coerce.To[*string]("x")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "x", *p)
}

func TestCoerce_sequences(t *testing.T) {
	t.Parallel()

	t.Run("list keeps order", func(t *testing.T) {
		t.Parallel()

		got, err := coerce.Coerce([]string{"3", "1", "2"}, reflect.TypeFor[[]int]())
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, got)
	})

	t.Run("json array to list", func(t *testing.T) {
		t.Parallel()

		got, err := coerce.Coerce([]any{"a", 1.0}, reflect.TypeFor[[]string]())
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "1"}, got)
	})

	t.Run("tuple is a fixed array", func(t *testing.T) {
		t.Parallel()

		got, err := coerce.Coerce([]string{"1", "2"}, reflect.TypeFor[[2]int]())
		require.NoError(t, err)
		assert.Equal(t, [2]int{1, 2}, got)
	})

	t.Run("element failure reports index", func(t *testing.T) {
		t.Parallel()

		_, err := coerce.Coerce([]string{"1", "x"}, reflect.TypeFor[[]int]())
		require.ErrorIs(t, err, coerce.ErrInvalid)
		assert.Contains(t, err.Error(), "index 1")
	})
}

func TestCoerce_oneOf(t *testing.T) {
	t.Parallel()

	typ := reflect.TypeFor[coerce.OneOf[int, string]]()

	got, err := coerce.Coerce("42", typ)
	require.NoError(t, err)
	n, ok := got.(coerce.OneOf[int, string]).First()
	require.True(t, ok)
	assert.Equal(t, 42, n)

	got, err = coerce.Coerce("abc", typ)
	require.NoError(t, err)
	s, ok := got.(coerce.OneOf[int, string]).Second()
	require.True(t, ok)
	assert.Equal(t, "abc", s)

	got, err = coerce.Coerce("", typ)
	require.NoError(t, err)
	assert.True(t, got.(coerce.OneOf[int, string]).IsZero())
}

func TestCoerce_oneOf_all_alternatives_fail(t *testing.T) {
	t.Parallel()

	_, err := coerce.Coerce("abc", reflect.TypeFor[coerce.OneOf[int, float64]]())
	require.ErrorIs(t, err, coerce.ErrInvalid)
}

func TestOneOf_json(t *testing.T) {
	t.Parallel()

	var v struct {
		ID coerce.OneOf[int, string] `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"7"}`), &v))
	n, ok := v.ID.First()
	require.True(t, ok)
	assert.Equal(t, 7, n)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(out))
}

func TestCoerce_text_unmarshaler(t *testing.T) {
	t.Parallel()

	got, err := coerce.Coerce("2025-01-05T08:00:00Z", reflect.TypeFor[time.Time]())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC), got)

	_, err = coerce.Coerce("yesterday", reflect.TypeFor[time.Time]())
	require.ErrorIs(t, err, coerce.ErrInvalid)
}

func TestCoerce_opaque_passthrough(t *testing.T) {
	t.Parallel()

	type handle struct{ name string }
	h := &handle{name: "db"}

	got, err := coerce.Coerce(h, reflect.TypeFor[any]())
	require.NoError(t, err)
	assert.Same(t, h, got)

	raw := map[string]any{"a": 1.0}
	got, err = coerce.Coerce(raw, reflect.TypeFor[map[string]any]())
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestCoerce_unassignable_struct_targets(t *testing.T) {
	t.Parallel()

	type label struct {
		Name string `json:"name"`
	}
	obj := map[string]any{"name": "x"}

	tests := map[string]struct {
		raw any
		typ reflect.Type
	}{
		"object to struct":             {raw: obj, typ: reflect.TypeFor[label]()},
		"object to pointer to struct":  {raw: obj, typ: reflect.TypeFor[*label]()},
		"objects to slice of structs":  {raw: []any{obj}, typ: reflect.TypeFor[[]label]()},
		"objects to array of structs":  {raw: []any{obj}, typ: reflect.TypeFor[[1]label]()},
		"string to map":                {raw: "x", typ: reflect.TypeFor[map[string]any]()},
		"object to struct alternative": {raw: obj, typ: reflect.TypeFor[coerce.OneOf[label, int]]()},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var err error
			require.NotPanics(t, func() { _, err = coerce.Value(tc.raw, tc.typ) })
			require.ErrorIs(t, err, coerce.ErrInvalid)
		})
	}
}

func TestCoerce_oneOf_skips_unassignable_alternative(t *testing.T) {
	t.Parallel()

	type label struct {
		Name string `json:"name"`
	}

	got, err := coerce.Coerce("7", reflect.TypeFor[coerce.OneOf[label, int]]())
	require.NoError(t, err)
	_, ok := got.(coerce.OneOf[label, int]).First()
	assert.False(t, ok)
	n, ok := got.(coerce.OneOf[label, int]).Second()
	require.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	type label struct{}

	tests := map[string]struct {
		typ    reflect.Type
		expect string
	}{
		"int":          {typ: reflect.TypeFor[int64](), expect: "an integer"},
		"optional int": {typ: reflect.TypeFor[*int](), expect: "an integer"},
		"float":        {typ: reflect.TypeFor[float64](), expect: "a number"},
		"string":       {typ: reflect.TypeFor[string](), expect: "a string"},
		"bool":         {typ: reflect.TypeFor[bool](), expect: "a boolean"},
		"list":         {typ: reflect.TypeFor[[]int](), expect: "a list of integer"},
		"struct":       {typ: reflect.TypeFor[label](), expect: "an object"},
		"map":          {typ: reflect.TypeFor[map[string]any](), expect: "an object"},
		"time":         {typ: reflect.TypeFor[time.Time](), expect: "a valid time"},
		"alternatives": {typ: reflect.TypeFor[coerce.OneOf[int, string]](), expect: "an integer or a string"},
		"interface":    {typ: reflect.TypeFor[any](), expect: "a valid value"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, coerce.Describe(tc.typ))
		})
	}
}
