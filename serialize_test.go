package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bjaus/dispatch"
)

type point struct{ X, Y int }

func (p point) ToMap() map[string]any { return map[string]any{"x": p.X, "y": p.Y} }

type shape struct {
	Name   string
	Points []point
}

func (s *shape) ToMap() map[string]any {
	return map[string]any{"name": s.Name, "points": s.Points}
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	n := 7
	var nilShape *shape

	tests := map[string]struct {
		in     any
		expect any
	}{
		"nil": {
			in:     nil,
			expect: nil,
		},
		"scalar unchanged": {
			in:     "x",
			expect: "x",
		},
		"pointer dereferenced": {
			in:     &n,
			expect: 7,
		},
		"nil serializable pointer": {
			in:     nilShape,
			expect: nil,
		},
		"serializable": {
			in:     point{X: 1, Y: 2},
			expect: map[string]any{"x": 1, "y": 2},
		},
		"nested serializable": {
			in: &shape{Name: "line", Points: []point{{1, 2}, {3, 4}}},
			expect: map[string]any{
				"name": "line",
				"points": []any{
					map[string]any{"x": 1, "y": 2},
					map[string]any{"x": 3, "y": 4},
				},
			},
		},
		"list keeps order": {
			in:     []any{3, "b", point{X: 0, Y: 0}},
			expect: []any{3, "b", map[string]any{"x": 0, "y": 0}},
		},
		"array": {
			in:     [2]int{5, 6},
			expect: []any{5, 6},
		},
		"nil slice is empty": {
			in:     []point(nil),
			expect: []any{},
		},
		"addressable elements use pointer receivers": {
			in: []shape{{Name: "a"}},
			expect: []any{
				map[string]any{"name": "a", "points": []any{}},
			},
		},
		"string keyed map": {
			in:     map[string]point{"origin": {}},
			expect: map[string]any{"origin": map[string]any{"x": 0, "y": 0}},
		},
		"bytes unchanged": {
			in:     []byte("raw"),
			expect: []byte("raw"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, dispatch.Serialize(tc.in))
		})
	}
}
