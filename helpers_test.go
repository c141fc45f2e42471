package dispatch_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// toJSON round-trips v through JSON, the way a client would see it.
func toJSON(t *testing.T, v any) any {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func toJSONMap(t *testing.T, v any) map[string]any {
	t.Helper()

	m, ok := toJSON(t, v).(map[string]any)
	require.True(t, ok, "want a JSON object, got %T", v)
	return m
}
