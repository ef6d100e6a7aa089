package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentIDsWindow(t *testing.T) {
	r := newRecentIDs(2)

	assert.False(t, r.Observe("a"))
	assert.True(t, r.Observe("a"))
	assert.False(t, r.Observe("b"))

	// "c" evicts "a" from the window, so "a" counts as new again
	assert.False(t, r.Observe("c"))
	assert.False(t, r.Observe("a"))

	// blank IDs are never deduplicated
	assert.False(t, r.Observe(""))
	assert.False(t, r.Observe(""))
}

// chdir is t.Chdir for toolchains older than Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}

func TestHandleMessageLogsRedeliveryOnce(t *testing.T) {
	chdir(t, t.TempDir())

	env := NewEnvelope("reservation.confirmed", map[string]any{"reservation_id": 12})
	body, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))
	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join("logs", "reservation.log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), env.ID))
	assert.Equal(t, 1, strings.Count(string(data), "reservation.confirmed"))
}

func TestHandleMessageRejectsBadPayload(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Error(t, handleMessage([]byte("not json")))
}
