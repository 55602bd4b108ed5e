package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nobletooth/tlist/pkg/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endToEndScript = `
name: end to end
steps:
  - cmd: LADD
    args: [nums, "1", "2", "3"]
    expect: "3"
  - cmd: linsertat
    args: [nums, "1", "4"]
    expect: OK
  - cmd: LSORT
    args: [nums]
  - cmd: LREMOVE
    args: [nums, "3"]
    expect: "1"
  - cmd: LREMOVEAT
    args: [nums, "0"]
  - cmd: LRANGE
    args: [nums, "0", "2"]
    expect: "[2 4]"
`

// newHandler returns a handler over a fresh registry.
func newHandler(t *testing.T) *port.Handler {
	t.Helper()
	handler, err := port.NewHandler(port.NewRegistry(2))
	require.NoError(t, err)
	return handler
}

func TestScript_Run(t *testing.T) {
	script, err := Parse([]byte(endToEndScript))
	require.NoError(t, err)
	assert.Equal(t, "end to end", script.Name)
	require.Len(t, script.Steps, 6)

	replies, err := script.Run(newHandler(t))
	require.NoError(t, err)
	require.Len(t, replies, 6)
	assert.Equal(t, "OK", replies[2].String())
}

func TestScript_FailedExpectation(t *testing.T) {
	script, err := Parse([]byte(`
steps:
  - cmd: LADD
    args: [nums, "1"]
  - cmd: LCOUNT
    args: [nums]
    expect: "2"
  - cmd: LCLEAR
    args: [nums]
`))
	require.NoError(t, err)
	replies, err := script.Run(newHandler(t))
	assert.ErrorIs(t, err, ErrExpectationFailed)
	assert.Len(t, replies, 2, "Run stops at the failed step")
}

func TestScript_Parse(t *testing.T) {
	_, err := Parse([]byte("steps: [{args: [x]}]"))
	assert.Error(t, err, "Steps need a command")

	_, err = Parse([]byte("steps: {"))
	assert.Error(t, err)
}

func TestScript_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(endToEndScript), 0o644))
	script, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, script.Steps, 6)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
