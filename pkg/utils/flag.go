package utils

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

// CommandLineFlags returns the names of the flags that were set explicitly, i.e. on the command line or through
// flag.Set, as opposed to keeping their defaults. Must be called after flag.Parse().
func CommandLineFlags() map[ /*flagName*/ string]bool {
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	return explicit
}

// SetTestFlag overrides flag `name` with `value` until the test and its cleanups are done.
func SetTestFlag(t *testing.T, name, value string) {
	t.Helper()
	flagHolder := flag.Lookup(name)
	require.NotNilf(t, flagHolder, "Flag %s is not registered", name)
	prevValue := flagHolder.Value.String()
	require.NoError(t, flag.Set(name, value))
	t.Cleanup(func() { require.NoError(t, flag.Set(name, prevValue)) })
}
