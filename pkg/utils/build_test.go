package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mod/semver"
)

func TestVersionIsSemantic(t *testing.T) {
	assert.Truef(t, semver.IsValid(Version), "Version %s is not a valid semantic version", Version)
}

func TestReverse(t *testing.T) {
	compare := func(x, y int) int { return x - y }
	assert.Positive(t, Reverse(compare)(1, 2))
	assert.Negative(t, Reverse(compare)(2, 1))
	assert.Zero(t, Reverse(compare)(3, 3))
}

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()
	require.Len(t, info, 8, "Attributes come in key / value pairs")
	assert.Equal(t, "version", info[0])
	assert.Equal(t, Version, info[1])
}
