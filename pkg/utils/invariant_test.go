package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaiseInvariant(t *testing.T) {
	invariantsMetric.Reset() // Start from a clean counter.
	RaiseInvariant("invariant", "test", "This is a test invariant violation")
	assert.Equal(t, 1, GetMetricValue("invariant" /*module*/, "test" /*invariantType*/))
	assert.Equal(t, 0, GetMetricValue("invariant" /*module*/, "never_raised" /*invariantType*/))
}
