// Invariants mark conditions that can only be false when tlist itself has a bug, e.g. a list whose
// node chain is shorter than its recorded count. Violations are logged, counted in a Prometheus counter
// so they can be alerted on, and turned into panics when the binary is built in test mode.
// The caller still has to handle the bad state itself (usually with an early return).
//
// Don't raise invariants for caller mistakes such as an out of range index; those are plain errors.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The package / component that detected the violation.
	"type",   // A short snake_case name of the violated condition.
})

// RaiseInvariant records a violated invariant of `module`. `args` are slog key / value attributes.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns how many times the invariant `invariantType` of `module` was raised.
func GetMetricValue(module, invariantType string) int {
	return CounterValue(invariantsMetric.WithLabelValues(module, invariantType))
}

// CounterValue reads the current value of a single Prometheus counter.
func CounterValue(counter prometheus.Counter) int {
	metric := new(promclient.Metric)
	if err := counter.Write(metric); err != nil {
		slog.Error("Failed to read counter value.", "error", err)
		return 0
	}
	return int(metric.GetCounter().GetValue())
}
