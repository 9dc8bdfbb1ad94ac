package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Harness invokes f, recording the outcome under the given label values.
type Harness func(f func() error, labels ...string) error

// Run invokes f through the harness; a nil Harness simply calls f.
func (h Harness) Run(f func() error, labels ...string) error {
	if h == nil {
		return f()
	}
	return h(f, labels...)
}

// NewHarness returns a Harness that counts attempts and errors and observes latency
// using the given collectors. Nil collectors are skipped.
func NewHarness(counts, errors *prometheus.CounterVec, latency *prometheus.SummaryVec, clock func() time.Time) Harness {
	if clock == nil {
		clock = time.Now
	}
	return func(f func() error, labels ...string) error {
		if counts != nil {
			counts.WithLabelValues(labels...).Inc()
		}
		t := clock()
		err := f()
		if latency != nil {
			latency.WithLabelValues(labels...).Observe(InMicroseconds(clock().Sub(t)))
		}
		if err != nil && errors != nil {
			errors.WithLabelValues(labels...).Inc()
		}
		return err
	}
}

// DefaultHarness records into the package-level construction collectors.
func DefaultHarness() Harness {
	return NewHarness(ConstructionAttempts, ConstructionErrors, ConstructionLatency, time.Now)
}
