package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Subsystem = "singleton"
)

var (
	ConstructionAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: Subsystem,
		Name:      "construction_attempts",
		Help:      "The number of times a constructor was invoked.",
	}, []string{"name"})
	ConstructionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: Subsystem,
		Name:      "construction_errors",
		Help:      "The number of failed construction attempts.",
	}, []string{"name"})
	ConstructionLatency = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Subsystem: Subsystem,
		Name:      "construction_latency_microseconds",
		Help:      "Time spent in the constructor, by accessor.",
	}, []string{"name"})
	SlowPathCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: Subsystem,
		Name:      "slow_path_count",
		Help:      "The number of calls that found the slot empty and went for the lock.",
	}, []string{"name"})
)

var registerMetrics sync.Once

func Register() {
	registerMetrics.Do(func() {
		prometheus.MustRegister(ConstructionAttempts)
		prometheus.MustRegister(ConstructionErrors)
		prometheus.MustRegister(ConstructionLatency)
		prometheus.MustRegister(SlowPathCount)
	})
}

func InMicroseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds() / time.Microsecond.Nanoseconds())
}
