package singleton

import "github.com/mesos/singleton-go/singleton/metrics"

const defaultName = "default"

// Option configures an Accessor.
type Option func(*config)

type config struct {
	name    string
	harness metrics.Harness
}

func newConfig(opts ...Option) config {
	cfg := config{name: defaultName}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}

// Name sets the label that identifies the accessor in logs and metrics.
func Name(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithHarness wraps every construction attempt with h, typically metrics.NewHarness().
func WithHarness(h metrics.Harness) Option {
	return func(c *config) { c.harness = h }
}
