package main

import (
	"flag"
	"time"
)

type config struct {
	goroutines int
	calls      int
	timeout    time.Duration
	retryMax   time.Duration
	verbose    bool
	metrics    metrics
}

type metrics struct {
	address string
	path    string
}

func newConfig() config {
	return config{
		goroutines: 50,
		calls:      1,
		timeout:    30 * time.Second,
		retryMax:   10 * time.Second,
		metrics: metrics{
			path: "/metrics",
		},
	}
}

func (cfg *config) addFlags(fs *flag.FlagSet) {
	fs.IntVar(&cfg.goroutines, "goroutines", cfg.goroutines, "Number of goroutines racing for the instance")
	fs.IntVar(&cfg.calls, "calls", cfg.calls, "Number of Get calls made by each goroutine")
	fs.DurationVar(&cfg.timeout, "timeout", cfg.timeout, "Give up on the whole run after this long")
	fs.DurationVar(&cfg.retryMax, "retry.max-elapsed", cfg.retryMax, "Stop retrying a failed construction after this long")
	fs.BoolVar(&cfg.verbose, "verbose", cfg.verbose, "Print every returned instance")
	fs.StringVar(&cfg.metrics.address, "metrics.address", cfg.metrics.address, "Serve prometheus metrics on this address after the run; empty disables")
	fs.StringVar(&cfg.metrics.path, "metrics.path", cfg.metrics.path, "URI path to metrics endpoint")
}
