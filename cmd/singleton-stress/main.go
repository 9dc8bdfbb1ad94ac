package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/golang/glog"
	"github.com/mesos/singleton-go/instance"
	"github.com/mesos/singleton-go/singleton"
	xmetrics "github.com/mesos/singleton-go/singleton/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := newConfig()
	cfg.addFlags(flag.CommandLine)
	flag.Parse()

	if err := run(cfg, instance.Getter()); err != nil {
		log.Errorln(err)
		log.Flush()
		os.Exit(1)
	}
	log.Flush()
}

func run(cfg config, g singleton.Getter[instance.Instance]) error {
	if cfg.goroutines < 1 || cfg.calls < 1 {
		return errors.New("goroutines and calls must both be positive")
	}
	log.Infof("stress run with configuration: %+v", cfg)
	xmetrics.Register()

	var serveErr <-chan error
	if cfg.metrics.address != "" {
		serveErr = serveMetrics(cfg.metrics)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	t := time.Now()
	results, errs := race(ctx, cfg, g)
	r := summarize(cfg, results, errs, time.Since(t))

	if cfg.verbose {
		for i, in := range results {
			if errs[i] != nil {
				log.Infof("call %d: %v", i, errs[i])
			} else {
				log.Infof("call %d: %v", i, in)
			}
		}
	}

	buf, err := r.encode()
	if err != nil {
		return err
	}
	fmt.Println(string(buf))

	if err := r.violation(); err != nil {
		return err
	}
	if serveErr != nil {
		return <-serveErr
	}
	return nil
}

// serveMetrics serves the prometheus endpoint in the background. The returned chan
// yields the error that stopped the server.
func serveMetrics(m metrics) <-chan error {
	mux := http.NewServeMux()
	mux.Handle(m.path, promhttp.Handler())
	ch := make(chan error, 1)
	go func() {
		log.Infof("serving metrics on %s%s", m.address, m.path)
		ch <- http.ListenAndServe(m.address, mux)
	}()
	return ch
}

// race releases every goroutine at once and collects the result of each Get call.
func race(ctx context.Context, cfg config, g singleton.Getter[instance.Instance]) ([]*instance.Instance, []error) {
	var (
		n       = cfg.goroutines * cfg.calls
		results = make([]*instance.Instance, n)
		errs    = make([]error, n)
		start   = make(chan struct{})
		wg      sync.WaitGroup
	)
	wg.Add(cfg.goroutines)
	for i := 0; i < cfg.goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			for j := 0; j < cfg.calls; j++ {
				k := i*cfg.calls + j
				b := backoff.NewExponentialBackOff()
				b.MaxElapsedTime = cfg.retryMax
				results[k], errs[k] = singleton.Retry(ctx, g, b)
			}
		}(i)
	}
	close(start)
	wg.Wait()
	return results, errs
}
