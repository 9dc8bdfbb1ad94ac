package main

import (
	"fmt"
	"time"

	"github.com/mesos/singleton-go/instance"
	"github.com/pquerna/ffjson/ffjson"
)

type report struct {
	Goroutines    int                   `json:"goroutines"`
	Calls         int                   `json:"calls"`
	Errors        int                   `json:"errors"`
	Distinct      int                   `json:"distinct"`
	NotReady      int                   `json:"not_ready"`
	Constructions uint64                `json:"constructions"`
	Elapsed       string                `json:"elapsed"`
	Instance      *instance.Description `json:"instance,omitempty"`
}

// summarize folds the results of every call into a report.
func summarize(cfg config, results []*instance.Instance, errs []error, elapsed time.Duration) report {
	r := report{
		Goroutines:    cfg.goroutines,
		Calls:         len(results),
		Constructions: instance.Constructions(),
		Elapsed:       elapsed.String(),
	}
	seen := map[*instance.Instance]struct{}{}
	for i, in := range results {
		if errs[i] != nil || in == nil {
			r.Errors++
			continue
		}
		if !in.Ready() {
			r.NotReady++
		}
		if _, ok := seen[in]; !ok {
			seen[in] = struct{}{}
			d := in.Description()
			r.Instance = &d
		}
	}
	r.Distinct = len(seen)
	return r
}

func (r report) ok() bool {
	return r.Errors == 0 && r.Distinct == 1 && r.NotReady == 0 && r.Constructions == 1
}

// violation returns a non-nil error when the run saw anything but one fully built instance.
func (r report) violation() error {
	if r.ok() {
		return nil
	}
	return fmt.Errorf("singleton violated: %d distinct instances, %d constructions, %d errors, %d not ready",
		r.Distinct, r.Constructions, r.Errors, r.NotReady)
}

func (r report) encode() ([]byte, error) { return ffjson.Marshal(r) }
