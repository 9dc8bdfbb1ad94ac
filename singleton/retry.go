package singleton

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/golang/glog"
)

// Retry calls g.Get until it succeeds, b gives up, or ctx is done.
// ErrNilInstance is not retried.
func Retry[T any](ctx context.Context, g Getter[T], b backoff.BackOff) (*T, error) {
	var v *T
	op := func() (err error) {
		v, err = g.Get()
		if errors.Is(err, ErrNilInstance) {
			return backoff.Permanent(err)
		}
		return
	}
	notify := func(err error, d time.Duration) {
		log.V(1).Infof("retrying construction in %v: %v", d, err)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return v, nil
}
