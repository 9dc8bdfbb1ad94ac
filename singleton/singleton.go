// Package singleton provides a lazily constructed, process-shared value guarded by
// double-checked locking.
package singleton

import (
	"sync"
	"sync/atomic"

	log "github.com/golang/glog"
	"github.com/mesos/singleton-go/singleton/metrics"
)

type (
	// Constructor builds the shared value. It runs at most once successfully per Accessor.
	Constructor[T any] func() (*T, error)

	// Getter yields the shared instance, see Accessor.Get.
	Getter[T any] interface {
		Get() (*T, error)
	}

	// GetFunc adapts a plain func to the Getter interface.
	GetFunc[T any] func() (*T, error)

	// Accessor hands out a single instance of T, built on first demand.
	// The zero value is not usable, see New.
	Accessor[T any] struct {
		slot    atomic.Pointer[T]
		mu      sync.Mutex
		ctor    Constructor[T]
		ready   *latch
		name    string
		harness metrics.Harness
	}
)

func (f GetFunc[T]) Get() (*T, error) { return f() }

// New returns an Accessor that builds its instance with ctor. Nothing is
// constructed until the first call to Get.
func New[T any](ctor Constructor[T], opts ...Option) *Accessor[T] {
	if ctor == nil {
		panic("singleton: nil constructor")
	}
	cfg := newConfig(opts...)
	return &Accessor[T]{
		ctor:    ctor,
		ready:   newLatch(),
		name:    cfg.name,
		harness: cfg.harness,
	}
}

// Get returns the shared instance, constructing it if this is the first successful call.
// A construction error is returned to the caller that ran the constructor and leaves the
// accessor unconstructed; a later call tries again.
func (a *Accessor[T]) Get() (*T, error) {
	if v := a.slot.Load(); v != nil {
		return v, nil
	}
	return a.getSlow()
}

func (a *Accessor[T]) getSlow() (*T, error) {
	metrics.SlowPathCount.WithLabelValues(a.name).Inc()

	a.mu.Lock()
	defer a.mu.Unlock()

	// another goroutine may have won while we waited for the lock
	if v := a.slot.Load(); v != nil {
		return v, nil
	}

	var v *T
	err := a.harness.Run(func() (err error) {
		v, err = a.ctor()
		if err == nil && v == nil {
			err = ErrNilInstance
		}
		return
	}, a.name)
	if err != nil {
		log.Errorf("singleton %q: construction failed: %v", a.name, err)
		return nil, &ConstructionError{Name: a.name, Err: err}
	}

	a.slot.Store(v)
	a.ready.Close()
	log.V(1).Infof("singleton %q: constructed", a.name)
	return v, nil
}

// MustGet is like Get but panics if construction fails.
func (a *Accessor[T]) MustGet() *T {
	v, err := a.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Constructed reports whether the instance has been built. It never blocks.
func (a *Accessor[T]) Constructed() bool { return a.slot.Load() != nil }

// Done returns a chan that is closed once the instance has been built.
func (a *Accessor[T]) Done() <-chan struct{} { return a.ready.Done() }

// Name returns the label used for logs and metrics.
func (a *Accessor[T]) Name() string { return a.name }
