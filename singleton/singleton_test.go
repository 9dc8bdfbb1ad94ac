package singleton

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mesos/singleton-go/singleton/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	serial int64
	ready  bool // set last by the constructor
}

// counting returns a constructor that records how many times it ran to completion.
func counting(n *int64, delay time.Duration) Constructor[widget] {
	return func() (*widget, error) {
		w := &widget{serial: atomic.AddInt64(n, 1)}
		if delay > 0 {
			time.Sleep(delay)
		}
		w.ready = true
		return w, nil
	}
}

// hammer starts n goroutines behind a common barrier, each calling get once.
func hammer(n int, get func() (*widget, error)) (results []*widget, errs []error) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			w, err := get()
			mu.Lock()
			defer mu.Unlock()
			results = append(results, w)
			errs = append(errs, err)
		}()
	}
	close(start)
	wg.Wait()
	return
}

func TestNoPrematureConstruction(t *testing.T) {
	var n int64
	a := New(counting(&n, 0))
	assert.Equal(t, int64(0), atomic.LoadInt64(&n))
	assert.False(t, a.Constructed())
	select {
	case <-a.Done():
		t.Fatal("latch closed before construction")
	default:
	}
}

func TestGetIdempotent(t *testing.T) {
	var n int64
	a := New(counting(&n, 0))
	first, err := a.Get()
	require.NoError(t, err)
	require.NotNil(t, first)
	for i := 0; i < 100; i++ {
		w, err := a.Get()
		assert.NoError(t, err)
		assert.True(t, first == w, "call %d returned a different instance", i)
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&n))
	assert.True(t, a.Constructed())
	select {
	case <-a.Done():
	default:
		t.Fatal("latch still open after construction")
	}
}

func TestConcurrentConstructionCount(t *testing.T) {
	for ti, tc := range []struct {
		goroutines int
		delay      time.Duration
	}{
		{1, 0},
		{2, 0},
		{100, 0},
		{100, 10 * time.Millisecond},
		{1000, time.Millisecond},
	} {
		var n int64
		a := New(counting(&n, tc.delay))
		results, errs := hammer(tc.goroutines, a.Get)

		assert.Equal(t, int64(1), atomic.LoadInt64(&n), "test case %d", ti)
		require.Len(t, results, tc.goroutines, "test case %d", ti)
		for i := range results {
			assert.NoError(t, errs[i], "test case %d", ti)
			assert.True(t, results[0] == results[i], "test case %d: result %d is a different instance", ti, i)
			assert.True(t, results[i].ready, "test case %d: result %d not fully initialized", ti, i)
		}
	}
}

func TestFiftyGoroutinesShareOneInstance(t *testing.T) {
	var n int64
	a := New(counting(&n, time.Millisecond), Name("fifty"))
	results, _ := hammer(50, a.Get)

	require.Len(t, results, 50)
	for _, w := range results {
		assert.True(t, results[0] == w)
	}
	assert.Equal(t, int64(1), results[0].serial)
}

func TestConstructionFailureIsRetried(t *testing.T) {
	var (
		calls int
		boom  = errors.New("boom")
	)
	a := New(func() (*widget, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &widget{ready: true}, nil
	}, Name("flaky"))

	w, err := a.Get()
	assert.Nil(t, w)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, IsConstructionError(err))
	assert.Contains(t, err.Error(), `"flaky"`)
	assert.False(t, a.Constructed())

	w, err = a.Get()
	require.NoError(t, err)
	assert.True(t, w.ready)
	assert.True(t, a.Constructed())

	again, err := a.Get()
	require.NoError(t, err)
	assert.True(t, w == again)
	assert.Equal(t, 2, calls)
}

func TestNilInstance(t *testing.T) {
	a := New(func() (*widget, error) { return nil, nil })
	_, err := a.Get()
	assert.True(t, errors.Is(err, ErrNilInstance))
	assert.False(t, a.Constructed())
}

func TestConstructorPanicReleasesLock(t *testing.T) {
	var calls int
	a := New(func() (*widget, error) {
		calls++
		if calls == 1 {
			panic("half built")
		}
		return &widget{ready: true}, nil
	})
	assert.Panics(t, func() { a.Get() })
	assert.False(t, a.Constructed())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := a.Get()
		assert.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lock was not released after constructor panic")
	}
	assert.True(t, a.Constructed())
}

func TestDone(t *testing.T) {
	var n int64
	a := New(counting(&n, 0))
	waiting := make(chan *widget)
	go func() {
		<-a.Done()
		waiting <- a.MustGet()
	}()

	w := a.MustGet()
	select {
	case got := <-waiting:
		assert.True(t, w == got)
	case <-time.After(5 * time.Second):
		t.Fatal("Done was not closed after construction")
	}
}

func TestMustGetPanics(t *testing.T) {
	a := New(func() (*widget, error) { return nil, errors.New("nope") })
	assert.Panics(t, func() { a.MustGet() })
}

func TestNewNilConstructor(t *testing.T) {
	assert.Panics(t, func() { New[widget](nil) })
}

func TestOptions(t *testing.T) {
	var runs []string
	h := func(f func() error, labels ...string) error {
		runs = append(runs, labels...)
		return f()
	}
	a := New(func() (*widget, error) { return &widget{}, nil }, Name("opts"), WithHarness(h), nil)
	assert.Equal(t, "opts", a.Name())
	a.MustGet()
	a.MustGet()
	assert.Equal(t, []string{"opts"}, runs)

	assert.Equal(t, defaultName, New(func() (*widget, error) { return &widget{}, nil }, Name("")).Name())
}

func TestGetFunc(t *testing.T) {
	var n int64
	a := New(counting(&n, 0))
	var g Getter[widget] = GetFunc[widget](a.Get)
	x, err := g.Get()
	require.NoError(t, err)
	y, err := a.Get()
	require.NoError(t, err)
	assert.True(t, x == y)
}

func TestSlowPathCountedOnce(t *testing.T) {
	var n int64
	a := New(counting(&n, 0), Name("slow-path"))
	slow := metrics.SlowPathCount.WithLabelValues("slow-path")
	assert.Equal(t, 0.0, testutil.ToFloat64(slow))
	for i := 0; i < 10; i++ {
		_, err := a.Get()
		require.NoError(t, err)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(slow))
}
