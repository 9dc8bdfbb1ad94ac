package singleton

import "sync"

// latch is open until Close is called; Close may be called any number of times.
type latch struct {
	once sync.Once
	line chan struct{}
}

func newLatch() *latch { return &latch{line: make(chan struct{})} }

func (l *latch) Done() <-chan struct{} { return l.line }

func (l *latch) Close() { l.once.Do(func() { close(l.line) }) }

