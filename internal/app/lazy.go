package app

import (
	"sync"
	"sync/atomic"
)

// lazy holds a component built on first access. The first result, error included, is
// returned to every later caller.
type lazy[T any] struct {
	once  sync.Once
	ready atomic.Bool
	value T
	err   error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = init()
		l.ready.Store(l.err == nil)
	})
	return l.value, l.err
}

// peek returns the value only if it was built successfully.
func (l *lazy[T]) peek() (T, bool) {
	if !l.ready.Load() {
		var zero T
		return zero, false
	}
	return l.value, true
}
