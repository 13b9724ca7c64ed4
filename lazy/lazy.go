// Package lazy provides values that are initialized at most once, on
// first access.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Of is a value that is created the first time Get is called.
type Of[T any] struct {
	create      func() T
	once        sync.Once
	value       T
	initialized atomic.Bool
}

// New returns a lazy value backed by the given constructor. The
// constructor runs at most once, on the first call to Get.
func New[T any](f func() T) *Of[T] {
	return &Of[T]{create: f}
}

// Get returns the value, initializing it first if needed.
// If the constructor panics, the once-state is reset so a later call can
// retry initialization.
func (l *Of[T]) Get() T { //nolint:ireturn
	defer func() {
		if r := recover(); r != nil {
			l.once = sync.Once{}

			panic(r)
		}
	}()

	l.once.Do(func() {
		if l.create != nil {
			l.value = l.create()
			l.initialized.Store(true)
			l.create = nil
		}
	})

	return l.value
}

// Set overrides the value, bypassing the constructor. Intended for tests
// that need to substitute a canned value.
func (l *Of[T]) Set(value T) {
	l.create = nil
	l.value = value
	l.initialized.Store(true)
}

// Initialized reports whether the value has been created yet.
func (l *Of[T]) Initialized() bool {
	return l.initialized.Load()
}
