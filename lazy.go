package autowire

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// Lazy wraps a dependency that is resolved on first access.
// This is useful for breaking circular dependencies or deferring
// resolution of expensive services until they're actually needed.
//
// A constructor may take *Lazy[T] as a parameter; the container hands it an
// unresolved wrapper bound to the resolver the constructor runs in.
type Lazy[T any] struct {
	resolver Resolver
	once     sync.Once
	value    T
	err      error
	resolved atomic.Bool
}

// NewLazy creates a new lazy dependency wrapper.
func NewLazy[T any](r Resolver) *Lazy[T] {
	return &Lazy[T]{resolver: r}
}

func (l *Lazy[T]) bindResolver(r Resolver) {
	l.resolver = r
}

// Get resolves the dependency and returns it.
// The resolution happens only once; subsequent calls return the cached value.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		if l.resolver == nil {
			l.err = fmt.Errorf("lazy dependency %s: no resolver bound", keyName(l.Key()))
			return
		}

		l.value, l.err = Resolve[T](l.resolver)
		l.resolved.Store(l.err == nil)
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", keyName(l.Key()), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved.Load()
}

// Key returns the binding key of the dependency.
func (l *Lazy[T]) Key() reflect.Type {
	return TypeOf[T]()
}

// OptionalLazy wraps an optional dependency that is resolved on first access.
// Returns the zero value without error if the dependency is not registered.
type OptionalLazy[T any] struct {
	resolver Resolver
	once     sync.Once
	value    T
	err      error
	resolved atomic.Bool
	found    atomic.Bool
}

// NewOptionalLazy creates a new optional lazy dependency wrapper.
func NewOptionalLazy[T any](r Resolver) *OptionalLazy[T] {
	return &OptionalLazy[T]{resolver: r}
}

func (l *OptionalLazy[T]) bindResolver(r Resolver) {
	l.resolver = r
}

// Get resolves the dependency and returns it.
// Returns the zero value without error if the dependency is not found.
func (l *OptionalLazy[T]) Get() (T, error) {
	l.once.Do(func() {
		if l.resolver == nil || !l.resolver.Has(TypeOf[T]()) {
			l.resolved.Store(true)
			return
		}

		l.value, l.err = Resolve[T](l.resolver)
		l.found.Store(l.err == nil)
		l.resolved.Store(l.err == nil)
	})

	return l.value, l.err
}

// MustGet resolves the dependency and returns it, panicking on error.
// Returns the zero value if the dependency is not found (does not panic).
func (l *OptionalLazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("optional lazy dependency %s failed: %v", keyName(TypeOf[T]()), err))
	}

	return value
}

// IsResolved returns true if the dependency has been resolved.
func (l *OptionalLazy[T]) IsResolved() bool {
	return l.resolved.Load()
}

// IsFound returns true if the dependency was found (only valid after resolution).
func (l *OptionalLazy[T]) IsFound() bool {
	return l.found.Load()
}
