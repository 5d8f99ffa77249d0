package autowire

import (
	"reflect"
	"sync"

	"go.uber.org/multierr"
)

// scope implements Scope.
type scope struct {
	parent    *Provider
	instances map[*serviceEntry]any
	order     []*serviceEntry
	mu        sync.Mutex
	ended     bool
}

var _ Scope = (*scope)(nil)

// newScope creates a new scope.
func newScope(parent *Provider) *scope {
	return &scope{
		parent:    parent,
		instances: make(map[*serviceEntry]any),
	}
}

// Resolve returns a service by key from this scope.
func (s *scope) Resolve(key reflect.Type) (any, error) {
	if s.isEnded() {
		return nil, ErrScopeEnded
	}
	return s.resolution().Resolve(key)
}

// ResolveAll returns one instance per registration under key.
func (s *scope) ResolveAll(key reflect.Type) ([]any, error) {
	if s.isEnded() {
		return nil, ErrScopeEnded
	}
	return s.resolution().ResolveAll(key)
}

// Has checks if a service is registered.
func (s *scope) Has(key reflect.Type) bool {
	return s.parent.Has(key)
}

func (s *scope) resolution() *resolution {
	return &resolution{provider: s.parent, scope: s}
}

func (s *scope) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// scoped returns the instance cached in this scope, creating it on first use.
// The scope lock is not held while the instance is built so that its
// dependencies can be resolved from the same scope.
func (s *scope) scoped(entry *serviceEntry, r Resolver) (any, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, ErrScopeEnded
	}
	if instance, ok := s.instances[entry]; ok {
		s.mu.Unlock()
		return instance, nil
	}
	s.mu.Unlock()

	instance, err := entry.create(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The scope ended while the instance was built; nothing will dispose it
	// later.
	if s.ended {
		if disposable, ok := instance.(Disposable); ok && !entry.IsFactory() {
			if dErr := disposable.Dispose(); dErr != nil {
				return nil, multierr.Append(ErrScopeEnded, NewServiceError(entry.Key, "dispose", dErr))
			}
		}
		return nil, ErrScopeEnded
	}

	// Another goroutine may have won the race; keep the first instance.
	if existing, ok := s.instances[entry]; ok {
		return existing, nil
	}

	s.instances[entry] = instance
	s.order = append(s.order, entry)

	return instance, nil
}

// End cleans up all scoped services in this scope.
func (s *scope) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return ErrScopeEnded
	}

	// Dispose of scoped instances in reverse order
	var err error

	for i := len(s.order) - 1; i >= 0; i-- {
		entry := s.order[i]
		if entry.IsFactory() {
			continue
		}
		if disposable, ok := s.instances[entry].(Disposable); ok {
			if dErr := disposable.Dispose(); dErr != nil {
				err = multierr.Append(err, NewServiceError(entry.Key, "dispose", dErr))
			}
		}
	}

	s.instances = nil
	s.order = nil
	s.ended = true

	return err
}
