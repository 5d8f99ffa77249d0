package autowire

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"
)

// Provider resolves services from a built Collection.
// It is safe for concurrent use.
type Provider struct {
	services   map[reflect.Type][]*serviceEntry
	entries    []*serviceEntry
	middleware *middlewareChain
	closed     bool
	mu         sync.RWMutex
}

// serviceEntry is the runtime state of one registration.
type serviceEntry struct {
	Registration

	instance any
	created  bool
	mu       sync.Mutex
}

// Build creates a Provider from the current registrations.
// Later changes to the collection do not affect the provider.
func (c *Collection) Build(opts ...BuildOption) (*Provider, error) {
	cfg := mergeBuildOptions(opts)

	p := &Provider{
		services:   make(map[reflect.Type][]*serviceEntry),
		entries:    make([]*serviceEntry, 0, len(c.entries)),
		middleware: newMiddlewareChain(),
	}

	for _, reg := range c.entries {
		entry := &serviceEntry{Registration: reg}
		p.entries = append(p.entries, entry)
		p.services[reg.Key] = append(p.services[reg.Key], entry)
	}

	for _, mw := range cfg.middleware {
		p.middleware.add(mw)
	}

	if cfg.validate {
		if err := validateRegistrations(c.entries); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Resolve returns the service registered last under key.
func (p *Provider) Resolve(key reflect.Type) (any, error) {
	return p.root().Resolve(key)
}

// ResolveAll returns one instance per registration under key.
func (p *Provider) ResolveAll(key reflect.Type) ([]any, error) {
	return p.root().ResolveAll(key)
}

// Has checks if a service is registered.
func (p *Provider) Has(key reflect.Type) bool {
	_, ok := p.last(key)
	return ok
}

// Keys returns all registered binding keys in first-registration order.
func (p *Provider) Keys() []reflect.Type {
	seen := make(map[reflect.Type]bool, len(p.services))
	keys := make([]reflect.Type, 0, len(p.services))

	for _, e := range p.entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			keys = append(keys, e.Key)
		}
	}

	return keys
}

// Use adds middleware to the provider.
// Middleware is called in the order they are added.
func (p *Provider) Use(middleware Middleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware.add(middleware)
}

// BeginScope creates a new scope for scoped services.
func (p *Provider) BeginScope() Scope {
	return newScope(p)
}

// Close disposes every singleton built from an implementation type that was
// created and implements Disposable, in reverse registration order. The
// provider cannot be used afterwards.
func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProviderClosed
	}
	p.closed = true
	p.mu.Unlock()

	var err error
	for i := len(p.entries) - 1; i >= 0; i-- {
		entry := p.entries[i]
		if entry.Lifetime != Singleton {
			continue
		}

		entry.mu.Lock()
		instance, created := entry.instance, entry.created
		entry.instance, entry.created = nil, false
		entry.mu.Unlock()

		// Factory registrations are not owned by the provider.
		if !created || entry.IsFactory() {
			continue
		}

		if d, ok := instance.(Disposable); ok {
			if dErr := d.Dispose(); dErr != nil {
				err = multierr.Append(err, NewServiceError(entry.Key, "dispose", dErr))
			}
		}
	}

	return err
}

// root returns a resolution rooted at the provider.
func (p *Provider) root() *resolution {
	return &resolution{provider: p}
}

// last returns the winning registration for key.
func (p *Provider) last(key reflect.Type) (*serviceEntry, bool) {
	entries := p.services[key]
	if len(entries) == 0 {
		return nil, false
	}
	return entries[len(entries)-1], true
}

func (p *Provider) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

func (p *Provider) chain() *middlewareChain {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.middleware
}

// resolution is the Resolver handed to factories and constructors.
// It remembers which scope it belongs to and the chain of keys being
// resolved, so cycles are reported instead of overflowing the stack.
type resolution struct {
	provider *Provider
	scope    *scope
	path     []reflect.Type
}

var _ Resolver = (*resolution)(nil)

// Resolve returns the service registered last under key.
func (r *resolution) Resolve(key reflect.Type) (any, error) {
	ctx := context.Background()
	chain := r.provider.chain()

	if err := chain.beforeResolve(ctx, key); err != nil {
		return nil, err
	}

	service, err := r.resolveInternal(key)

	if mwErr := chain.afterResolve(ctx, key, service, err); mwErr != nil {
		return nil, mwErr
	}

	return service, err
}

// resolveInternal performs the actual service resolution without middleware.
func (r *resolution) resolveInternal(key reflect.Type) (any, error) {
	if r.provider.isClosed() {
		return nil, ErrProviderClosed
	}

	entry, ok := r.provider.last(key)
	if !ok {
		return nil, ErrServiceNotFound(key)
	}

	return r.resolveEntry(entry)
}

// ResolveAll returns one instance per registration under key.
func (r *resolution) ResolveAll(key reflect.Type) ([]any, error) {
	if r.provider.isClosed() {
		return nil, ErrProviderClosed
	}

	entries := r.provider.services[key]
	out := make([]any, 0, len(entries))

	for _, entry := range entries {
		instance, err := r.resolveEntry(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}

	return out, nil
}

// Has checks if a service is registered.
func (r *resolution) Has(key reflect.Type) bool {
	return r.provider.Has(key)
}

func (r *resolution) detached() Resolver {
	return &resolution{provider: r.provider, scope: r.scope}
}

func (r *resolution) resolveEntry(entry *serviceEntry) (any, error) {
	key := entry.Key

	if slices.Contains(r.path, key) {
		return nil, ErrCircularDependency(append(slices.Clone(r.path), key))
	}

	child := &resolution{
		provider: r.provider,
		scope:    r.scope,
		path:     append(slices.Clone(r.path), key),
	}

	switch entry.Lifetime {
	case Singleton:
		// Singletons never see the scope they were first requested from.
		child.scope = nil
		return entry.singleton(child)

	case Scoped:
		if r.scope == nil {
			return nil, ErrScopedFromRoot(key)
		}
		return r.scope.scoped(entry, child)

	default:
		return entry.create(child)
	}
}

// create builds a new instance of the entry.
func (e *serviceEntry) create(r Resolver) (any, error) {
	var (
		instance any
		err      error
	)

	switch {
	case e.Factory != nil:
		instance, err = e.Factory(r)
	case e.ctor != nil:
		instance, err = e.ctor.invoke(r)
	default:
		instance = zeroInstance(e.Impl)
	}

	if err != nil {
		return nil, NewServiceError(e.Key, "resolve", err)
	}

	return instance, nil
}

// singleton returns the cached instance, creating it on first use.
func (e *serviceEntry) singleton(r Resolver) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.created {
		return e.instance, nil
	}

	instance, err := e.create(r)
	if err != nil {
		return nil, err
	}

	e.instance = instance
	e.created = true

	return instance, nil
}
