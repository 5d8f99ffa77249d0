package autowire

import (
	"reflect"
	"sync"
)

// Catalog is the discovery table of candidate types.
// Packages add their descriptors from init(), so access is guarded.
type Catalog struct {
	descs []Descriptor
	index map[reflect.Type]int
	mu    sync.RWMutex
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		index: make(map[reflect.Type]int),
	}
}

var defaultCatalog = NewCatalog()

// DefaultCatalog returns the process-wide catalog filled by Register.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Register adds descriptors to the default catalog and panics on an invalid
// or duplicate descriptor. Call it from init().
func Register(descs ...Descriptor) {
	if err := defaultCatalog.Register(descs...); err != nil {
		panic(err)
	}
}

// Register validates and adds descriptors. A type can carry at most one
// marker: adding it twice returns ErrDuplicateCandidate. Descriptors before
// the failing one stay registered.
func (c *Catalog) Register(descs ...Descriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range descs {
		if err := d.validate(); err != nil {
			return err
		}

		if i, exists := c.index[d.Type]; exists {
			return ErrDuplicateCandidate.WithContext("type", keyName(d.Type)).
				WithContext("existing", c.descs[i].Kind.String())
		}

		c.index[d.Type] = len(c.descs)
		c.descs = append(c.descs, d)
	}

	return nil
}

// Descriptors returns the registered descriptors in registration order.
func (c *Catalog) Descriptors() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Descriptor, len(c.descs))
	copy(out, c.descs)
	return out
}

// Lookup returns the descriptor registered for t.
func (c *Catalog) Lookup(t reflect.Type) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[t]
	if !ok {
		return Descriptor{}, false
	}
	return c.descs[i], true
}

// Len returns the number of registered descriptors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.descs)
}

// Bindings returns the binding keys d is registered under with the default
// naming convention.
func (c *Catalog) Bindings(d Descriptor) []reflect.Type {
	return resolveBindings(d, c.baseSetOf(d), DefaultNamingConvention)
}

// candidate returns the descriptor of t, or of the pointer/value form of t.
func (c *Catalog) candidate(t reflect.Type) (Descriptor, bool) {
	if d, ok := c.Lookup(t); ok {
		return d, true
	}
	if t.Kind() == reflect.Ptr {
		return c.Lookup(t.Elem())
	}
	return c.Lookup(reflect.PointerTo(t))
}

// isCandidate reports whether t, or the pointer/value form of t, carries a
// marker.
func (c *Catalog) isCandidate(t reflect.Type) bool {
	_, ok := c.candidate(t)
	return ok
}

// baseSetOf returns the interfaces exposed by the base of d: those declared
// by every candidate up the base chain. A base outside the catalog (named
// with Extends) exposes whatever its method set implements.
func (c *Catalog) baseSetOf(d Descriptor) baseSet {
	base := c.baseOf(d)
	if base == nil {
		return nil
	}

	var ifaces []reflect.Type
	seen := map[reflect.Type]bool{indirect(d.Type): true}

	for base != nil {
		bd, ok := c.candidate(base)
		if !ok {
			return declaredBase(ifaces, base)
		}
		if seen[indirect(bd.Type)] {
			break
		}
		seen[indirect(bd.Type)] = true

		ifaces = append(ifaces, bd.Interfaces...)
		base = c.baseOf(bd)
	}

	return declaredBase(ifaces, nil)
}

// baseOf returns the explicit base type of d, else its first embedded field
// whose type is a candidate.
func (c *Catalog) baseOf(d Descriptor) reflect.Type {
	if d.Base != nil {
		return d.Base
	}

	t := indirect(d.Type)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && c.isCandidate(f.Type) {
			return f.Type
		}
	}

	return nil
}
