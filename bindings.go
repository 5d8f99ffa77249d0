package autowire

import (
	"reflect"
)

// NamingConvention reports whether iface is the interface named after impl.
// A matching declared interface becomes the only binding key.
type NamingConvention func(impl, iface reflect.Type) bool

// DefaultNamingConvention matches interfaces named "I" + the type's name,
// so *Clock binds to IClock.
func DefaultNamingConvention(impl, iface reflect.Type) bool {
	return iface.Name() == "I"+shortName(impl)
}

// baseSet reports whether the base type of a descriptor exposes iface.
// A nil baseSet means the type has no base.
type baseSet func(iface reflect.Type) bool

// declaredBase exposes the interfaces declared along a chain of candidate
// base types. tail, when set, is a base outside the catalog whose interfaces
// are found by method set.
func declaredBase(ifaces []reflect.Type, tail reflect.Type) baseSet {
	set := make(map[reflect.Type]bool, len(ifaces))
	for _, iface := range ifaces {
		set[iface] = true
	}
	return func(iface reflect.Type) bool {
		return set[iface] || (tail != nil && implementedBy(tail, iface))
	}
}

// resolveBindings computes the binding keys of a service descriptor, in
// priority order:
//
//  1. the explicit service interface;
//  2. the first declared interface accepted by the naming convention;
//  3. without a base type, every declared interface;
//  4. with a base type, the declared interfaces the base does not expose.
//
// When nothing is left the concrete type is the only key. An interface
// declared by both the type and its base is dropped in step 4; use As to
// bind it.
func resolveBindings(d Descriptor, base baseSet, naming NamingConvention) []reflect.Type {
	if d.Service != nil {
		return []reflect.Type{d.Service}
	}

	if naming == nil {
		naming = DefaultNamingConvention
	}

	for _, iface := range d.Interfaces {
		if naming(d.Type, iface) {
			return []reflect.Type{iface}
		}
	}

	var keys []reflect.Type
	if base == nil {
		keys = append(keys, d.Interfaces...)
	} else {
		for _, iface := range d.Interfaces {
			if !base(iface) {
				keys = append(keys, iface)
			}
		}
	}

	if len(keys) == 0 {
		return []reflect.Type{d.Type}
	}

	return keys
}

// implementedBy reports whether base or a pointer to it implements iface.
// Embedding promotes methods of both receivers, so either form counts.
func implementedBy(base, iface reflect.Type) bool {
	if base.Implements(iface) {
		return true
	}
	return base.Kind() != reflect.Ptr && base.Kind() != reflect.Interface &&
		reflect.PointerTo(base).Implements(iface)
}
