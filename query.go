package autowire

import (
	"reflect"
)

// ServiceQuery defines criteria for querying registrations.
type ServiceQuery struct {
	// Key filters by binding key. nil matches all keys.
	Key reflect.Type

	// Impl filters by implementation type. nil matches all
	// implementations, including factory entries.
	Impl reflect.Type

	// Lifetime filters by lifetime (singleton, transient, scoped).
	// Empty string matches all lifetimes.
	Lifetime string

	// FactoryOnly keeps only factory-backed entries (forwarders, options
	// providers, instances).
	FactoryOnly bool
}

// Query returns the registrations of c matching the query, in insertion order.
//
// Example:
//
//	// Every singleton bound to a forwarding or options factory
//	results := autowire.Query(c, autowire.ServiceQuery{
//	    Lifetime:    "singleton",
//	    FactoryOnly: true,
//	})
func Query(c *Collection, query ServiceQuery) []Registration {
	var results []Registration

	for _, reg := range c.entries {
		if query.Key != nil && reg.Key != query.Key {
			continue
		}

		if query.Impl != nil && reg.Impl != query.Impl {
			continue
		}

		if query.Lifetime != "" && reg.Lifetime.String() != query.Lifetime {
			continue
		}

		if query.FactoryOnly && !reg.IsFactory() {
			continue
		}

		results = append(results, reg)
	}

	return results
}

// QueryKeys returns the binding keys of the registrations matching the query.
func QueryKeys(c *Collection, query ServiceQuery) []reflect.Type {
	results := Query(c, query)
	keys := make([]reflect.Type, len(results))
	for i, reg := range results {
		keys[i] = reg.Key
	}
	return keys
}

// FindByKey returns all registrations bound to key.
func FindByKey(c *Collection, key reflect.Type) []Registration {
	return Query(c, ServiceQuery{Key: key})
}

// FindByImpl returns all registrations built from impl.
func FindByImpl(c *Collection, impl reflect.Type) []Registration {
	return Query(c, ServiceQuery{Impl: impl})
}

// FindByLifetime returns all registrations with a specific lifetime.
func FindByLifetime(c *Collection, lifetime Lifetime) []Registration {
	return Query(c, ServiceQuery{Lifetime: lifetime.String()})
}
