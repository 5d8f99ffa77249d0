package autowire

import (
	"fmt"
	"reflect"
)

// Registration is one entry of a Collection: a binding key, how to produce
// the implementation, and its lifetime.
//
// Exactly one of Impl or Factory is set. Impl entries are built with
// Constructor (or the zero value of Impl when Constructor is nil); Factory
// entries are opaque and may declare the keys they resolve in DependsOn so
// build-time validation can follow them.
type Registration struct {
	Key         reflect.Type
	Impl        reflect.Type
	Constructor any
	Factory     Factory
	Lifetime    Lifetime
	DependsOn   []reflect.Type

	ctor *constructorInfo
}

// IsFactory reports whether the registration is backed by a factory rather
// than an implementation type.
func (r Registration) IsFactory() bool {
	return r.Impl == nil
}

// Dependencies returns the binding keys the registration needs at
// resolution time.
func (r Registration) Dependencies() []reflect.Type {
	deps := append([]reflect.Type(nil), r.DependsOn...)
	if r.ctor != nil {
		deps = append(deps, r.ctor.dependencies()...)
	}
	return deps
}

// String returns a short description used in logs and errors.
func (r Registration) String() string {
	if r.IsFactory() {
		return fmt.Sprintf("%s => factory (%s)", keyName(r.Key), r.Lifetime)
	}
	return fmt.Sprintf("%s => %s (%s)", keyName(r.Key), keyName(r.Impl), r.Lifetime)
}

// Collection is the mutable list of registrations a Provider is built from.
// Entries are kept in insertion order and duplicate keys are allowed: the
// last entry for a key wins on Resolve, all of them are returned by
// ResolveAll.
//
// A Collection is not safe for concurrent mutation; fill it during startup.
type Collection struct {
	entries []Registration
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add validates and appends a registration.
func (c *Collection) Add(reg Registration) error {
	if reg.Key == nil {
		return fmt.Errorf("registration key cannot be nil")
	}

	switch reg.Lifetime {
	case Transient, Scoped, Singleton:
	default:
		return fmt.Errorf("register %s: unknown lifetime %s", keyName(reg.Key), reg.Lifetime)
	}

	if reg.Impl == nil {
		if reg.Factory == nil {
			return ErrInvalidFactory
		}
		if reg.Constructor != nil {
			return fmt.Errorf("register %s: constructor requires an implementation type", keyName(reg.Key))
		}

		c.entries = append(c.entries, reg)

		return nil
	}

	if reg.Factory != nil {
		return fmt.Errorf("register %s: factory and implementation type are mutually exclusive", keyName(reg.Key))
	}

	if reg.Impl.Kind() == reflect.Interface {
		return fmt.Errorf("register %s: implementation %s must be a concrete type", keyName(reg.Key), keyName(reg.Impl))
	}

	if !reg.Impl.AssignableTo(reg.Key) {
		return fmt.Errorf("register %s: %s is not assignable to %s", keyName(reg.Key), keyName(reg.Impl), keyName(reg.Key))
	}

	if reg.Constructor != nil {
		info, err := analyzeConstructor(reg.Constructor)
		if err != nil {
			return NewError(CodeInvalidFactory, fmt.Sprintf("invalid constructor for %s", keyName(reg.Impl)), err)
		}
		if !info.result.AssignableTo(reg.Key) {
			return fmt.Errorf("register %s: constructor returns %s", keyName(reg.Key), keyName(info.result))
		}
		reg.ctor = info
	}

	c.entries = append(c.entries, reg)

	return nil
}

// AddType registers impl under key, built by ctor (or the zero value of impl
// when ctor is nil).
func (c *Collection) AddType(key, impl reflect.Type, ctor any, lifetime Lifetime) error {
	if impl == nil {
		return fmt.Errorf("register %s: implementation type cannot be nil", keyName(key))
	}
	return c.Add(Registration{Key: key, Impl: impl, Constructor: ctor, Lifetime: lifetime})
}

// AddFactory registers a factory under key.
func (c *Collection) AddFactory(key reflect.Type, factory Factory, lifetime Lifetime, dependsOn ...reflect.Type) error {
	if factory == nil {
		return ErrInvalidFactory
	}
	return c.Add(Registration{Key: key, Factory: factory, Lifetime: lifetime, DependsOn: dependsOn})
}

// AddInstance registers a pre-built instance as a singleton.
func (c *Collection) AddInstance(key reflect.Type, instance any) error {
	if instance != nil && !reflect.TypeOf(instance).AssignableTo(key) {
		return ErrTypeMismatch(key, instance)
	}
	return c.Add(Registration{
		Key: key,
		Factory: func(Resolver) (any, error) {
			return instance, nil
		},
		Lifetime: Singleton,
	})
}

// Entries returns a copy of the registrations in insertion order.
func (c *Collection) Entries() []Registration {
	out := make([]Registration, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of registrations.
func (c *Collection) Len() int {
	return len(c.entries)
}

// RegisterAll adds multiple registrations in a single call.
// Returns error if any registration fails; earlier ones stay registered.
//
// Example:
//
//	err := autowire.RegisterAll(c,
//	    autowire.Registration{Key: TypeOf[IClock](), Impl: TypeOf[*Clock](), Lifetime: autowire.Singleton},
//	    autowire.Registration{Key: TypeOf[*Handler](), Impl: TypeOf[*Handler](), Constructor: NewHandler},
//	)
func RegisterAll(c *Collection, regs ...Registration) error {
	for _, reg := range regs {
		if err := c.Add(reg); err != nil {
			return err
		}
	}
	return nil
}
