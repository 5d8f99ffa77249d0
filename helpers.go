package autowire

import (
	"fmt"
)

// Resolve with type safety.
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	key := TypeOf[T]()

	instance, err := r.Resolve(key)
	if err != nil {
		return zero, err
	}

	if instance == nil {
		return zero, nil
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, ErrTypeMismatch(key, instance)
	}

	return typed, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](r Resolver) T {
	instance, err := Resolve[T](r)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", keyName(TypeOf[T]()), err))
	}

	return instance
}

// ResolveAllOf resolves every registration of T with type safety.
func ResolveAllOf[T any](r Resolver) ([]T, error) {
	key := TypeOf[T]()

	instances, err := r.ResolveAll(key)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(instances))
	for _, instance := range instances {
		typed, ok := instance.(T)
		if !ok {
			return nil, ErrTypeMismatch(key, instance)
		}
		result = append(result, typed)
	}

	return result, nil
}

// Has checks if T is registered.
func Has[T any](r Resolver) bool {
	return r.Has(TypeOf[T]())
}

// AddSingleton is a convenience wrapper for singleton services keyed by
// their own type. ctor may be nil for types usable as zero values.
func AddSingleton[T any](c *Collection, ctor any) error {
	return c.AddType(TypeOf[T](), TypeOf[T](), ctor, Singleton)
}

// AddScoped is a convenience wrapper for scoped services keyed by their own type.
func AddScoped[T any](c *Collection, ctor any) error {
	return c.AddType(TypeOf[T](), TypeOf[T](), ctor, Scoped)
}

// AddTransient is a convenience wrapper for transient services keyed by their own type.
func AddTransient[T any](c *Collection, ctor any) error {
	return c.AddType(TypeOf[T](), TypeOf[T](), ctor, Transient)
}

// AddSingletonAs registers implementation T under interface I as a singleton.
func AddSingletonAs[I, T any](c *Collection, ctor any) error {
	return c.AddType(TypeOf[I](), TypeOf[T](), ctor, Singleton)
}

// AddScopedAs registers implementation T under interface I as a scoped service.
func AddScopedAs[I, T any](c *Collection, ctor any) error {
	return c.AddType(TypeOf[I](), TypeOf[T](), ctor, Scoped)
}

// AddTransientAs registers implementation T under interface I as a transient service.
func AddTransientAs[I, T any](c *Collection, ctor any) error {
	return c.AddType(TypeOf[I](), TypeOf[T](), ctor, Transient)
}

// AddFactoryOf registers a typed factory under T.
//
// Example:
//
//	autowire.AddFactoryOf(c, func(r autowire.Resolver) (*Client, error) {
//	    return NewClient(autowire.Must[*Options[ClientOptions]](r).Value())
//	}, autowire.Singleton)
func AddFactoryOf[T any](c *Collection, factory func(Resolver) (T, error), lifetime Lifetime) error {
	if factory == nil {
		return ErrInvalidFactory
	}
	return c.AddFactory(TypeOf[T](), func(r Resolver) (any, error) {
		return factory(r)
	}, lifetime)
}

// AddValue registers a pre-built instance (always singleton).
func AddValue[T any](c *Collection, instance T) error {
	return c.AddInstance(TypeOf[T](), instance)
}
