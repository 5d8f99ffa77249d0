// Package autowire registers annotated types into a dependency injection
// container.
//
// Types describe themselves with a marker descriptor (ScopedService,
// TransientService, SingletonService or Configuration) added to a catalog
// from init(). AddAutoRegistration then discovers the catalog entries,
// works out the binding keys each type should be registered under, and
// emits the registrations into a Collection:
//
//	func init() {
//	    autowire.Register(
//	        autowire.ScopedService[*UserStore](
//	            autowire.Implements(new(IUserStore)),
//	            autowire.Constructor(NewUserStore),
//	        ),
//	        autowire.Configuration[DatabaseOptions](autowire.Section("Database")),
//	    )
//	}
//
//	services, err := autowire.AddAutoRegistration(autowire.NewCollection(), cfg)
//	provider, err := services.Build()
package autowire

import "reflect"

// Resolver resolves services by binding key.
// Both the root Provider and every Scope implement it.
type Resolver interface {
	// Resolve returns the service registered last under key.
	Resolve(key reflect.Type) (any, error)

	// ResolveAll returns one instance per registration under key, in
	// registration order. An unknown key yields an empty slice.
	ResolveAll(key reflect.Type) ([]any, error)

	// Has reports whether at least one registration exists for key.
	Has(key reflect.Type) bool
}

// Scope represents a lifetime scope for scoped services.
// Typically used for HTTP requests or other bounded operations.
type Scope interface {
	Resolver

	// End disposes scoped instances created by the scope.
	End() error
}

// Factory creates a service instance.
// The resolver is the one the service is being resolved from: the scope for
// scoped and transient services, the root provider for singletons.
type Factory func(r Resolver) (any, error)

// Disposable is implemented by services that release resources when their
// scope ends or their provider is closed.
type Disposable interface {
	Dispose() error
}
