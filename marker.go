package autowire

import (
	"fmt"
	"reflect"

	"github.com/xraph/autowire/config"
)

// Kind is the marker a candidate type carries.
type Kind int

const (
	// KindConfiguration marks a type bound from a configuration section.
	KindConfiguration Kind = iota
	// KindScoped marks a service with one instance per scope.
	KindScoped
	// KindTransient marks a service built on every resolution.
	KindTransient
	// KindSingleton marks a service with one instance per provider.
	KindSingleton
)

// String returns the marker name.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindScoped:
		return "scoped"
	case KindTransient:
		return "transient"
	case KindSingleton:
		return "singleton"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Lifetime returns the lifetime services of this kind are registered with.
// Configuration options are always singletons.
func (k Kind) Lifetime() Lifetime {
	switch k {
	case KindScoped:
		return Scoped
	case KindTransient:
		return Transient
	default:
		return Singleton
	}
}

// optionsBinder registers the bound-options provider of a configuration type.
type optionsBinder func(c *Collection, src config.Source, section string) error

// Descriptor is the marker attached to a candidate type.
// Build one with ScopedService, TransientService, SingletonService or
// Configuration and add it to a Catalog.
type Descriptor struct {
	Kind Kind

	// Type is the implementation type, usually a pointer to a struct.
	Type reflect.Type

	// Interfaces are the interfaces the type declares, in declaration order.
	Interfaces []reflect.Type

	// Base is the type this one derives from. When nil, the first embedded
	// field whose type is itself a catalog candidate is used.
	Base reflect.Type

	// Service overrides interface inference with a single binding key.
	Service reflect.Type

	// Section overrides the configuration section name.
	Section string

	// Constructor builds the implementation. Its parameters are resolved
	// from the container. When nil the zero value is used.
	Constructor any

	bind optionsBinder
	err  error
}

// Name returns the type's own name, pointers stripped.
func (d Descriptor) Name() string {
	return shortName(d.Type)
}

// String returns a short description used in logs.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.Kind, keyName(d.Type))
}

// SectionName returns the configuration section a Configuration descriptor
// binds from: the explicit Section, else the type's own name.
func (d Descriptor) SectionName() string {
	if d.Section != "" {
		return d.Section
	}
	return d.Name()
}

// MarkerOption customizes a Descriptor.
type MarkerOption func(*Descriptor)

// Implements declares the interfaces the type exposes. Pass a nil pointer
// to each interface: Implements(new(IFoo), (*IBar)(nil)).
func Implements(ifaces ...any) MarkerOption {
	return func(d *Descriptor) {
		for _, iface := range ifaces {
			t, err := InterfaceOf(iface)
			if err != nil {
				d.fail(err)
				continue
			}
			d.Interfaces = append(d.Interfaces, t)
		}
	}
}

// As registers the type under I only, whatever else it implements.
func As[I any]() MarkerOption {
	return func(d *Descriptor) {
		d.Service = TypeOf[I]()
	}
}

// Extends names the base type whose interfaces are not re-registered.
func Extends[B any]() MarkerOption {
	return func(d *Descriptor) {
		d.Base = TypeOf[B]()
	}
}

// Constructor sets the function used to build the implementation.
func Constructor(fn any) MarkerOption {
	return func(d *Descriptor) {
		d.Constructor = fn
	}
}

// Section binds a configuration type from the named section instead of the
// type's own name.
func Section(name string) MarkerOption {
	return func(d *Descriptor) {
		d.Section = name
	}
}

// ScopedService marks T as a scoped service.
func ScopedService[T any](opts ...MarkerOption) Descriptor {
	return newDescriptor(KindScoped, TypeOf[T](), opts)
}

// TransientService marks T as a transient service.
func TransientService[T any](opts ...MarkerOption) Descriptor {
	return newDescriptor(KindTransient, TypeOf[T](), opts)
}

// SingletonService marks T as a singleton service.
func SingletonService[T any](opts ...MarkerOption) Descriptor {
	return newDescriptor(KindSingleton, TypeOf[T](), opts)
}

// Configuration marks struct type T as an options type bound from a
// configuration section. Resolve it as *Options[T].
func Configuration[T any](opts ...MarkerOption) Descriptor {
	d := newDescriptor(KindConfiguration, TypeOf[T](), opts)
	d.bind = func(c *Collection, src config.Source, section string) error {
		return c.AddFactory(TypeOf[*Options[T]](), func(Resolver) (any, error) {
			return bindOptions[T](src, section)
		}, Singleton)
	}
	return d
}

func newDescriptor(kind Kind, t reflect.Type, opts []MarkerOption) Descriptor {
	d := Descriptor{Kind: kind, Type: t}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d *Descriptor) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// validate checks that the descriptor can be registered.
func (d Descriptor) validate() error {
	if d.Type == nil {
		return NewError(CodeInvalidDescriptor, "descriptor has no type", nil)
	}
	if d.err != nil {
		return invalidDescriptor(d.Type, "%v", d.err)
	}
	if d.Type.Kind() == reflect.Interface {
		return invalidDescriptor(d.Type, "type must be concrete")
	}

	if d.Kind == KindConfiguration {
		return d.validateConfiguration()
	}

	switch d.Kind {
	case KindScoped, KindTransient, KindSingleton:
	default:
		return invalidDescriptor(d.Type, "unknown marker %s", d.Kind)
	}

	if d.Section != "" {
		return invalidDescriptor(d.Type, "section is only valid on configuration types")
	}

	for _, iface := range d.Interfaces {
		if !d.Type.Implements(iface) {
			return invalidDescriptor(d.Type, "does not implement %s", keyName(iface))
		}
	}

	if d.Service != nil {
		if d.Service.Kind() != reflect.Interface {
			return invalidDescriptor(d.Type, "service %s is not an interface", keyName(d.Service))
		}
		if !d.Type.Implements(d.Service) {
			return invalidDescriptor(d.Type, "does not implement %s", keyName(d.Service))
		}
	}

	if d.Constructor != nil {
		info, err := analyzeConstructor(d.Constructor)
		if err != nil {
			return invalidDescriptor(d.Type, "%v", err)
		}
		if !info.result.AssignableTo(d.Type) {
			return invalidDescriptor(d.Type, "constructor returns %s", keyName(info.result))
		}
	}

	return nil
}

func (d Descriptor) validateConfiguration() error {
	if d.Type.Kind() != reflect.Struct {
		return invalidDescriptor(d.Type, "configuration type must be a struct, got %s", d.Type.Kind())
	}
	if len(d.Interfaces) > 0 || d.Service != nil || d.Base != nil || d.Constructor != nil {
		return invalidDescriptor(d.Type, "configuration types take no service options")
	}
	if d.bind == nil {
		return invalidDescriptor(d.Type, "configuration descriptor has no binder")
	}
	return nil
}
