package autowire

import (
	"fmt"

	"github.com/xraph/autowire/config"
)

// Options holds a configuration value bound from a section.
// Configuration types are registered as *Options[T] singletons.
type Options[T any] struct {
	value   T
	section string
}

// NewOptions wraps a value, mostly useful in tests.
func NewOptions[T any](value T) *Options[T] {
	return &Options[T]{value: value}
}

// Value returns the bound value.
func (o *Options[T]) Value() T {
	return o.value
}

// Section returns the name of the section the value was bound from.
func (o *Options[T]) Section() string {
	return o.section
}

// Defaulter is implemented by configuration types (on the pointer receiver)
// that set default values before the section is applied.
type Defaulter interface {
	Defaults()
}

// OptionsFor resolves the bound value of configuration type T.
func OptionsFor[T any](r Resolver) (T, error) {
	opts, err := Resolve[*Options[T]](r)
	if err != nil {
		var zero T
		return zero, err
	}
	return opts.Value(), nil
}

// bindOptions materializes T from the named section. A missing section
// leaves the defaults in place.
func bindOptions[T any](src config.Source, section string) (*Options[T], error) {
	var value T
	if d, ok := any(&value).(Defaulter); ok {
		d.Defaults()
	}

	if src != nil {
		sec := src.Section(section)
		if sec.Exists() {
			if err := sec.Bind(&value); err != nil {
				return nil, fmt.Errorf("bind section %q into %s: %w", section, keyName(TypeOf[T]()), err)
			}
		}
	}

	return &Options[T]{value: value, section: section}, nil
}
