package autowire

import (
	"fmt"
	"reflect"
)

// TypeOf returns the binding key for T.
// Works for interface types, which reflect.TypeOf cannot see through a value.
//
// Example:
//
//	key := TypeOf[io.Reader]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// InterfaceOf returns the interface type pointed to by iface.
// Accepts new(I) or (*I)(nil).
func InterfaceOf(iface any) (reflect.Type, error) {
	t := reflect.TypeOf(iface)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		return nil, fmt.Errorf("%v is not a pointer to an interface, use new(I) or (*I)(nil)", t)
	}
	return t.Elem(), nil
}

// keyName returns a human-readable name for a binding key.
func keyName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func keyNames(ts []reflect.Type) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = keyName(t)
	}
	return names
}

// shortName returns the bare type name with pointers stripped.
func shortName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// indirect strips pointer levels from t.
func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// zeroInstance produces the value used when no constructor is given:
// a fresh allocation for pointer types, the zero value otherwise.
func zeroInstance(t reflect.Type) any {
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.Zero(t).Interface()
}
