package autowire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// In is a marker type that should be embedded in structs to indicate
// they are parameter objects. Fields of the struct will be treated as
// dependencies to inject.
//
// Example:
//
//	type ServiceParams struct {
//	    autowire.In
//
//	    Store   IUserStore
//	    Tracer  *Tracer     `optional:"true"`
//	    Plugins []Plugin
//	}
type In struct{}

var (
	inType    = reflect.TypeOf(In{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// lazyBinder is implemented by *Lazy[T] and *OptionalLazy[T] so that
// constructors can take deferred dependencies as parameters.
type lazyBinder interface {
	bindResolver(r Resolver)
}

var lazyBinderType = reflect.TypeOf((*lazyBinder)(nil)).Elem()

// constructorInfo holds analyzed constructor metadata
type constructorInfo struct {
	fn       reflect.Value
	fnType   reflect.Type
	params   []paramInfo
	result   reflect.Type
	hasError bool
}

// paramInfo describes a constructor parameter
type paramInfo struct {
	typ      reflect.Type
	optional bool        // From `optional:"true"` tag
	index    int         // Position in function parameters or struct field index
	isIn     bool        // Whether this is an In struct (expanded into multiple deps)
	inFields []paramInfo // Expanded fields if isIn is true
}

// analyzeConstructor inspects a constructor function and extracts its
// dependency and result information for automatic resolution.
// A constructor returns exactly one value, optionally followed by an error.
func analyzeConstructor(constructor any) (*constructorInfo, error) {
	if constructor == nil {
		return nil, errors.New("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, errors.New("constructor must be a function")
	}

	if fnType.IsVariadic() {
		return nil, errors.New("constructor cannot be variadic")
	}

	info := &constructorInfo{
		fn:     fnValue,
		fnType: fnType,
	}

	for i := 0; i < fnType.NumIn(); i++ {
		param, err := analyzeParam(fnType.In(i), i)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		info.params = append(info.params, param)
	}

	switch fnType.NumOut() {
	case 1:
		info.result = fnType.Out(0)
	case 2:
		if fnType.Out(1) != errorType {
			return nil, errors.New("second return value must be error")
		}
		info.result = fnType.Out(0)
		info.hasError = true
	default:
		return nil, fmt.Errorf("constructor must return a value and an optional error, got %d results", fnType.NumOut())
	}

	if info.result == errorType {
		return nil, errors.New("constructor must return at least one non-error value")
	}

	return info, nil
}

// analyzeParam analyzes a single parameter type
func analyzeParam(t reflect.Type, index int) (paramInfo, error) {
	param := paramInfo{
		typ:   t,
		index: index,
	}

	if isInStruct(t) {
		param.isIn = true
		fields, err := expandInStruct(t)
		if err != nil {
			return param, err
		}
		param.inFields = fields
	}

	return param, nil
}

// isInStruct checks if a type embeds autowire.In
func isInStruct(t reflect.Type) bool {
	t = indirect(t)

	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type == inType {
			return true
		}
		if field.Anonymous && isInStruct(field.Type) {
			return true
		}
	}
	return false
}

// expandInStruct expands an In struct into its field dependencies
func expandInStruct(t reflect.Type) ([]paramInfo, error) {
	t = indirect(t)

	var params []paramInfo

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip the embedded In marker
		if field.Anonymous && (field.Type == inType || isInStruct(field.Type)) {
			continue
		}

		if !field.IsExported() {
			continue
		}

		param := paramInfo{
			typ:   field.Type,
			index: i,
		}

		if tag := field.Tag.Get("optional"); strings.ToLower(tag) == "true" {
			param.optional = true
		}

		params = append(params, param)
	}

	return params, nil
}

// dependencies returns the binding keys the constructor needs, flattening In
// structs. Optional fields, slice collections and lazy wrappers are left out:
// none of them fail when nothing is registered.
func (c *constructorInfo) dependencies() []reflect.Type {
	var deps []reflect.Type

	var collect func(params []paramInfo)
	collect = func(params []paramInfo) {
		for _, p := range params {
			switch {
			case p.isIn:
				collect(p.inFields)
			case p.optional, p.typ.Kind() == reflect.Slice, p.typ.Implements(lazyBinderType):
			default:
				deps = append(deps, p.typ)
			}
		}
	}
	collect(c.params)

	return deps
}

// invoke resolves every parameter from r and calls the constructor.
func (c *constructorInfo) invoke(r Resolver) (any, error) {
	args := make([]reflect.Value, len(c.params))

	for i, param := range c.params {
		var (
			arg reflect.Value
			err error
		)
		if param.isIn {
			arg, err = resolveInStruct(param, r)
		} else {
			arg, err = resolveParam(param, r)
		}
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	results := c.fn.Call(args)

	if c.hasError {
		if errResult := results[1]; !errResult.IsNil() {
			return nil, errResult.Interface().(error)
		}
	}

	return results[0].Interface(), nil
}

// resolveInStruct creates and populates an In struct with resolved dependencies
func resolveInStruct(param paramInfo, r Resolver) (reflect.Value, error) {
	structType := param.typ
	isPtr := structType.Kind() == reflect.Ptr
	if isPtr {
		structType = structType.Elem()
	}

	structValue := reflect.New(structType).Elem()

	for _, field := range param.inFields {
		resolved, err := resolveParam(field, r)
		if err != nil {
			return reflect.Value{}, err
		}
		structValue.Field(field.index).Set(resolved)
	}

	if isPtr {
		return structValue.Addr(), nil
	}

	return structValue, nil
}

// resolveParam resolves a single parameter.
// Slices that are not registered themselves collect every registration of
// their element type. Lazy wrappers are bound to a resolver and returned
// unresolved.
func resolveParam(param paramInfo, r Resolver) (reflect.Value, error) {
	t := param.typ

	if t.Implements(lazyBinderType) && t.Kind() == reflect.Ptr {
		lazy := reflect.New(t.Elem())
		lazy.Interface().(lazyBinder).bindResolver(detach(r))
		return lazy, nil
	}

	if t.Kind() == reflect.Slice && !r.Has(t) {
		all, err := r.ResolveAll(t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("resolve all %s: %w", keyName(t.Elem()), err)
		}
		slice := reflect.MakeSlice(t, 0, len(all))
		for _, item := range all {
			if item == nil {
				slice = reflect.Append(slice, reflect.Zero(t.Elem()))
				continue
			}
			slice = reflect.Append(slice, reflect.ValueOf(item))
		}
		return slice, nil
	}

	if param.optional && !r.Has(t) {
		return reflect.Zero(t), nil
	}

	resolved, err := r.Resolve(t)
	if err != nil {
		return reflect.Value{}, err
	}

	if resolved == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(resolved)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, ErrTypeMismatch(t, resolved)
	}

	return v, nil
}

// detach strips resolution-path tracking from r so deferred lookups are not
// mistaken for cycles.
func detach(r Resolver) Resolver {
	if d, ok := r.(interface{ detached() Resolver }); ok {
		return d.detached()
	}
	return r
}
