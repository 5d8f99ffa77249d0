package autowire

import (
	"fmt"
	"reflect"
	"strings"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeInvalidFactory indicates a factory or constructor is invalid or nil
	CodeInvalidFactory = "INVALID_FACTORY"

	// CodeInvalidDescriptor indicates a marker descriptor is malformed
	CodeInvalidDescriptor = "INVALID_DESCRIPTOR"

	// CodeDuplicateCandidate indicates a type was added to a catalog twice
	CodeDuplicateCandidate = "DUPLICATE_CANDIDATE"

	// CodeServiceNotFound indicates no registration exists for a binding key
	CodeServiceNotFound = "SERVICE_NOT_FOUND"

	// CodeServiceError indicates an error occurred while building a service
	CodeServiceError = "SERVICE_ERROR"

	// CodeCircularDependency indicates a circular dependency was detected
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeScopeEnded indicates operation on an ended scope
	CodeScopeEnded = "SCOPE_ENDED"

	// CodeScopedFromRoot indicates a scoped service was requested outside a scope
	CodeScopedFromRoot = "SCOPED_FROM_ROOT"

	// CodeProviderClosed indicates operation on a closed provider
	CodeProviderClosed = "PROVIDER_CLOSED"

	// CodeTypeMismatch indicates a type mismatch during service resolution
	CodeTypeMismatch = "TYPE_MISMATCH"

	// CodeMissingConfiguration indicates configuration types were found but no source was given
	CodeMissingConfiguration = "MISSING_CONFIGURATION"

	// CodeCaptiveDependency indicates a singleton depends on a scoped service
	CodeCaptiveDependency = "CAPTIVE_DEPENDENCY"
)

// Error is a coded error carrying diagnostic context.
// Two errors match under errors.Is when their codes are equal, so the
// sentinels below can be used to classify any error built by this package.
type Error struct {
	Code    string
	Message string
	Cause   error
	Context map[string]any
}

// NewError creates a coded error.
func NewError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Error implements error.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext returns a copy of the error with an extra context value.
func (e *Error) WithContext(key string, value any) *Error {
	ctx := make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value

	return &Error{Code: e.Code, Message: e.Message, Cause: e.Cause, Context: ctx}
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrInvalidFactory is returned when a nil or invalid factory is provided.
var ErrInvalidFactory = NewError(CodeInvalidFactory, "factory cannot be nil", nil)

// ErrInvalidDescriptor is a sentinel error for malformed descriptors (for error checking).
var ErrInvalidDescriptor = NewError(CodeInvalidDescriptor, "invalid descriptor", nil)

// ErrDuplicateCandidate is a sentinel error for duplicate catalog entries (for error checking).
var ErrDuplicateCandidate = NewError(CodeDuplicateCandidate, "duplicate candidate", nil)

// ErrServiceNotFoundSentinel is a sentinel error for service not found (for error checking).
var ErrServiceNotFoundSentinel = NewError(CodeServiceNotFound, "service not found", nil)

// ErrCircularDependencySentinel is a sentinel error for circular dependency (for error checking).
var ErrCircularDependencySentinel = NewError(CodeCircularDependency, "circular dependency", nil)

// ErrScopeEnded is returned when operations are attempted on an ended scope.
var ErrScopeEnded = NewError(CodeScopeEnded, "scope has ended", nil)

// ErrScopedFromRootSentinel is a sentinel error for scoped resolution outside a scope.
var ErrScopedFromRootSentinel = NewError(CodeScopedFromRoot, "scoped service resolved from root", nil)

// ErrProviderClosed is returned when a closed provider is used.
var ErrProviderClosed = NewError(CodeProviderClosed, "provider has been closed", nil)

// ErrTypeMismatchSentinel is a sentinel error for type mismatch during resolution.
var ErrTypeMismatchSentinel = NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrMissingConfiguration is returned when configuration types are registered without a source.
var ErrMissingConfiguration = NewError(CodeMissingConfiguration, "configuration source is required", nil)

// ErrCaptiveDependencySentinel is a sentinel error for singletons capturing scoped services.
var ErrCaptiveDependencySentinel = NewError(CodeCaptiveDependency, "captive dependency", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrServiceNotFound creates an error for when no registration exists for key
func ErrServiceNotFound(key reflect.Type) *Error {
	return NewError(
		CodeServiceNotFound,
		fmt.Sprintf("service '%s' not found", keyName(key)),
		nil,
	).WithContext("key", keyName(key))
}

// NewServiceError creates an error for service operations
func NewServiceError(key reflect.Type, operation string, cause error) *Error {
	return NewError(
		CodeServiceError,
		fmt.Sprintf("service '%s' error during %s", keyName(key), operation),
		cause,
	).WithContext("key", keyName(key)).
		WithContext("operation", operation)
}

// ErrCircularDependency creates an error for circular dependency detection
func ErrCircularDependency(cycle []reflect.Type) *Error {
	names := keyNames(cycle)

	return NewError(
		CodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(names, " -> ")),
		nil,
	).WithContext("cycle", names)
}

// ErrScopedFromRoot creates an error for a scoped service requested from the root provider
func ErrScopedFromRoot(key reflect.Type) *Error {
	return NewError(
		CodeScopedFromRoot,
		fmt.Sprintf("scoped service '%s' must be resolved from a scope", keyName(key)),
		nil,
	).WithContext("key", keyName(key))
}

// ErrTypeMismatch creates an error for type mismatch during resolution
func ErrTypeMismatch(key reflect.Type, actual any) *Error {
	return NewError(
		CodeTypeMismatch,
		fmt.Sprintf("service '%s' type mismatch: got %T", keyName(key), actual),
		nil,
	).WithContext("key", keyName(key)).
		WithContext("actual_type", fmt.Sprintf("%T", actual))
}

// ErrCaptiveDependency creates an error for a singleton that depends on a scoped service
func ErrCaptiveDependency(singleton, scoped reflect.Type) *Error {
	return NewError(
		CodeCaptiveDependency,
		fmt.Sprintf("singleton '%s' depends on scoped service '%s'", keyName(singleton), keyName(scoped)),
		nil,
	).WithContext("singleton", keyName(singleton)).
		WithContext("scoped", keyName(scoped))
}

// invalidDescriptor creates an error describing why a descriptor was rejected.
func invalidDescriptor(t reflect.Type, format string, args ...any) *Error {
	return NewError(
		CodeInvalidDescriptor,
		fmt.Sprintf("invalid descriptor for '%s': %s", keyName(t), fmt.Sprintf(format, args...)),
		nil,
	).WithContext("type", keyName(t))
}
