package autowire

import (
	"fmt"
	"strings"
)

// Lifetime controls how long a resolved instance is reused.
type Lifetime int

const (
	// Transient creates a new instance on each resolve.
	Transient Lifetime = iota
	// Scoped reuses one instance for the duration of a scope.
	Scoped
	// Singleton reuses one instance for the lifetime of the provider.
	Singleton
)

// String returns the lowercase lifetime name.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", int(l))
	}
}

// ParseLifetime parses a lifetime name, ignoring case.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transient":
		return Transient, nil
	case "scoped":
		return Scoped, nil
	case "singleton":
		return Singleton, nil
	default:
		return Transient, fmt.Errorf("unknown lifetime %q", s)
	}
}

// BuildOption configures how a Collection is turned into a Provider.
type BuildOption func(*buildConfig)

type buildConfig struct {
	validate   bool
	middleware []Middleware
}

// ValidateOnBuild checks the dependency graph when the provider is built:
// missing constructor dependencies, cycles, and singletons that capture
// scoped services all fail the build.
func ValidateOnBuild() BuildOption {
	return func(c *buildConfig) {
		c.validate = true
	}
}

// WithMiddleware installs resolve middleware on the built provider.
func WithMiddleware(mw ...Middleware) BuildOption {
	return func(c *buildConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// mergeBuildOptions combines multiple options.
func mergeBuildOptions(opts []BuildOption) *buildConfig {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
