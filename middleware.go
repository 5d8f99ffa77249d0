package autowire

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock_middleware_test.go -package=autowire . Middleware

// Middleware provides hooks for intercepting resolution.
// Middleware can be used for logging, metrics, security, testing, etc.
type Middleware interface {
	// BeforeResolve is called before resolving a service.
	// Return error to abort resolution.
	BeforeResolve(ctx context.Context, key reflect.Type) error

	// AfterResolve is called after resolving a service.
	// Called even if resolution failed (service and err may both be set).
	AfterResolve(ctx context.Context, key reflect.Type, service any, err error) error
}

// middlewareChain manages multiple middleware.
type middlewareChain struct {
	middleware []Middleware
}

// newMiddlewareChain creates a new middleware chain.
func newMiddlewareChain() *middlewareChain {
	return &middlewareChain{
		middleware: make([]Middleware, 0),
	}
}

// add appends middleware to the chain.
func (m *middlewareChain) add(middleware Middleware) {
	m.middleware = append(m.middleware, middleware)
}

// beforeResolve calls BeforeResolve on all middleware.
func (m *middlewareChain) beforeResolve(ctx context.Context, key reflect.Type) error {
	for _, mw := range m.middleware {
		if err := mw.BeforeResolve(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// afterResolve calls AfterResolve on all middleware.
func (m *middlewareChain) afterResolve(ctx context.Context, key reflect.Type, service any, err error) error {
	for _, mw := range m.middleware {
		if mwErr := mw.AfterResolve(ctx, key, service, err); mwErr != nil {
			return mwErr
		}
	}
	return nil
}

// FuncMiddleware wraps functions as Middleware.
type FuncMiddleware struct {
	BeforeResolveFunc func(ctx context.Context, key reflect.Type) error
	AfterResolveFunc  func(ctx context.Context, key reflect.Type, service any, err error) error
}

// BeforeResolve implements Middleware.
func (f *FuncMiddleware) BeforeResolve(ctx context.Context, key reflect.Type) error {
	if f.BeforeResolveFunc != nil {
		return f.BeforeResolveFunc(ctx, key)
	}
	return nil
}

// AfterResolve implements Middleware.
func (f *FuncMiddleware) AfterResolve(ctx context.Context, key reflect.Type, service any, err error) error {
	if f.AfterResolveFunc != nil {
		return f.AfterResolveFunc(ctx, key, service, err)
	}
	return nil
}

// loggingMiddleware logs every resolution with its duration.
type loggingMiddleware struct {
	logger *zap.Logger
	starts map[reflect.Type][]time.Time
	mu     sync.Mutex
}

// LoggingMiddleware returns middleware that logs resolutions at debug level
// and failed resolutions at warn level.
// Durations of concurrent resolutions of the same key may be attributed to
// the wrong call.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingMiddleware{
		logger: logger,
		starts: make(map[reflect.Type][]time.Time),
	}
}

func (l *loggingMiddleware) BeforeResolve(_ context.Context, key reflect.Type) error {
	l.mu.Lock()
	l.starts[key] = append(l.starts[key], time.Now())
	l.mu.Unlock()
	return nil
}

func (l *loggingMiddleware) AfterResolve(_ context.Context, key reflect.Type, service any, err error) error {
	var elapsed time.Duration
	l.mu.Lock()
	if stack := l.starts[key]; len(stack) > 0 {
		elapsed = time.Since(stack[len(stack)-1])
		l.starts[key] = stack[:len(stack)-1]
	}
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn("resolve failed",
			zap.String("key", keyName(key)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil
	}

	l.logger.Debug("resolved service",
		zap.String("key", keyName(key)),
		zap.String("type", fmt.Sprintf("%T", service)),
		zap.Duration("elapsed", elapsed),
	)

	return nil
}
