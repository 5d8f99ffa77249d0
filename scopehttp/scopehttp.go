// Package scopehttp gives every HTTP request its own autowire scope.
//
//	r := chi.NewRouter()
//	r.Use(scopehttp.Middleware(provider))
//	r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
//	    store, err := scopehttp.Resolve[IUserStore](req)
//	    ...
//	})
package scopehttp

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xraph/autowire"
)

type contextKey struct{}

// Option configures Middleware.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger logs scopes that fail to end cleanly.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Middleware begins a scope for each request, stores it in the request
// context and ends it once the handler returns, disposing scoped services.
// It fits chi's Router.Use and any func(http.Handler) http.Handler chain.
func Middleware(p *autowire.Provider, opts ...Option) func(http.Handler) http.Handler {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := p.BeginScope()
			defer func() {
				if err := scope.End(); err != nil {
					o.logger.Warn("failed to end request scope",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Error(err),
					)
				}
			}()

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope autowire.Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// FromContext returns the scope stored in ctx, or nil.
func FromContext(ctx context.Context) autowire.Scope {
	scope, _ := ctx.Value(contextKey{}).(autowire.Scope)
	return scope
}

// Resolve resolves T from the request's scope.
func Resolve[T any](r *http.Request) (T, error) {
	scope := FromContext(r.Context())
	if scope == nil {
		var zero T
		return zero, autowire.ErrScopedFromRoot(autowire.TypeOf[T]())
	}
	return autowire.Resolve[T](scope)
}
