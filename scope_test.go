package autowire

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_ResolveSingleton(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddSingleton[*Plain](c, nil))

	p, scope := buildScope(t, c)

	val, err := Resolve[*Plain](scope)
	require.NoError(t, err)

	// Should be same instance as the provider
	rootVal, err := Resolve[*Plain](p)
	require.NoError(t, err)
	assert.Same(t, rootVal, val)
}

func TestScope_ResolveScoped(t *testing.T) {
	c := NewCollection()
	var calls int32

	require.NoError(t, AddFactoryOf(c, func(Resolver) (*Plain, error) {
		atomic.AddInt32(&calls, 1)
		return &Plain{name: "scoped"}, nil
	}, Scoped))

	_, scope := buildScope(t, c)

	val1, err := Resolve[*Plain](scope)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls)

	// Second resolve in same scope - should use cached instance
	val2, err := Resolve[*Plain](scope)
	require.NoError(t, err)
	assert.Same(t, val1, val2)
	assert.Equal(t, int32(1), calls)
}

func TestScope_ResolveScoped_DifferentScopes(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddScoped[*Plain](c, nil))

	p, err := c.Build()
	require.NoError(t, err)

	scope1 := p.BeginScope()
	val1 := Must[*Plain](scope1)
	require.NoError(t, scope1.End())

	// Second scope - should create new instance
	scope2 := p.BeginScope()
	val2 := Must[*Plain](scope2)
	require.NoError(t, scope2.End())

	assert.NotSame(t, val1, val2)
}

func TestScope_ResolveTransient(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddTransient[*Plain](c, nil))

	_, scope := buildScope(t, c)

	val1 := Must[*Plain](scope)
	val2 := Must[*Plain](scope)
	assert.NotSame(t, val1, val2)
}

func TestScope_ResolveNotFound(t *testing.T) {
	_, scope := buildScope(t, NewCollection())

	_, err := Resolve[*Plain](scope)
	assert.ErrorIs(t, err, ErrServiceNotFoundSentinel)
	assert.False(t, scope.Has(TypeOf[*Plain]()))
}

func TestScope_ScopedDependsOnScoped(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddScopedAs[IDependency, *Dependency](c, nil))
	require.NoError(t, AddScoped[*WithDi](c, NewWithDi))

	_, scope := buildScope(t, c)

	svc := Must[*WithDi](scope)
	dep := Must[IDependency](scope)
	assert.Same(t, dep.(*Dependency), svc.dep.(*Dependency))
}

func TestScope_ConcurrentResolve(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddScoped[*Plain](c, nil))

	_, scope := buildScope(t, c)

	var wg sync.WaitGroup
	results := make([]*Plain, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Must[*Plain](scope)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestScope_End_DisposesInReverseOrder(t *testing.T) {
	var log []string

	c := NewCollection()
	require.NoError(t, AddScoped[*disposable](c, func() *disposable {
		return &disposable{name: "first", log: &log}
	}))
	require.NoError(t, AddScopedAs[Disposable, *disposable](c, func() *disposable {
		return &disposable{name: "second", log: &log}
	}))
	require.NoError(t, AddSingleton[*Plain](c, nil))

	p, err := c.Build()
	require.NoError(t, err)

	scope := p.BeginScope()
	_ = Must[*disposable](scope)
	_ = Must[Disposable](scope)
	_ = Must[*Plain](scope)

	require.NoError(t, scope.End())
	assert.Equal(t, []string{"second", "first"}, log)
}

func TestScope_End_SkipsFactories(t *testing.T) {
	var log []string

	c := NewCollection()
	require.NoError(t, AddFactoryOf(c, func(Resolver) (*disposable, error) {
		return &disposable{name: "factory", log: &log}, nil
	}, Scoped))

	p, err := c.Build()
	require.NoError(t, err)

	scope := p.BeginScope()
	_ = Must[*disposable](scope)
	require.NoError(t, scope.End())
	assert.Empty(t, log)
}

func TestScope_End_CombinesErrors(t *testing.T) {
	var log []string

	c := NewCollection()
	require.NoError(t, AddScoped[*disposable](c, func() *disposable {
		return &disposable{name: "failing", log: &log, err: errors.New("close failed")}
	}))

	p, err := c.Build()
	require.NoError(t, err)

	scope := p.BeginScope()
	_ = Must[*disposable](scope)

	err = scope.End()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
}

func TestScope_UseAfterEnd(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddScoped[*Plain](c, nil))

	p, err := c.Build()
	require.NoError(t, err)

	scope := p.BeginScope()
	require.NoError(t, scope.End())

	_, err = scope.Resolve(TypeOf[*Plain]())
	assert.ErrorIs(t, err, ErrScopeEnded)

	_, err = scope.ResolveAll(TypeOf[*Plain]())
	assert.ErrorIs(t, err, ErrScopeEnded)

	assert.ErrorIs(t, scope.End(), ErrScopeEnded)
}

func TestScope_EndWhileBuilding(t *testing.T) {
	var log []string
	started := make(chan struct{})
	release := make(chan struct{})

	c := NewCollection()
	require.NoError(t, AddScoped[*disposable](c, func() *disposable {
		close(started)
		<-release
		return &disposable{name: "late", log: &log}
	}))

	p, err := c.Build()
	require.NoError(t, err)
	scope := p.BeginScope()

	result := make(chan error, 1)
	go func() {
		_, err := Resolve[*disposable](scope)
		result <- err
	}()

	<-started
	require.NoError(t, scope.End())
	close(release)

	err = <-result
	assert.ErrorIs(t, err, ErrScopeEnded)
	// The instance finished after End, so it is disposed right away.
	assert.Equal(t, []string{"late"}, log)
}
