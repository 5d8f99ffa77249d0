package autowire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xraph/autowire/config"
)

// Test types for auto-registration. Every type carries a field so distinct
// allocations never share an address.

type IGreeter interface {
	GetName() string
}

type Greeter struct {
	name string
}

func (g *Greeter) GetName() string { return "Greeter" }
func (g *Greeter) String() string  { return "greeter" }

type INamed interface {
	GetName() string
}

type IAged interface {
	GetAge() int
}

type Overridden struct {
	name string
}

func (o *Overridden) GetName() string { return "Overridden" }
func (o *Overridden) GetAge() int     { return 7 }

type Plain struct {
	name string
}

func (p *Plain) GetName() string { return "Plain" }

type IFirst interface {
	GetName() string
}

type ISecond interface {
	GetAge() int
}

type Multi struct {
	name string
}

func (m *Multi) GetName() string { return "Multi" }
func (m *Multi) GetAge() int     { return 20 }

type DerivedNoInterface struct {
	Multi
	extra string
}

func (d *DerivedNoInterface) GetString() string { return "DerivedNoInterface" }

type IExtra interface {
	GetString() string
}

type DerivedWithInterface struct {
	Multi
	extra string
}

func (d *DerivedWithInterface) GetString() string { return "DerivedWithInterface" }

type IDeep interface {
	GetDepth() int
}

type DeepDerived struct {
	DerivedWithInterface
	depth int
}

func (d *DeepDerived) GetDepth() int { return 2 }

type IDependency interface {
	GetName() string
}

type Dependency struct {
	name string
}

func (d *Dependency) GetName() string { return "DependencyInjectedService" }

type IWithDi interface {
	GetName() string
}

type WithDi struct {
	dep IDependency
}

func NewWithDi(dep IDependency) *WithDi {
	return &WithDi{dep: dep}
}

func (w *WithDi) GetName() string { return w.dep.GetName() }

type Unmarked struct {
	name string
}

type MyOptions struct {
	Name string
	Age  int
}

type HerOptions struct {
	LastName string
	TheAge   int
}

type DefaultedOptions struct {
	Host string
	Port int
}

func (o *DefaultedOptions) Defaults() {
	o.Host = "localhost"
	o.Port = 8080
}

// disposable records Dispose calls into a shared log.
type disposable struct {
	name string
	log  *[]string
	err  error
}

func (d *disposable) Dispose() error {
	*d.log = append(*d.log, d.name)
	return d.err
}

// markerFor builds the service descriptor of T for kind.
func markerFor[T any](kind Kind, opts ...MarkerOption) Descriptor {
	switch kind {
	case KindScoped:
		return ScopedService[T](opts...)
	case KindTransient:
		return TransientService[T](opts...)
	default:
		return SingletonService[T](opts...)
	}
}

var serviceKinds = []Kind{KindScoped, KindTransient, KindSingleton}

func newCatalog(t *testing.T, descs ...Descriptor) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.NoError(t, c.Register(descs...))
	return c
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewBuilder().
		AddMap(map[string]any{
			"MyOptions": map[string]any{
				"Name": "Jens",
				"Age":  "42",
			},
			"SecondOptions": map[string]any{
				"LastName": "Larsen",
				"TheAge":   30,
			},
		}).
		Build()
	require.NoError(t, err)
	return cfg
}

// buildScope builds c and opens a scope, both released at cleanup.
func buildScope(t *testing.T, c *Collection) (*Provider, Scope) {
	t.Helper()
	p, err := c.Build()
	require.NoError(t, err)
	scope := p.BeginScope()
	t.Cleanup(func() {
		_ = scope.End()
		_ = p.Close()
	})
	return p, scope
}
