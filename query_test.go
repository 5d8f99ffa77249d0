package autowire

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryCollection(t *testing.T) *Collection {
	t.Helper()
	catalog := newCatalog(t,
		ScopedService[*Multi](Implements(new(IFirst), new(ISecond))),
		TransientService[*Plain](),
		SingletonService[*Greeter](Implements(new(IGreeter))),
		Configuration[MyOptions](),
	)
	c, err := AddAutoRegistration(NewCollection(), testConfig(t), WithCatalog(catalog))
	require.NoError(t, err)
	return c
}

func TestQuery(t *testing.T) {
	c := queryCollection(t)

	tests := []struct {
		name  string
		query ServiceQuery
		want  []reflect.Type
	}{
		{"all", ServiceQuery{}, []reflect.Type{
			TypeOf[IFirst](), TypeOf[ISecond](), TypeOf[*Plain](), TypeOf[IGreeter](), TypeOf[*Options[MyOptions]](),
		}},
		{"by lifetime", ServiceQuery{Lifetime: "singleton"}, []reflect.Type{
			TypeOf[IGreeter](), TypeOf[*Options[MyOptions]](),
		}},
		{"factories", ServiceQuery{FactoryOnly: true}, []reflect.Type{
			TypeOf[ISecond](), TypeOf[*Options[MyOptions]](),
		}},
		{"by impl", ServiceQuery{Impl: TypeOf[*Multi]()}, []reflect.Type{TypeOf[IFirst]()}},
		{"by key and lifetime", ServiceQuery{Key: TypeOf[ISecond](), Lifetime: "scoped"}, []reflect.Type{TypeOf[ISecond]()}},
		{"no match", ServiceQuery{Key: TypeOf[ISecond](), Lifetime: "transient"}, []reflect.Type{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryKeys(c, tt.query))
		})
	}
}

func TestFindHelpers(t *testing.T) {
	c := queryCollection(t)

	assert.Len(t, FindByKey(c, TypeOf[IFirst]()), 1)
	assert.Len(t, FindByImpl(c, TypeOf[*Plain]()), 1)
	assert.Len(t, FindByLifetime(c, Scoped), 2)
	assert.Empty(t, FindByKey(c, TypeOf[*Unmarked]()))
}
