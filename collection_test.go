package autowire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_AddType(t *testing.T) {
	c := NewCollection()

	err := c.AddType(TypeOf[IGreeter](), TypeOf[*Greeter](), nil, Singleton)
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	reg := c.Entries()[0]
	assert.Equal(t, TypeOf[IGreeter](), reg.Key)
	assert.Equal(t, TypeOf[*Greeter](), reg.Impl)
	assert.False(t, reg.IsFactory())
	assert.Equal(t, "autowire.IGreeter => *autowire.Greeter (singleton)", reg.String())
}

func TestCollection_AddType_Invalid(t *testing.T) {
	tests := []struct {
		name string
		reg  Registration
	}{
		{"nil key", Registration{Impl: TypeOf[*Greeter](), Lifetime: Singleton}},
		{"unknown lifetime", Registration{Key: TypeOf[*Greeter](), Impl: TypeOf[*Greeter](), Lifetime: Lifetime(42)}},
		{"interface impl", Registration{Key: TypeOf[IGreeter](), Impl: TypeOf[IGreeter](), Lifetime: Scoped}},
		{"not assignable", Registration{Key: TypeOf[IAged](), Impl: TypeOf[*Greeter](), Lifetime: Scoped}},
		{"factory and impl", Registration{
			Key:      TypeOf[*Greeter](),
			Impl:     TypeOf[*Greeter](),
			Factory:  func(Resolver) (any, error) { return nil, nil },
			Lifetime: Scoped,
		}},
		{"neither factory nor impl", Registration{Key: TypeOf[*Greeter](), Lifetime: Scoped}},
		{"bad constructor", Registration{
			Key:         TypeOf[*Greeter](),
			Impl:        TypeOf[*Greeter](),
			Constructor: func() (*Greeter, string) { return nil, "" },
			Lifetime:    Scoped,
		}},
		{"constructor returns other type", Registration{
			Key:         TypeOf[*Greeter](),
			Impl:        TypeOf[*Greeter](),
			Constructor: func() *Plain { return nil },
			Lifetime:    Scoped,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollection()
			assert.Error(t, c.Add(tt.reg))
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestCollection_AddFactory(t *testing.T) {
	c := NewCollection()

	err := c.AddFactory(TypeOf[IGreeter](), func(Resolver) (any, error) {
		return &Greeter{}, nil
	}, Transient, TypeOf[*Plain]())
	require.NoError(t, err)

	reg := c.Entries()[0]
	assert.True(t, reg.IsFactory())
	assert.Equal(t, TypeOf[*Plain](), reg.Dependencies()[0])
	assert.Equal(t, "autowire.IGreeter => factory (transient)", reg.String())

	assert.ErrorIs(t, c.AddFactory(TypeOf[IGreeter](), nil, Transient), ErrInvalidFactory)
}

func TestCollection_AddInstance(t *testing.T) {
	c := NewCollection()
	g := &Greeter{name: "instance"}

	require.NoError(t, c.AddInstance(TypeOf[IGreeter](), g))
	assert.ErrorIs(t, c.AddInstance(TypeOf[IAged](), g), ErrTypeMismatchSentinel)

	p, err := c.Build()
	require.NoError(t, err)

	resolved, err := p.Resolve(TypeOf[IGreeter]())
	require.NoError(t, err)
	assert.Same(t, g, resolved)
}

func TestCollection_DuplicateKeys(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddValue[INamed](c, &Greeter{name: "first"}))
	require.NoError(t, AddValue[INamed](c, &Plain{name: "second"}))
	assert.Equal(t, 2, c.Len())

	p, err := c.Build()
	require.NoError(t, err)

	// Last registration wins
	named, err := Resolve[INamed](p)
	require.NoError(t, err)
	assert.Equal(t, "Plain", named.GetName())

	all, err := ResolveAllOf[INamed](p)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Greeter", all[0].GetName())
	assert.Equal(t, "Plain", all[1].GetName())
}

func TestCollection_BuildIsSnapshot(t *testing.T) {
	c := NewCollection()
	require.NoError(t, AddSingleton[*Plain](c, nil))

	p, err := c.Build()
	require.NoError(t, err)

	require.NoError(t, AddSingleton[*Greeter](c, nil))
	assert.True(t, Has[*Plain](p))
	assert.False(t, Has[*Greeter](p))
}

func TestRegisterAll(t *testing.T) {
	c := NewCollection()

	err := RegisterAll(c,
		Registration{Key: TypeOf[IGreeter](), Impl: TypeOf[*Greeter](), Lifetime: Singleton},
		Registration{Key: TypeOf[*Plain](), Impl: TypeOf[*Plain](), Lifetime: Transient},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	err = RegisterAll(c,
		Registration{Key: TypeOf[*Multi](), Impl: TypeOf[*Multi](), Lifetime: Scoped},
		Registration{Key: TypeOf[IAged](), Impl: TypeOf[*Plain](), Lifetime: Scoped},
		Registration{Key: TypeOf[*Dependency](), Impl: TypeOf[*Dependency](), Lifetime: Scoped},
	)
	assert.Error(t, err)

	// Earlier registrations stay, later ones are not attempted
	assert.Equal(t, 3, c.Len())
}
