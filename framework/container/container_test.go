package container_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/container"
)

func TestInstance_FirstRegistrationWins(t *testing.T) {
	c := container.New(nil)

	first, second := &struct{ N int }{1}, &struct{ N int }{2}

	ok, err := c.Instance("svc", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Instance("svc", second)
	require.NoError(t, err)
	assert.False(t, ok, "second insert under the same key must be ignored")

	got, found := c.Lookup("svc")
	require.True(t, found)
	assert.Same(t, first, got)
}

func TestFreeze_RejectsWrites(t *testing.T) {
	c := container.New(nil)
	_, _ = c.Instance("a", 1)
	c.Freeze()

	assert.True(t, c.Frozen())
	ok, err := c.Instance("b", 2)
	assert.False(t, ok)
	assert.ErrorIs(t, err, container.ErrFrozen)
	assert.False(t, c.Bound("b"))
	assert.True(t, c.Bound("a"), "lookups keep working after Freeze")
}

func TestBindings_InsertionOrder(t *testing.T) {
	c := container.New(nil)
	for _, k := range []string{"zeta", "alpha", "mid"} {
		_, _ = c.Instance(k, k)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, c.Bindings())
	assert.Equal(t, 3, c.Len())
}

func TestBeans_DistinctInstancesOnce(t *testing.T) {
	c := container.New(nil)
	bean := &struct{ N int }{}
	_, _ = c.Instance("a", bean)
	_, _ = c.Instance("b", bean)
	_, _ = c.Instance("c", map[string]int{}) // not hashable, kept out of Beans

	beans := c.Beans()
	require.Len(t, beans, 1)
	assert.Same(t, bean, beans[0])
}

func TestMake_PanicsWhenMissing(t *testing.T) {
	c := container.New(nil)
	assert.Panics(t, func() { c.Make("missing") })
}

func TestResolve(t *testing.T) {
	c := container.New(nil)
	_, _ = c.Instance("greeting", "hi")

	assert.Equal(t, "hi", container.Resolve[string](c, "greeting"))
	assert.Panics(t, func() { container.Resolve[int](c, "greeting") })

	got, ok := container.TryResolve[string](c, "greeting")
	assert.True(t, ok)
	assert.Equal(t, "hi", got)

	_, ok = container.TryResolve[int](c, "greeting")
	assert.False(t, ok)
	_, ok = container.TryResolve[string](c, "missing")
	assert.False(t, ok)
}

type MathService interface{ Add(a, b int) int }

func TestNaming(t *testing.T) {
	tests := []struct{ in, want string }{
		{"MathService", "mathService"},
		{"mathService", "mathService"},
		{"X", "x"},
		{"", ""},
		{"Élan", "élan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, container.LowerFirst(tt.in), tt.in)
	}

	assert.Equal(t, "mathService", container.KeyOf(reflect.TypeFor[MathService]()))
	assert.Equal(t, "mathService", container.KeyOf(reflect.TypeFor[*MathService]()))
}
