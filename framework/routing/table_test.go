package routing_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-mvc/framework/container"
	"github.com/km-arc/go-mvc/framework/routing"
	"github.com/km-arc/go-mvc/framework/stereotype"
)

var errBoom = errors.New("boom")

type calc struct{ calls int }

func (c *calc) Add(a, b string, w http.ResponseWriter) error {
	c.calls++
	_, err := fmt.Fprintf(w, "%s+%s", a, b)
	return err
}

func (c *calc) Echo(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(r.URL.Path))
}

func (c *calc) Swap(r *http.Request, x string, w http.ResponseWriter) {}

func (c *calc) Fail(w http.ResponseWriter, r *http.Request) error { return errBoom }

func (c *calc) Boom(w http.ResponseWriter) { panic("kaboom") }

type shadow struct{}

func (shadow) Any(w http.ResponseWriter) { _, _ = w.Write([]byte("shadow")) }

type service struct{}

func (service) Add(w http.ResponseWriter) {}

type bare struct{}

func (bare) Add(w http.ResponseWriter) {}

func build(t *testing.T, opts []routing.Option, register ...func(*stereotype.Catalog) error) (*routing.Table, *container.Container, error) {
	t.Helper()
	cat := stereotype.NewCatalog()
	for _, r := range register {
		require.NoError(t, r(cat))
	}
	c := container.New(cat)
	for _, ns := range cat.Namespaces() {
		require.NoError(t, c.Instantiate(cat.Names(ns)))
	}
	require.NoError(t, c.Wire())
	table, err := routing.Build(c, opts...)
	return table, c, err
}

func add[T any](kind stereotype.Kind, opts ...stereotype.Option) func(*stereotype.Catalog) error {
	return func(c *stereotype.Catalog) error { return stereotype.Add[T](c, kind, opts...) }
}

func patterns(t *routing.Table) []string {
	var out []string
	for _, r := range t.Routes() {
		out = append(out, r.Pattern)
	}
	return out
}

// ── Build ────────────────────────────────────────────────────────────────────

func TestBuild_PathResetsPerMethod(t *testing.T) {
	table, _, err := build(t, nil, add[calc](stereotype.KindController,
		stereotype.RequestMapping("//alexlee"),
		stereotype.Handle("/add", "Add", "a", "b"),
		stereotype.Handle("//echo", "Echo"),
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"/alexlee/add", "/alexlee/echo"}, patterns(table))
	assert.Equal(t, "calc.Add", table.Routes()[0].Handler())
}

func TestBuild_CumulativePaths(t *testing.T) {
	table, _, err := build(t, []routing.Option{routing.WithCumulativePaths(true)},
		add[calc](stereotype.KindController,
			stereotype.RequestMapping("/alexlee"),
			stereotype.Handle("/add", "Add", "a", "b"),
			stereotype.Handle("//echo", "Echo"),
		))
	require.NoError(t, err)

	assert.Equal(t, []string{"/alexlee/add", "/alexlee/add/echo"}, patterns(table))
}

func TestBuild_OnlyControllersWithBasePath(t *testing.T) {
	table, _, err := build(t, nil,
		add[service](stereotype.KindComponent,
			stereotype.RequestMapping("/svc"), stereotype.Handle("/add", "Add")),
		add[bare](stereotype.KindController, stereotype.Handle("/add", "Add")),
	)
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestBuild_FailingMappingSkipsOnlyThatRoute(t *testing.T) {
	table, _, err := build(t, nil, add[calc](stereotype.KindController,
		stereotype.RequestMapping("/c"),
		stereotype.Handle("/bad[", "Echo"),
		stereotype.Handle("/missing", "Nope"),
		stereotype.Handle("/names", "Echo", "a", "b", "c"),
		stereotype.Handle("/echo", "Echo"),
	))
	require.Error(t, err)

	assert.ErrorIs(t, err, routing.ErrBadPattern)
	assert.ErrorIs(t, err, routing.ErrUnknownMethod)
	assert.ErrorIs(t, err, routing.ErrParamNames)

	var re *routing.RouteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "calc", re.Controller)

	assert.Equal(t, []string{"/c/echo"}, patterns(table))
}

// ── Slots ────────────────────────────────────────────────────────────────────

func TestSlots_NamedThenContextByType(t *testing.T) {
	table, _, err := build(t, nil, add[calc](stereotype.KindController,
		stereotype.RequestMapping("/c"),
		stereotype.Handle("/add", "Add", "a", "b"),
		stereotype.Handle("/swap", "Swap", "", "x"),
	))
	require.NoError(t, err)
	routes := table.Routes()

	assert.Equal(t, []routing.ParamSlot{
		{Kind: routing.SlotNamed, Key: "a", Position: 0},
		{Kind: routing.SlotNamed, Key: "b", Position: 1},
		{Kind: routing.SlotResponse, Key: "http.ResponseWriter", Position: 2},
	}, routes[0].Slots)

	assert.Equal(t, []routing.ParamSlot{
		{Kind: routing.SlotRequest, Key: "*http.Request", Position: 0},
		{Kind: routing.SlotNamed, Key: "x", Position: 1},
		{Kind: routing.SlotResponse, Key: "http.ResponseWriter", Position: 2},
	}, routes[1].Slots)
}

func TestSlots_DuplicateNameKeepsLastPosition(t *testing.T) {
	table, _, err := build(t, nil, add[calc](stereotype.KindController,
		stereotype.RequestMapping("/c"),
		stereotype.Handle("/add", "Add", "a", "a"),
	))
	require.NoError(t, err)

	assert.Equal(t, []routing.ParamSlot{
		{Kind: routing.SlotNamed, Key: "a", Position: 1},
		{Kind: routing.SlotResponse, Key: "http.ResponseWriter", Position: 2},
	}, table.Routes()[0].Slots)
}

// ── Match ────────────────────────────────────────────────────────────────────

func TestMatch_WholePathOnly(t *testing.T) {
	table, _, err := build(t, nil, add[calc](stereotype.KindController,
		stereotype.RequestMapping("/alexlee"),
		stereotype.Handle("/add", "Add", "a", "b"),
		stereotype.Handle("/item/[0-9]+", "Echo"),
	))
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		{"/alexlee/add", "/alexlee/add"},
		{"/alexlee/addx", ""},
		{"/x/alexlee/add", ""},
		{"/alexlee/item/42", "/alexlee/item/[0-9]+"},
		{"/alexlee/item/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, ok := table.Match(tt.path)
			if tt.want == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, r.Pattern)
		})
	}
}

func TestMatch_FirstInBuildOrderWins(t *testing.T) {
	table, _, err := build(t, nil,
		add[shadow](stereotype.KindController,
			stereotype.RequestMapping("/a"), stereotype.Handle("/.*", "Any")),
		add[calc](stereotype.KindController,
			stereotype.RequestMapping("/a"), stereotype.Handle("/echo", "Echo")),
	)
	require.NoError(t, err)

	r, ok := table.Match("/a/echo")
	require.True(t, ok)
	assert.Equal(t, "shadow.Any", r.Handler())
}

func TestTable_NilIsEmpty(t *testing.T) {
	var table *routing.Table
	_, ok := table.Match("/x")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Routes())
}

// ── Invoke ───────────────────────────────────────────────────────────────────

func TestInvoke(t *testing.T) {
	table, c, err := build(t, nil, add[calc](stereotype.KindController,
		stereotype.RequestMapping("/c"),
		stereotype.Handle("/add", "Add", "a", "b"),
		stereotype.Handle("/echo", "Echo"),
		stereotype.Handle("/fail", "Fail"),
		stereotype.Handle("/boom", "Boom"),
	))
	require.NoError(t, err)
	routes := table.Routes()
	owner := container.Resolve[*calc](c, "calc")
	req := httptest.NewRequest(http.MethodGet, "/c/echo", nil)

	t.Run("reflective call", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, routes[0].Invoke([]any{"3", "4", rec}))
		assert.Equal(t, "3+4", rec.Body.String())
		assert.Equal(t, 1, owner.calls)
	})

	t.Run("plain handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, routes[1].Invoke([]any{rec, req}))
		assert.Equal(t, "/c/echo", rec.Body.String())
	})

	t.Run("arity", func(t *testing.T) {
		assert.ErrorIs(t, routes[0].Invoke([]any{"3"}), routing.ErrArity)
		assert.ErrorIs(t, routes[1].Invoke([]any{httptest.NewRecorder()}), routing.ErrArity)
	})

	t.Run("argument type", func(t *testing.T) {
		assert.ErrorIs(t, routes[0].Invoke([]any{3, "4", httptest.NewRecorder()}), routing.ErrArgumentType)
		assert.ErrorIs(t, routes[1].Invoke([]any{req, req}), routing.ErrArgumentType)
	})

	t.Run("returned error", func(t *testing.T) {
		assert.ErrorIs(t, routes[2].Invoke([]any{httptest.NewRecorder(), req}), errBoom)
	})

	t.Run("panic", func(t *testing.T) {
		err := routes[3].Invoke([]any{httptest.NewRecorder()})
		assert.ErrorIs(t, err, routing.ErrHandlerPanic)
		assert.Contains(t, err.Error(), "kaboom")
	})
}

func TestCollapseSlashes(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/a/b", "/a/b"},
		{"//a///b/", "/a/b/"},
		{"", ""},
		{"////", "/"},
		{"a//b", "a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, routing.CollapseSlashes(tt.in), tt.in)
	}
}
