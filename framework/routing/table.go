package routing

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/stereotype"
)

var (
	// ErrUnknownMethod is returned when a mapping names a method the
	// controller does not have.
	ErrUnknownMethod = errors.New("routing: unknown handler method")
	// ErrBadPattern is returned when a mapping path does not compile.
	ErrBadPattern = errors.New("routing: invalid path pattern")
	// ErrParamNames is returned when a mapping names more parameters than
	// the handler declares.
	ErrParamNames = errors.New("routing: too many parameter names")
)

// RouteError reports a mapping that could not be turned into a route.
// Only that route is skipped.
type RouteError struct {
	Controller string
	Method     string
	Pattern    string
	Err        error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("routing: %s.%s [%s]: %v", e.Controller, e.Method, e.Pattern, e.Err)
}

func (e *RouteError) Unwrap() error { return e.Err }

// Beans is the view of the bean container the builder reads.
// *container.Container implements it.
type Beans interface {
	Beans() []any
	Catalog() *stereotype.Catalog
}

// Table is the ordered route list. It is read-only after Build.
type Table struct {
	routes []*Route
}

// Routes returns the routes in build order.
func (t *Table) Routes() []*Route {
	if t == nil {
		return nil
	}
	return append([]*Route(nil), t.routes...)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// Match returns the first route whose pattern matches the whole of path.
func (t *Table) Match(path string) (*Route, bool) {
	if t == nil {
		return nil, false
	}
	for _, r := range t.routes {
		if r.Match(path) {
			return r, true
		}
	}
	return nil, false
}

// ── Build ────────────────────────────────────────────────────────────────────

type buildOptions struct {
	logger     *zap.Logger
	cumulative bool
}

// Option configures Build.
type Option func(*buildOptions)

// WithLogger sets the logger for skipped routes.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithCumulativePaths makes each mapping path extend the previous one
// instead of the controller base path: base+m1, base+m1+m2, ...
func WithCumulativePaths(on bool) Option {
	return func(o *buildOptions) { o.cumulative = on }
}

// Build compiles a route for every method mapping of every controller bean
// that has a base path, visiting beans in registration order. A mapping
// that fails is logged and skipped; the returned error joins those failures
// and the table holds the rest.
func Build(src Beans, opts ...Option) (*Table, error) {
	o := buildOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.Named("routing")
	catalog := src.Catalog()

	t := &Table{}
	var errs []error
	for _, bean := range src.Beans() {
		d, ok := catalog.LookupType(reflect.TypeOf(bean))
		if !ok || !d.Kind.Routable() || !d.HasBasePath {
			continue
		}
		// the catalog entry must describe this very bean type
		if reflect.TypeOf(bean) != reflect.PointerTo(d.Type) {
			continue
		}

		base := CollapseSlashes(d.BasePath)
		path := base
		for _, m := range d.Mappings {
			if o.cumulative {
				path = CollapseSlashes(path + m.Path)
			} else {
				path = CollapseSlashes(base + m.Path)
			}

			r, err := compile(bean, path, m)
			if err != nil {
				err = &RouteError{Controller: d.SimpleName(), Method: m.Method, Pattern: path, Err: err}
				logger.Error("route skipped", zap.Error(err))
				errs = append(errs, err)
				continue
			}
			t.routes = append(t.routes, r)
			logger.Debug("route mapped",
				zap.String("pattern", r.Pattern),
				zap.String("handler", r.Handler()),
				zap.Stringers("slots", r.Slots))
		}
	}
	return t, errors.Join(errs...)
}

func compile(owner any, pattern string, m stereotype.Mapping) (*Route, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	invoke, mt, err := bindInvoker(owner, m.Method)
	if err != nil {
		return nil, err
	}
	slots, err := slotsFor(mt, m.Params)
	if err != nil {
		return nil, err
	}
	return &Route{
		Owner:   owner,
		Method:  m.Method,
		Pattern: pattern,
		Slots:   slots,
		re:      re,
		invoke:  invoke,
	}, nil
}

// CollapseSlashes replaces every run of '/' in p with a single '/'.
func CollapseSlashes(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	prev := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' && prev {
			continue
		}
		prev = c == '/'
		b.WriteByte(c)
	}
	return b.String()
}
