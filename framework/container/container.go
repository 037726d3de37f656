package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/stereotype"
)

// ErrFrozen is returned by writes after Freeze.
var ErrFrozen = errors.New("container: registry is frozen")

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the bean registry: lookup key → exactly one singleton.
//
// It has two phases. While building, Instance inserts keys first-wins and
// Instantiate / Wire populate it from a catalog. Freeze switches it to the
// serving phase, after which it is read-only and safe to share.
type Container struct {
	mu sync.RWMutex

	// key → instance
	instances map[string]any

	// keys in insertion order
	keys []string

	// distinct instances in first-registration order
	beans []any
	seen  map[any]bool

	frozen bool

	catalog *stereotype.Catalog
	logger  *zap.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for per-type and per-bean failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// New creates an empty container reading descriptors from catalog.
// A nil catalog means stereotype.Default.
func New(catalog *stereotype.Catalog, opts ...Option) *Container {
	if catalog == nil {
		catalog = stereotype.Default
	}
	c := &Container{
		instances: make(map[string]any),
		seen:      make(map[any]bool),
		catalog:   catalog,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("container")
	return c
}

// Catalog returns the catalog the container instantiates from.
func (c *Container) Catalog() *stereotype.Catalog { return c.catalog }

// ── Registration ──────────────────────────────────────────────────────────────

// Instance inserts instance under key if the key is absent. It reports
// whether the insert happened; an existing key is left untouched and no
// error is raised.
//
//	c.Instance("logger", logger)
func (c *Container) Instance(key string, instance any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return false, fmt.Errorf("%w: cannot register [%s]", ErrFrozen, key)
	}
	return c.putIfAbsent(key, instance), nil
}

// Provide is Instance for service providers: a rejected write is logged
// instead of returned, and the result reports whether key now holds
// instance.
func (c *Container) Provide(key string, instance any) bool {
	inserted, err := c.Instance(key, instance)
	if err != nil {
		c.logger.Warn("provider binding rejected", zap.String("key", key), zap.Error(err))
	}
	return inserted
}

// putIfAbsent must hold mu.Lock.
func (c *Container) putIfAbsent(key string, instance any) bool {
	if _, ok := c.instances[key]; ok {
		return false
	}
	c.instances[key] = instance
	c.keys = append(c.keys, key)
	if hashable(instance) && !c.seen[instance] {
		c.seen[instance] = true
		c.beans = append(c.beans, instance)
	}
	return true
}

// hashable guards the identity set against values that cannot be map keys.
// Struct and array values are left out since an interface field may hold
// an uncomparable value.
func hashable(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Struct, reflect.Array:
		return false
	}
	return t.Comparable()
}

// Freeze ends the build phase.
func (c *Container) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Frozen reports whether Freeze has been called.
func (c *Container) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Lookup returns the instance registered under key.
func (c *Container) Lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.instances[key]
	return v, ok
}

// Make returns the instance under key and panics when there is none.
//
//	svc := c.Make("mathService").(math.MathService)
func (c *Container) Make(key string) any {
	v, ok := c.Lookup(key)
	if !ok {
		panic(fmt.Sprintf("container: nothing registered for [%s]", key))
	}
	return v
}

// Bound returns true if key has been registered.
func (c *Container) Bound(key string) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Bindings returns the registered keys in insertion order.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.keys...)
}

// Beans returns each distinct registered instance once, in the order it was
// first registered.
func (c *Container) Beans() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]any(nil), c.beans...)
}

// Len returns the number of registered keys.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// ── Naming ────────────────────────────────────────────────────────────────────

// LowerFirst lower-cases the first rune of name.
//
//	LowerFirst("MathService") == "mathService"
func LowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

// KeyOf returns the lookup key of a declared type: the lower-camel simple
// name, with pointers stripped.
//
//	KeyOf(reflect.TypeFor[*MathService]()) == "mathService"
func KeyOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return LowerFirst(t.Name())
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result, panicking on mismatch.
//
//	svc := container.Resolve[math.MathService](c, "mathService")
func Resolve[T any](c *Container, key string) T {
	instance := c.Make(key)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), key, instance))
	}
	return typed
}

// TryResolve is like Resolve but returns (T, false) instead of panicking.
func TryResolve[T any](c *Container, key string) (T, bool) {
	instance, ok := c.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
