package stereotype

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ErrDuplicateType is returned when a type or name is registered twice.
var ErrDuplicateType = errors.New("stereotype: type already registered")

// Default is the catalog populated by Component, Controller and Plain.
var Default = NewCatalog()

// Catalog is the set of descriptors known to the process, grouped by
// namespace. Registration normally happens from init functions, before
// any reader runs; the lock covers tests that register concurrently.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	byType map[reflect.Type]*Descriptor
	// namespace → names in registration order
	spaces map[string][]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]*Descriptor),
		byType: make(map[reflect.Type]*Descriptor),
		spaces: make(map[string][]string),
	}
}

// Register adds d. A type can be registered once.
func (c *Catalog) Register(d *Descriptor) error {
	if d == nil || d.Type == nil {
		return fmt.Errorf("%w: nil descriptor", ErrNotStruct)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[d.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, d.Name)
	}
	if _, ok := c.byType[d.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, d.Type)
	}
	c.byName[d.Name] = d
	c.byType[d.Type] = d
	c.spaces[d.Namespace] = append(c.spaces[d.Namespace], d.Name)
	return nil
}

// Lookup resolves a fully-qualified name.
func (c *Catalog) Lookup(name string) (*Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// LookupType resolves a struct type. Pointer types are dereferenced.
func (c *Catalog) LookupType(t reflect.Type) (*Descriptor, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byType[t]
	return d, ok
}

// Namespaces returns every namespace holding at least one type, sorted.
func (c *Catalog) Namespaces() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.spaces))
	for ns := range c.spaces {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Names returns the names registered directly in ns, in registration order.
func (c *Catalog) Names(ns string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.spaces[ns]...)
}

// Len returns the number of registered descriptors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}
