package container

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/stereotype"
)

// Instantiate constructs every Component or Controller among ids and
// registers it. A failing type is logged and skipped; the others proceed.
// The returned error joins the per-type failures.
func (c *Container) Instantiate(ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := c.instantiate(id); err != nil {
			c.logger.Error("bean instantiation failed", zap.String("type", id), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Container) instantiate(id string) error {
	d, ok := c.catalog.Lookup(id)
	if !ok {
		return &InstantiationError{Type: id, Err: ErrUnknownType}
	}
	if !d.Kind.Instantiable() {
		return nil
	}

	instance, err := construct(d)
	if err != nil {
		return &InstantiationError{Type: id, Err: err}
	}

	it := reflect.TypeOf(instance)
	for _, capability := range d.Capabilities {
		if !it.Implements(capability) {
			return &InstantiationError{
				Type: id,
				Err:  fmt.Errorf("%w: %s does not implement %s", ErrCapabilityMismatch, it, capability),
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return &InstantiationError{Type: id, Err: ErrFrozen}
	}

	for _, capability := range d.Capabilities {
		c.putIfAbsent(LowerFirst(capability.Name()), instance)
	}
	if !d.Kind.Routable() {
		for _, ancestor := range c.ancestors(d.Type) {
			c.putIfAbsent(ancestor.Name(), instance)
		}
	}
	c.putIfAbsent(LowerFirst(d.SimpleName()), instance)

	c.logger.Debug("bean registered", zap.String("type", id), zap.Stringer("kind", d.Kind))
	return nil
}

// construct runs the no-argument constructor, turning a panic into an error.
func construct(d *stereotype.Descriptor) (instance any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			instance = nil
			err = fmt.Errorf("%w: panic: %v", ErrConstructor, rec)
		}
	}()

	if d.New == nil {
		return reflect.New(d.Type).Interface(), nil
	}
	instance = d.New()
	if want := reflect.PointerTo(d.Type); reflect.TypeOf(instance) != want {
		return nil, fmt.Errorf("%w: built %T, want %s", ErrConstructor, instance, want)
	}
	return instance, nil
}

// ancestors walks the chain of first embedded structs and keeps the ones
// not catalogued as instantiable themselves. The walk stops at the first
// type already seen, so self-embedding types terminate.
func (c *Container) ancestors(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	visited := map[reflect.Type]bool{t: true}
	for a := embeddedParent(t); a != nil && !visited[a]; a = embeddedParent(a) {
		visited[a] = true
		if d, ok := c.catalog.LookupType(a); ok && d.Kind.Instantiable() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// embeddedParent returns the first embedded struct of t, if any.
func embeddedParent(t reflect.Type) reflect.Type {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft.Name() != "" {
			return ft
		}
	}
	return nil
}
