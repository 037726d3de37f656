package container

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/stereotype"
)

// Wire injects dependencies into every registered bean, once per distinct
// instance, in registration order. Each bean runs three passes:
//
//  1. fields tagged `inject:""`
//  2. constructor injection points whose single parameter type matches a
//     still-pending field; the field is then no longer pending
//  3. setter injection points whose single parameter type matches a pending
//     field; the pending set is left as is
//
// Passes 2 and 3 assign the field directly; the constructor or setter is
// only read for its parameter type. The first failure stops that bean's
// wiring, is logged, and the next bean proceeds. The returned error joins
// the per-bean failures.
func (c *Container) Wire() error {
	if c.Frozen() {
		return ErrFrozen
	}
	var errs []error
	for _, bean := range c.Beans() {
		if err := c.wire(bean); err != nil {
			c.logger.Error("bean wiring failed",
				zap.String("bean", fmt.Sprintf("%T", bean)), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// target is a field awaiting a dependency.
type target struct {
	field reflect.StructField
	value reflect.Value
}

func (c *Container) wire(bean any) error {
	v := reflect.ValueOf(bean)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		// plain values have nothing to wire
		return nil
	}
	name := v.Type().String()
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return &WiringError{Bean: name, Err: ErrNoDefaultConstructor}
	}
	t := elem.Type()

	// pass 1: direct field injection
	pending := make(map[reflect.Type]target)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tg := target{field: sf, value: elem.Field(i)}
		if _, ok := sf.Tag.Lookup(stereotype.InjectTag); ok {
			if err := c.inject(name, tg); err != nil {
				return err
			}
			continue
		}
		pending[sf.Type] = tg
	}

	d, ok := c.catalog.LookupType(t)
	if !ok {
		return nil
	}

	// pass 2: constructor injection
	for _, ctor := range d.Constructors {
		ft := reflect.TypeOf(ctor)
		if ft == nil || ft.Kind() != reflect.Func || ft.NumIn() != 1 {
			continue
		}
		tg, ok := pending[ft.In(0)]
		if !ok {
			continue
		}
		if err := c.inject(name, tg); err != nil {
			return err
		}
		delete(pending, ft.In(0))
	}

	// pass 3: setter injection
	for _, setter := range d.Setters {
		m, ok := v.Type().MethodByName(setter)
		// receiver + one parameter
		if !ok || m.Type.NumIn() != 2 {
			continue
		}
		tg, ok := pending[m.Type.In(1)]
		if !ok {
			continue
		}
		if err := c.inject(name, tg); err != nil {
			return err
		}
	}
	return nil
}

// inject resolves tg by the key of its declared type and assigns it.
func (c *Container) inject(bean string, tg target) error {
	key := KeyOf(tg.field.Type)
	dep, ok := c.Lookup(key)
	if !ok || dep == nil {
		return &WiringError{Bean: bean, Err: &UnsatisfiedDependencyError{Bean: bean, Field: tg.field.Name, Key: key}}
	}
	dv := reflect.ValueOf(dep)
	if !dv.Type().AssignableTo(tg.field.Type) {
		return &WiringError{Bean: bean, Err: fmt.Errorf("%w: field[%s] is %s, bean %q is %s",
			ErrNotAssignable, tg.field.Name, tg.field.Type, key, dv.Type())}
	}
	settable(tg.value).Set(dv)
	return nil
}

// settable returns fv, or for an unexported field a writable alias of it.
// fv must be addressable.
func settable(fv reflect.Value) reflect.Value {
	if fv.CanSet() {
		return fv
	}
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}
