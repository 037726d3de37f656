package stereotype

import (
	"errors"
	"fmt"
	"reflect"
)

// InjectTag is the struct tag key that marks a field for injection.
const InjectTag = "inject"

var (
	// ErrNotStruct is returned when a descriptor is requested for a
	// type that is not a named struct.
	ErrNotStruct = errors.New("stereotype: type must be a named struct")
	// ErrNotInterface is returned when a capability is not an interface type.
	ErrNotInterface = errors.New("stereotype: capability must be an interface")
)

// ── Kind ─────────────────────────────────────────────────────────────────────

// Kind is the type-level marker.
type Kind int

const (
	// KindNone marks a catalogued type the container will not construct.
	KindNone Kind = iota
	// KindComponent marks a type for instantiation.
	KindComponent
	// KindController marks a type for instantiation and routing.
	KindController
)

// Instantiable reports whether the container constructs types of this kind.
func (k Kind) Instantiable() bool { return k == KindComponent || k == KindController }

// Routable reports whether the route table builder inspects types of this kind.
func (k Kind) Routable() bool { return k == KindController }

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindController:
		return "controller"
	default:
		return "none"
	}
}

// ── Mapping ──────────────────────────────────────────────────────────────────

// Mapping is a method-level request mapping.
//
// Params holds the named-value marker of each parameter position; an empty
// string means the position carries no name. Positions past the end of
// Params are unnamed.
type Mapping struct {
	Path   string
	Method string
	Params []string
}

// ── Descriptor ───────────────────────────────────────────────────────────────

// Descriptor describes one catalogued type.
type Descriptor struct {
	// Name is the fully-qualified identifier: Namespace + "." + type name.
	Name      string
	Namespace string
	Type      reflect.Type
	Kind      Kind

	BasePath    string
	HasBasePath bool
	Mappings    []Mapping

	// Capabilities are the interfaces the type declares it implements.
	Capabilities []reflect.Type
	// Constructors are functions marked for constructor injection.
	// They are inspected, never called.
	Constructors []any
	// Setters are method names marked for setter injection.
	Setters []string

	// New is the no-argument constructor. When nil the container uses the
	// zero value of Type.
	New func() any
}

// SimpleName returns the unqualified type name.
func (d *Descriptor) SimpleName() string { return d.Type.Name() }

// Option configures a Descriptor.
type Option func(*Descriptor)

// RequestMapping sets the type-level base path.
func RequestMapping(path string) Option {
	return func(d *Descriptor) {
		d.BasePath = path
		d.HasBasePath = true
	}
}

// Handle adds a method-level mapping. params name the method's parameters
// by position; use "" for a position without a name.
func Handle(path, method string, params ...string) Option {
	return func(d *Descriptor) {
		d.Mappings = append(d.Mappings, Mapping{Path: path, Method: method, Params: params})
	}
}

// Implements declares I as a capability of the type.
func Implements[I any]() Option {
	return func(d *Descriptor) {
		d.Capabilities = append(d.Capabilities, reflect.TypeFor[I]())
	}
}

// InjectConstructor marks fn as a constructor injection point.
//
//	stereotype.InjectConstructor(NewOrderService)
func InjectConstructor(fn any) Option {
	return func(d *Descriptor) {
		d.Constructors = append(d.Constructors, fn)
	}
}

// InjectSetter marks the named method as a setter injection point.
func InjectSetter(method string) Option {
	return func(d *Descriptor) {
		d.Setters = append(d.Setters, method)
	}
}

// Constructor sets the no-argument constructor.
func Constructor(fn func() any) Option {
	return func(d *Descriptor) { d.New = fn }
}

// InNamespace files the type under ns instead of its package path.
func InNamespace(ns string) Option {
	return func(d *Descriptor) { d.Namespace = ns }
}

// Describe builds the descriptor of T. T may be given as a struct or as a
// pointer to one.
func Describe[T any](kind Kind, opts ...Option) (*Descriptor, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	d := &Descriptor{Namespace: t.PkgPath(), Type: t, Kind: kind}
	for _, opt := range opts {
		opt(d)
	}
	for _, c := range d.Capabilities {
		if c.Kind() != reflect.Interface {
			return nil, fmt.Errorf("%w: %s", ErrNotInterface, c)
		}
	}
	d.Name = d.Namespace + "." + t.Name()
	return d, nil
}

// ── Package-level registration (Default catalog) ─────────────────────────────

// Component registers T in Default as an instantiable type.
// It panics on invalid or duplicate registration, like sql.Register.
func Component[T any](opts ...Option) {
	must(Add[T](Default, KindComponent, opts...))
}

// Controller registers T in Default as an instantiable, routable type.
func Controller[T any](opts ...Option) {
	must(Add[T](Default, KindController, opts...))
}

// Plain registers T in Default without an instantiable marker. The scanner
// yields it; the container skips it.
func Plain[T any](opts ...Option) {
	must(Add[T](Default, KindNone, opts...))
}

// Add describes T and registers it in c.
func Add[T any](c *Catalog, kind Kind, opts ...Option) error {
	d, err := Describe[T](kind, opts...)
	if err != nil {
		return err
	}
	return c.Register(d)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
