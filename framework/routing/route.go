package routing

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrArity is returned when a handler is called with the wrong number
	// of arguments.
	ErrArity = errors.New("routing: argument count mismatch")
	// ErrArgumentType is returned when a bound argument cannot be passed as
	// the declared parameter type.
	ErrArgumentType = errors.New("routing: argument type mismatch")
	// ErrHandlerPanic wraps a panic raised by a handler.
	ErrHandlerPanic = errors.New("routing: handler panicked")
)

var (
	responseType = reflect.TypeFor[http.ResponseWriter]()
	requestType  = reflect.TypeFor[*http.Request]()
	errorType    = reflect.TypeFor[error]()
)

// ── ParamSlot ────────────────────────────────────────────────────────────────

// SlotKind tells the dispatcher where an argument comes from.
type SlotKind int

const (
	// SlotNamed is bound from the request parameter named Key.
	SlotNamed SlotKind = iota
	// SlotRequest receives the live *http.Request.
	SlotRequest
	// SlotResponse receives the live http.ResponseWriter.
	SlotResponse
)

func (k SlotKind) String() string {
	switch k {
	case SlotRequest:
		return "request"
	case SlotResponse:
		return "response"
	default:
		return "named"
	}
}

// ParamSlot maps a binding to a handler argument position.
type ParamSlot struct {
	Kind     SlotKind
	Key      string
	Position int
}

func (s ParamSlot) String() string {
	if s.Kind == SlotNamed {
		return fmt.Sprintf("%d:%s", s.Position, s.Key)
	}
	return fmt.Sprintf("%d:<%s>", s.Position, s.Kind)
}

// ── Route ────────────────────────────────────────────────────────────────────

// invoker calls a handler resolved once at build time.
type invoker func(args []any) error

// Route is one compiled handler mapping. It is immutable once built.
type Route struct {
	// Owner is the controller instance the handler is bound to.
	Owner any
	// Method is the handler method name.
	Method string
	// Pattern is the source pattern before anchoring.
	Pattern string
	// Slots are ordered by Position.
	Slots []ParamSlot

	re     *regexp.Regexp
	invoke invoker
}

// Match reports whether the pattern matches the whole of path.
func (r *Route) Match(path string) bool { return r.re.MatchString(path) }

// Handler names the bound method as Type.Method.
func (r *Route) Handler() string {
	t := reflect.TypeOf(r.Owner)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name() + "." + r.Method
}

// Invoke calls the handler with args. A returned error or a panic comes
// back as an error.
func (r *Route) Invoke(args []any) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, r.Handler(), rec)
		}
	}()
	return r.invoke(args)
}

// bindInvoker resolves method on owner and returns a call function for it.
func bindInvoker(owner any, method string) (invoker, reflect.Type, error) {
	m := reflect.ValueOf(owner).MethodByName(method)
	if !m.IsValid() {
		return nil, nil, fmt.Errorf("%w: %T has no method %s", ErrUnknownMethod, owner, method)
	}
	mt := m.Type()

	switch fn := m.Interface().(type) {
	case func(http.ResponseWriter, *http.Request):
		return func(args []any) error {
			if len(args) != 2 {
				return fmt.Errorf("%w: %s takes 2, got %d", ErrArity, method, len(args))
			}
			w, ok1 := args[0].(http.ResponseWriter)
			req, ok2 := args[1].(*http.Request)
			if !ok1 || !ok2 {
				return fmt.Errorf("%w: %s", ErrArgumentType, method)
			}
			fn(w, req)
			return nil
		}, mt, nil
	case func(http.ResponseWriter, *http.Request) error:
		return func(args []any) error {
			if len(args) != 2 {
				return fmt.Errorf("%w: %s takes 2, got %d", ErrArity, method, len(args))
			}
			w, ok1 := args[0].(http.ResponseWriter)
			req, ok2 := args[1].(*http.Request)
			if !ok1 || !ok2 {
				return fmt.Errorf("%w: %s", ErrArgumentType, method)
			}
			return fn(w, req)
		}, mt, nil
	}

	return func(args []any) error {
		if mt.IsVariadic() || len(args) != mt.NumIn() {
			return fmt.Errorf("%w: %s takes %d, got %d", ErrArity, method, mt.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			pt := mt.In(i)
			if a == nil {
				in[i] = reflect.Zero(pt)
				continue
			}
			av := reflect.ValueOf(a)
			if !av.Type().AssignableTo(pt) {
				return fmt.Errorf("%w: %s argument %d is %s, want %s", ErrArgumentType, method, i, av.Type(), pt)
			}
			in[i] = av
		}
		out := m.Call(in)
		if n := len(out); n > 0 && mt.Out(n-1).Implements(errorType) {
			if err, _ := out[n-1].Interface().(error); err != nil {
				return err
			}
		}
		return nil
	}, mt, nil
}

// slotsFor builds the binding table of a handler of type mt. Named markers
// are recorded first, then context parameters by declared type. A key seen
// twice keeps its last position.
func slotsFor(mt reflect.Type, names []string) ([]ParamSlot, error) {
	if len(names) > mt.NumIn() {
		return nil, fmt.Errorf("%w: %d names for %d parameters", ErrParamNames, len(names), mt.NumIn())
	}

	index := make(map[string]int)
	var slots []ParamSlot
	put := func(s ParamSlot) {
		if i, ok := index[s.Key]; ok {
			slots[i] = s
			return
		}
		index[s.Key] = len(slots)
		slots = append(slots, s)
	}

	for i, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			put(ParamSlot{Kind: SlotNamed, Key: name, Position: i})
		}
	}
	for i := 0; i < mt.NumIn(); i++ {
		switch mt.In(i) {
		case responseType:
			put(ParamSlot{Kind: SlotResponse, Key: responseType.String(), Position: i})
		case requestType:
			put(ParamSlot{Kind: SlotRequest, Key: requestType.String(), Position: i})
		}
	}

	slices.SortStableFunc(slots, func(a, b ParamSlot) int { return cmp.Compare(a.Position, b.Position) })
	return slots, nil
}
