// Package dispatch turns an HTTP request into a call on a compiled route.
//
// Every request runs the same steps:
//
//	normalize → "/" greeting → first full match → bind → validate → invoke
//
// The dispatcher only reads the route table; it is safe for concurrent use.
package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	gohttp "github.com/km-arc/go-mvc/framework/http"
	"github.com/km-arc/go-mvc/framework/metrics"
	"github.com/km-arc/go-mvc/framework/routing"
)

// Fixed response bodies. None of them sets a status code.
const (
	Greeting = "hello"
	NotFound = "404 Not Found"
)

// Outcome labels reported to metrics and traces.
const (
	OutcomeGreeting     = "greeting"
	OutcomeNotFound     = "not_found"
	OutcomeMissingParam = "missing_param"
	OutcomeHandled      = "handled"
	OutcomeFailed       = "failed"
)

const tracerName = "github.com/km-arc/go-mvc/framework/dispatch"

// ErrSlotRange is logged when a slot points past the argument array.
var ErrSlotRange = errors.New("dispatch: parameter slot out of range")

// MissingParam returns the body written when a named parameter is absent
// or blank.
func MissingParam(name string) string {
	return "param " + name + " not exist!"
}

// Dispatcher is the http.Handler in front of a route table.
type Dispatcher struct {
	table       *routing.Table
	contextPath string
	logger      *zap.Logger
	metrics     *metrics.Collector
	tracer      trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithContextPath sets the deployment prefix stripped from request paths.
func WithContextPath(p string) Option {
	return func(d *Dispatcher) { d.contextPath = p }
}

// WithLogger sets the logger for swallowed handler failures.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithMetrics records every request outcome in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Dispatcher) { d.metrics = c }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// New creates a Dispatcher over table. A nil table answers every path
// except "/" with NotFound.
func New(table *routing.Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{table: table, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(tracerName)
	}
	d.logger = d.logger.Named("dispatch")
	d.contextPath = strings.TrimRight(routing.CollapseSlashes(d.contextPath), "/")
	return d
}

// ServeHTTP handles any method.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := d.tracer.Start(ctx, "mvc.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("mvc.path", r.URL.Path),
		),
	)
	defer span.End()

	outcome := d.dispatch(w, r.WithContext(ctx), span)

	span.SetAttributes(attribute.String("mvc.outcome", outcome))
	d.metrics.ObserveDispatch(outcome, time.Since(start))
}

func (d *Dispatcher) dispatch(w http.ResponseWriter, r *http.Request, span trace.Span) string {
	res := gohttp.NewResponse(w)
	path := Normalize(r.URL.Path, d.contextPath)

	if path == "/" {
		d.write(res, Greeting)
		return OutcomeGreeting
	}

	route, ok := d.table.Match(path)
	if !ok {
		d.write(res, NotFound)
		return OutcomeNotFound
	}
	span.SetAttributes(
		attribute.String("mvc.route", route.Pattern),
		attribute.String("mvc.handler", route.Handler()),
	)

	req := gohttp.NewRequest(r)
	args := make([]any, len(route.Slots))
	for _, slot := range route.Slots {
		if slot.Position >= len(args) {
			d.fail(span, route, fmt.Errorf("%w: %s at %d of %d", ErrSlotRange, slot, slot.Position, len(args)))
			return OutcomeFailed
		}
		switch slot.Kind {
		case routing.SlotResponse:
			args[slot.Position] = w
		case routing.SlotRequest:
			args[slot.Position] = r
		default:
			if !req.Present(slot.Key) {
				d.write(res, MissingParam(slot.Key))
				return OutcomeMissingParam
			}
			v, _ := req.Param(slot.Key)
			args[slot.Position] = v
		}
	}

	if err := route.Invoke(args); err != nil {
		d.fail(span, route, err)
		return OutcomeFailed
	}
	return OutcomeHandled
}

// fail logs a handler failure. Nothing more is written to the client.
func (d *Dispatcher) fail(span trace.Span, route *routing.Route, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	d.logger.Error("handler failed",
		zap.String("route", route.Pattern),
		zap.String("handler", route.Handler()),
		zap.Error(err))
}

func (d *Dispatcher) write(res *gohttp.Response, body string) {
	if err := res.Text(body); err != nil {
		d.logger.Warn("response write failed", zap.Error(err))
	}
}

// Normalize strips contextPath from the front of path and collapses every
// run of slashes. The prefix is only stripped on a segment boundary; an
// empty result becomes "/".
//
//	Normalize("/shop//alexlee///add", "/shop") == "/alexlee/add"
func Normalize(path, contextPath string) string {
	p := routing.CollapseSlashes(path)
	if cp := strings.TrimRight(routing.CollapseSlashes(contextPath), "/"); cp != "" {
		if p == cp || strings.HasPrefix(p, cp+"/") {
			p = p[len(cp):]
		}
	}
	if p == "" {
		return "/"
	}
	return p
}
