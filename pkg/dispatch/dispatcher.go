// Package dispatch runs resource fetches and notifies a store about their lifecycle.
//
// For each dispatched request, the "started" notification is delivered synchronously,
// before Dispatch returns. The "finished" notification is delivered from the request goroutine,
// always after "started", and before the returned Pending is settled.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/fetch"
	"github.com/keboola/go-resource-fetch/pkg/logging"
	"github.com/keboola/go-resource-fetch/pkg/options"
)

const (
	traceAppName     = "github.com/keboola/go-resource-fetch"
	dispatchSpanName = "resource.fetch.dispatch"
	attrResource     = attribute.Key("resource.name")
	attrResourceID   = attribute.Key("resource.id")
	attrActionKind   = attribute.Key("resource.action.kind")
)

// Executor performs the fetch, fetch.Executor is the default implementation.
type Executor interface {
	Execute(ctx context.Context, req fetch.Request) (any, error)
}

// Request to dispatch.
type Request struct {
	Resource string
	ID       any
	Opts     options.Options
	Kind     action.Kind
}

type Dispatcher struct {
	store    Store
	executor Executor
	types    action.TypeTable
	tracer   otelTrace.Tracer
}

type config struct {
	types          action.TypeTable
	tracerProvider otelTrace.TracerProvider
}

type Option func(c *config)

// WithTypes replaces the default "<KIND>_STARTED" / "<KIND>_FINISHED" notification types.
func WithTypes(types action.TypeTable) Option {
	return func(c *config) {
		c.types = types
	}
}

// WithTracerProvider enables a span for each dispatched request.
func WithTracerProvider(tp otelTrace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

// New creates a Dispatcher. An error is returned if the notification types table is not complete.
func New(store Store, executor Executor, opts ...Option) (*Dispatcher, error) {
	cfg := config{types: action.DefaultTypes(), tracerProvider: noop.NewTracerProvider()}
	for _, o := range opts {
		o(&cfg)
	}

	if err := cfg.types.Validate(); err != nil {
		return nil, err
	}

	return &Dispatcher{
		store:    store,
		executor: executor,
		types:    cfg.types,
		tracer:   cfg.tracerProvider.Tracer(traceAppName),
	}, nil
}

// Dispatch starts the request and returns its Pending result.
//
// A request with an unknown kind is rejected immediately, no notification is dispatched.
// The ctx is not used for cancellation, the request always runs to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Pending {
	logger := logging.FromContext(ctx).With(slog.String("resource", req.Resource), slog.String("kind", req.Kind.String()))

	types, err := d.types.Lookup(req.Kind)
	if err != nil {
		logger.ErrorContext(ctx, "cannot dispatch request", slog.Any("error", err))
		return rejected(err)
	}

	// State snapshot is taken once, before the request
	state := d.store.State()

	ctx, span := d.tracer.Start(
		context.WithoutCancel(ctx),
		dispatchSpanName,
		otelTrace.WithSpanKind(otelTrace.SpanKindInternal),
		otelTrace.WithAttributes(
			attrResource.String(req.Resource),
			attrResourceID.String(cast.ToString(req.ID)),
			attrActionKind.String(req.Kind.String()),
		),
	)

	pending := newPending()
	started := make(chan struct{})
	go func() {
		data, err := d.execute(ctx, fetch.Request{
			Resource: req.Resource,
			ID:       req.ID,
			Opts:     req.Opts,
			Kind:     req.Kind,
			State:    state,
		})

		finished := d.notification(types.Finished, req)
		if err == nil {
			finished.Data = data
		} else {
			data = nil
			finished.Err = err
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.DebugContext(ctx, "request failed", slog.Any("error", err))
		}
		span.End()

		// Finished must not overtake started
		<-started
		d.store.Dispatch(finished)
		pending.settle(data, err)
	}()

	func() {
		defer close(started)
		n := d.notification(types.Started, req)
		n.Pending = pending
		d.store.Dispatch(n)
	}()

	return pending
}

// execute converts a panic in the executor, or in the descriptor functions it calls, to an error.
func (d *Dispatcher) execute(ctx context.Context, req fetch.Request) (data any, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf(`resource "%s": panic: %v`, req.Resource, r)
		}
	}()
	return d.executor.Execute(ctx, req)
}

func (d *Dispatcher) notification(t action.Type, req Request) Notification {
	return Notification{Type: t, Kind: req.Kind, Resource: req.Resource, ID: req.ID, Opts: req.Opts}
}
