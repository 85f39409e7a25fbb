// Package fetch executes one resource fetch:
// it resolves the resource descriptor, composes options, builds the URL,
// sends the request by the injected BaseFetch and extracts the response body.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/logging"
	"github.com/keboola/go-resource-fetch/pkg/options"
	"github.com/keboola/go-resource-fetch/pkg/resource"
	"github.com/keboola/go-resource-fetch/pkg/urlbuild"
)

// BaseFetch sends the request, client.Client.Fetch is the default implementation.
// The response body is read and closed by the Executor.
type BaseFetch func(ctx context.Context, url string, opts options.Options) (*http.Response, error)

// URLBuilder resolves the target to a request URL, urlbuild.Build is the default implementation.
type URLBuilder func(t urlbuild.Target) (string, error)

// Request to fetch one resource.
type Request struct {
	Resource string
	ID       any
	Opts     options.Options
	Kind     action.Kind
	// State is a snapshot taken before the fetch, it is passed to the descriptor.
	State resource.State
}

type Executor struct {
	registry  *resource.Registry
	baseFetch BaseFetch
	defaults  options.Options
	buildURL  URLBuilder
}

type executorConfig struct {
	defaults options.Options
	buildURL URLBuilder
}

type Option func(c *executorConfig)

// WithDefaultOpts sets global default options, overridden by resource and per-call options.
func WithDefaultOpts(opts options.Options) Option {
	return func(c *executorConfig) {
		c.defaults = opts
	}
}

// WithURLBuilder replaces the default urlbuild.Build function.
func WithURLBuilder(fn URLBuilder) Option {
	return func(c *executorConfig) {
		c.buildURL = fn
	}
}

func NewExecutor(registry *resource.Registry, baseFetch BaseFetch, opts ...Option) *Executor {
	if registry == nil {
		panic(fmt.Errorf("registry cannot be nil"))
	}
	if baseFetch == nil {
		panic(fmt.Errorf("base fetch cannot be nil"))
	}

	cfg := executorConfig{buildURL: urlbuild.Build}
	for _, o := range opts {
		o(&cfg)
	}

	return &Executor{
		registry:  registry,
		baseFetch: baseFetch,
		defaults:  cfg.defaults,
		buildURL:  cfg.buildURL,
	}
}

// Execute fetches the resource and returns the final, optionally transformed, data.
//
// A ResponseError is returned for a non-success status code.
// An error from the BaseFetch, for example a network error, is returned unchanged.
func (e *Executor) Execute(ctx context.Context, req Request) (any, error) {
	logger := logging.FromContext(ctx).With(
		slog.String("resource", req.Resource),
		slog.String("kind", req.Kind.String()),
	)

	descriptor, err := e.registry.Lookup(req.Resource)
	if err != nil {
		return nil, err
	}

	target, err := descriptor.Fetch(req.ID, req.Kind, req.State)
	if err != nil {
		return nil, fmt.Errorf(`resource "%s": cannot get target: %w`, req.Resource, err)
	}

	fetchOpts, err := options.Compose(req.Kind, e.defaults, target.Opts, req.Opts)
	if err != nil {
		return nil, fmt.Errorf(`resource "%s": %w`, req.Resource, err)
	}

	fetchURL, err := e.buildURL(urlbuild.Target{URL: target.URL, ID: req.ID, Opts: fetchOpts})
	if err != nil {
		return nil, fmt.Errorf(`resource "%s": cannot build url: %w`, req.Resource, err)
	}

	logger.DebugContext(ctx, "fetching resource", slog.String("method", fetchOpts.Method), slog.String("url", fetchURL))
	res, err := e.baseFetch(ctx, fetchURL, fetchOpts)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf(`resource "%s": base fetch returned no response`, req.Resource)
	}

	rawData, err := Extract(res)
	if responseErr, ok := AsResponseError(err); ok && responseErr.URL == "" {
		// The response of a custom BaseFetch may not reference the request
		responseErr.URL = fetchURL
	}
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "resource fetched", slog.Int("status", res.StatusCode))

	if descriptor.Transform == nil {
		return rawData, nil
	}
	return descriptor.Transform(rawData, resource.TransformContext{ID: req.ID, Opts: req.Opts, Kind: req.Kind})
}
