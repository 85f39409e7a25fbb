package otel

import (
	"strings"

	"go.opentelemetry.io/otel/propagation"

	"github.com/keboola/go-resource-fetch/pkg/logging"
)

// otelhttptrace redacts the same headers.
var defaultRedactedHeaders = []string{"www-authenticate", "proxy-authenticate", "proxy-authorization"} //nolint:gochecknoglobals

type config struct {
	propagators         propagation.TextMapPropagator
	redactedQueryParams keySet
	redactedHeaders     keySet
}

type Option func(*config)

// keySet is a set of lowercase keys.
type keySet map[string]struct{}

func (s keySet) add(keys ...string) {
	for _, k := range keys {
		s[strings.ToLower(k)] = struct{}{}
	}
}

func (s keySet) has(key string) bool {
	_, found := s[strings.ToLower(key)]
	return found
}

// WithPropagators sets propagators used to inject the trace context into each sent HTTP request.
func WithPropagators(v propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagators = v
	}
}

// WithRedactedQueryParam masks values of the query parameters in the fetch.url.full attribute.
func WithRedactedQueryParam(params ...string) Option {
	return func(c *config) {
		c.redactedQueryParams.add(params...)
	}
}

// WithRedactedHeaders masks values of the headers in span attributes.
// Headers from the logging.SensitiveHeaders are always masked.
func WithRedactedHeaders(headers ...string) Option {
	return func(c *config) {
		c.redactedHeaders.add(headers...)
	}
}

func newConfig(opts []Option) config {
	cfg := config{redactedQueryParams: make(keySet), redactedHeaders: make(keySet)}
	cfg.redactedHeaders.add(defaultRedactedHeaders...)
	cfg.redactedHeaders.add(logging.SensitiveHeaders...)
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
