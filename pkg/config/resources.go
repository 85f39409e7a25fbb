package config

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/keboola/go-resource-fetch/pkg/options"
	"github.com/keboola/go-resource-fetch/pkg/resource"
	"github.com/keboola/go-resource-fetch/pkg/urlbuild"
)

// Options converts the configuration to fetch options.
// An error is returned if a query value cannot be mapped to a string.
func (o OptionsConfig) Options() (options.Options, error) {
	out := options.Options{
		Method: strings.ToUpper(o.Method),
		Body:   o.Body,
		Params: o.Params,
	}
	if len(o.Header) > 0 {
		out.Header = make(http.Header)
		for k, v := range o.Header {
			out.Header.Set(k, v)
		}
	}
	if len(o.Query) > 0 {
		query, err := urlbuild.ToQuery(o.Query)
		if err != nil {
			return options.Options{}, err
		}
		out.Query = query
	}
	if len(o.Path) > 0 {
		out.Path = o.Path
	}
	return out.Clone(), nil
}

// DefaultOptions returns the global default fetch options.
func (c *Config) DefaultOptions() (options.Options, error) {
	opts, err := c.Defaults.Options()
	if err != nil {
		return options.Options{}, fmt.Errorf("defaults: %w", err)
	}
	return opts, nil
}

// Registry builds a registry of the configured resources.
func (c *Config) Registry() (*resource.Registry, error) {
	registry := resource.NewRegistry()
	for name, r := range c.Resources {
		opts, err := r.Opts.Options()
		if err != nil {
			return nil, fmt.Errorf("resources.%s: %w", name, err)
		}
		descriptor := resource.Static(r.URL, opts)
		if r.DataPath != "" {
			descriptor = descriptor.WithTransform(resource.JSONPath(r.DataPath))
		}
		if err := registry.Register(name, descriptor); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
