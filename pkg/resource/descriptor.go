// Package resource contains descriptors of fetchable resources and their registry.
//
// A Descriptor tells how to build the target URL and resource options
// for an identifier, an action kind and the current application state.
// It may also transform the raw response body.
package resource

import (
	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/options"
)

// State is a point-in-time snapshot of the application state, as returned by the store.
type State = any

// Target of a fetch, returned by the Descriptor.
type Target struct {
	URL  string
	Opts options.Options
}

// TransformContext is passed to the TransformFunc.
type TransformContext struct {
	ID   any
	Opts options.Options
	Kind action.Kind
}

// FetchFunc returns the target for an identifier, an action kind and a state snapshot.
type FetchFunc func(id any, kind action.Kind, state State) (Target, error)

// TransformFunc maps the raw response body to the final data.
type TransformFunc func(raw any, c TransformContext) (any, error)

// Descriptor of a resource.
type Descriptor struct {
	// Fetch is required.
	Fetch FetchFunc
	// Transform is optional, raw data is used if it is not set.
	Transform TransformFunc
}

// Static returns a Descriptor with a fixed URL template and options.
func Static(urlTemplate string, opts options.Options) Descriptor {
	return Descriptor{
		Fetch: func(_ any, _ action.Kind, _ State) (Target, error) {
			return Target{URL: urlTemplate, Opts: opts.Clone()}, nil
		},
	}
}

// WithTransform returns a clone of the Descriptor with the transform set.
func (d Descriptor) WithTransform(fn TransformFunc) Descriptor {
	d.Transform = fn
	return d
}
