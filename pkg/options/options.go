// Package options provides fetch options and their layered composition.
//
// Options are composed from several layers, see Compose:
// inferred method < global defaults < resource options < per-call options.
// Later layers win conflicts field by field, see Merge for details.
package options

import (
	"net/http"
	"net/url"

	"github.com/keboola/go-resource-fetch/pkg/action"
)

// Options of one fetch.
type Options struct {
	// Method is the HTTP method, by default inferred from the action kind.
	Method string
	// Header is sent with the request, the client global headers are overwritten.
	Header http.Header
	// Query parameters appended to the URL.
	Query url.Values
	// Path values replace {name} placeholders in the URL template.
	Path map[string]string
	// Body of the request, see client.Client.Fetch for supported types.
	Body any
	// Params are free-form, resource specific settings.
	Params map[string]any
}

// Compose merges, in precedence order from lowest to highest,
// the method inferred from the kind, global defaults, resource options and per-call options.
func Compose(kind action.Kind, defaults, resource, call Options) (Options, error) {
	method, err := kind.Method()
	if err != nil {
		return Options{}, err
	}
	return Merge(Options{Method: method}, defaults, resource, call), nil
}

// IsEmpty returns true if no field is set.
func (o Options) IsEmpty() bool {
	return o.Method == "" && len(o.Header) == 0 && len(o.Query) == 0 && len(o.Path) == 0 && o.Body == nil && len(o.Params) == 0
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	return Merge(o)
}
