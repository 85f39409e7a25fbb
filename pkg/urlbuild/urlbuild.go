// Package urlbuild resolves a URL template, an optional identifier and fetch options to a request URL.
//
// Placeholders in the form {name} are replaced by path escaped values from Options.Path,
// the {id} placeholder by the identifier. Query parameters from Options.Query are appended.
package urlbuild

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/keboola/go-resource-fetch/pkg/options"
)

// IDPlaceholder is replaced by the identifier.
const IDPlaceholder = "id"

var placeholderRegexp = regexp.MustCompile(`\{([a-zA-Z0-9_\-.]+)\}`) //nolint:gochecknoglobals

// Target is the input of the Build function.
type Target struct {
	URL  string
	ID   any
	Opts options.Options
}

// Build returns the request URL for the target.
func Build(t Target) (string, error) {
	if t.URL == "" {
		return "", fmt.Errorf("url template is empty")
	}

	// Path values
	values := make(map[string]string, len(t.Opts.Path)+1)
	for k, v := range t.Opts.Path {
		values[k] = v
	}
	if t.ID != nil {
		id, err := cast.ToStringE(t.ID)
		if err != nil {
			return "", fmt.Errorf(`cannot convert id %T to string: %w`, t.ID, err)
		}
		values[IDPlaceholder] = id
	}

	// Replace path placeholders
	var missing []string
	urlStr := placeholderRegexp.ReplaceAllStringFunc(t.URL, func(placeholder string) string {
		key := strings.Trim(placeholder, "{}")
		if v, found := values[key]; found {
			return url.PathEscape(v)
		}
		missing = append(missing, key)
		return placeholder
	})
	if len(missing) > 0 {
		return "", fmt.Errorf(`url "%s": missing path value "%s"`, t.URL, strings.Join(missing, `", "`))
	}

	out, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf(`url "%s" is not valid: %w`, t.URL, err)
	}

	// Append query parameters to the parameters from the template
	if len(t.Opts.Query) > 0 {
		query := out.Query()
		for k, values := range t.Opts.Query {
			for _, v := range values {
				query.Add(k, v)
			}
		}
		out.RawQuery = query.Encode()
	}

	return out.String(), nil
}
