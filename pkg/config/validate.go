package config

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/keboola/go-resource-fetch/pkg/urlbuild"
)

// Validate checks all configuration values and returns aggregated errors.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || !u.IsAbs() {
			errs = multierror.Append(errs, fmt.Errorf(`base_url must be an absolute URL, got "%s"`, c.BaseURL))
		}
	}
	if c.Timeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	switch c.Trace {
	case "", "log", "dump":
	default:
		errs = multierror.Append(errs, fmt.Errorf(`trace must be one of: log, dump; got "%s"`, c.Trace))
	}
	if c.HTTP2 && c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = multierror.Append(errs, fmt.Errorf("http2 requires an https base_url"))
	}

	errs = multierror.Append(errs, c.Log.validate())
	errs = multierror.Append(errs, c.Defaults.validate("defaults"))

	// Sort resources, so the error is deterministic
	names := make([]string, 0, len(c.Resources))
	for name := range c.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		errs = multierror.Append(errs, c.Resources[name].validate("resources."+name))
	}

	return errs.ErrorOrNil()
}

func (l LogConfig) validate() error {
	var errs *multierror.Error

	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = multierror.Append(errs, fmt.Errorf(`log.level must be one of: debug, info, warn, error; got "%s"`, l.Level))
	}

	switch l.Format {
	case "json", "text":
	default:
		errs = multierror.Append(errs, fmt.Errorf(`log.format must be one of: json, text; got "%s"`, l.Format))
	}

	return errs.ErrorOrNil()
}

func (r ResourceConfig) validate(prefix string) error {
	var errs *multierror.Error
	if r.URL == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s.url must not be empty", prefix))
	}
	errs = multierror.Append(errs, r.Opts.validate(prefix+".opts"))
	return errs.ErrorOrNil()
}

func (o OptionsConfig) validate(prefix string) error {
	var errs *multierror.Error
	switch strings.ToUpper(o.Method) {
	case "", http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions:
	default:
		errs = multierror.Append(errs, fmt.Errorf(`%s.method "%s" is not supported`, prefix, o.Method))
	}
	if _, err := urlbuild.ToQuery(o.Query); err != nil {
		errs = multierror.Append(errs, fmt.Errorf(`%s.query: %w`, prefix, err))
	}
	return errs.ErrorOrNil()
}
