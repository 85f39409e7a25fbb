package otel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const (
	maskedAttrValue = "****"
)

type attributes struct {
	config config
	// url of the first request, before redirects
	fetchURL *url.URL
	// fetch attributes for span and metrics
	fetch []attribute.KeyValue
	// fetchExtra attributes for span only
	fetchExtra []attribute.KeyValue
	// httpRequest attributes for span and metrics
	httpRequest []attribute.KeyValue
	// httpRequestExtra attributes for span only
	httpRequestExtra []attribute.KeyValue
	// httpResponse attributes for span and metrics
	httpResponse []attribute.KeyValue
	// httpResponseExtra attributes for span only
	httpResponseExtra []attribute.KeyValue
}

func newAttributes(cfg config, req *http.Request) *attributes {
	out := &attributes{config: cfg, fetchURL: req.URL}

	out.fetch = []attribute.KeyValue{
		attribute.String("fetch.method", req.Method),
		attribute.String("fetch.url.full", redactURL(cfg, req.URL)),
		attribute.String("fetch.url.path", mustURLPathUnescape(req.URL.Path)),
		attribute.String("fetch.url.host.full", req.URL.Host),
	}
	if dotPos := strings.IndexByte(req.URL.Host, '.'); dotPos > 0 {
		// Host parts: to trace service name (host prefix) and domain (host suffix).
		out.fetch = append(out.fetch,
			attribute.String("fetch.url.host.prefix", req.URL.Host[:dotPos]),
			attribute.String("fetch.url.host.suffix", strings.TrimLeft(req.URL.Host[dotPos:], ".")),
		)
	}

	out.fetchExtra = headerAttrs(cfg, "fetch.header.", req.Header)
	return out
}

func (v *attributes) SetFromRequest(req *http.Request) {
	if req == nil {
		v.httpRequest = nil
		v.httpRequestExtra = nil
		return
	}

	v.httpRequest = []attribute.KeyValue{
		semconv.HTTPMethodKey.String(req.Method),
		semconv.HTTPURLKey.String(redactURL(v.config, req.URL)),
		semconv.NetPeerNameKey.String(req.URL.Hostname()),
	}
	v.httpRequestExtra = headerAttrs(v.config, "http.header.", req.Header)
}

func (v *attributes) SetFromResponse(res *http.Response, err error) {
	if res == nil {
		v.httpResponse = []attribute.KeyValue{
			attribute.Bool("http.response.is_success", false),
		}
		v.httpResponseExtra = nil
	} else {
		v.httpResponse = []attribute.KeyValue{
			semconv.HTTPStatusCodeKey.Int(res.StatusCode),
			attribute.Bool("http.response.is_success", isSuccess(res, err)),
		}
		v.httpResponseExtra = headerAttrs(v.config, "http.response.header.", res.Header)
		if isRedirection(res) {
			v.httpResponseExtra = append(v.httpResponseExtra, attribute.String("http.response.redirect", res.Header.Get("Location")))
		}
	}

	if err != nil {
		var netErr net.Error
		errors.As(err, &netErr)
		v.httpResponseExtra = append(v.httpResponseExtra,
			attribute.Bool("http.response.error.net", netErr != nil),
			attribute.Bool("http.response.error.timeout", netErr != nil && netErr.Timeout()),
			attribute.Bool("http.response.error.cancelled", errors.Is(err, context.Canceled)),
			attribute.Bool("http.response.error.deadline_exceeded", errors.Is(err, context.DeadlineExceeded)),
		)
	}
}

func headerAttrs(cfg config, prefix string, header http.Header) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for key, values := range header {
		key = strings.ToLower(key)
		value := strings.Join(values, ";")
		if cfg.redactedHeaders.has(key) {
			value = maskedAttrValue
		}
		attrs = append(attrs, attribute.String(prefix+key, value))
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].Key < attrs[j].Key
	})
	return attrs
}

// redactURL returns the URL string with masked password and redacted query parameters.
func redactURL(cfg config, in *url.URL) string {
	if in == nil {
		return ""
	}

	u := *in
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), maskedAttrValue)
		}
	}

	if len(cfg.redactedQueryParams) > 0 && u.RawQuery != "" {
		query := u.Query()
		for k := range query {
			if cfg.redactedQueryParams.has(k) {
				query.Set(k, maskedAttrValue)
			}
		}
		u.RawQuery = query.Encode()
	}

	return mustURLPathUnescape(u.String())
}
