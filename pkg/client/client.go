// Package client provides the default base fetch implementation: an immutable, configurable HTTP client.
//
// Client.Fetch sends exactly one request, composed from a URL and fetch options,
// and returns the raw response. Interpretation of the status code and the body is left to the caller,
// see the fetch.Extract function.
//
// The client transparently decodes gzip, deflate and brotli encoded responses,
// and supports tracing/telemetry by trace.Factory hooks, see the AndTrace method.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	otelMetric "go.opentelemetry.io/otel/metric"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/keboola/go-resource-fetch/pkg/client/counter"
	"github.com/keboola/go-resource-fetch/pkg/client/decode"
	"github.com/keboola/go-resource-fetch/pkg/client/trace"
	"github.com/keboola/go-resource-fetch/pkg/client/trace/otel"
	"github.com/keboola/go-resource-fetch/pkg/options"
)

const DefaultUserAgent = "keboola-go-resource-fetch"

// Client is a default and configurable implementation of the fetch.BaseFetch by Go native http.Client.
// It supports tracing/telemetry, retries are not performed.
type Client struct {
	transport      http.RoundTripper
	baseURL        *url.URL
	header         http.Header
	timeout        time.Duration
	tokenSource    oauth2.TokenSource
	traceFactories []trace.Factory
}

// New creates new HTTP Client.
func New() Client {
	c := Client{transport: DefaultTransport(), header: make(http.Header)}
	c.header.Set("User-Agent", DefaultUserAgent)
	c.header.Set("Accept-Encoding", decode.AcceptEncoding)
	return c
}

// WithBaseURL returns a clone of the Client with base url set.
// Relative URLs passed to the Fetch method are resolved against the base URL.
func (c Client) WithBaseURL(baseURLStr string) Client {
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		panic(fmt.Errorf(`base url "%s" is not valid: %w`, baseURLStr, err))
	}
	c.baseURL = baseURL
	return c
}

// WithUserAgent returns a clone of the Client with user agent set.
func (c Client) WithUserAgent(v string) Client {
	return c.WithHeader("User-Agent", v)
}

// WithHeader returns a clone of the Client with common header set.
func (c Client) WithHeader(key, value string) Client {
	c.header = c.header.Clone()
	c.header.Set(key, value)
	return c
}

// WithHeaders returns a clone of the Client with common headers set.
func (c Client) WithHeaders(headers map[string]string) Client {
	c.header = c.header.Clone()
	for k, v := range headers {
		c.header.Set(k, v)
	}
	return c
}

// WithTransport returns a clone of the Client with a HTTP transport set.
func (c Client) WithTransport(transport http.RoundTripper) Client {
	if transport == nil {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	c.transport = transport
	return c
}

// WithTimeout returns a clone of the Client with the total request timeout set.
// The timeout includes reading of the response body. Zero means no timeout.
func (c Client) WithTimeout(timeout time.Duration) Client {
	c.timeout = timeout
	return c
}

// WithTokenSource returns a clone of the Client which sends a token from the source
// in the Authorization header, for example oauth2.StaticTokenSource.
func (c Client) WithTokenSource(ts oauth2.TokenSource) Client {
	c.tokenSource = ts
	return c
}

// AndTrace returns a clone of the Client with Trace hooks added.
// The last registered hooks are executed last.
func (c Client) AndTrace(fn trace.Factory) Client {
	c.traceFactories = append(append([]trace.Factory(nil), c.traceFactories...), fn)
	return c
}

// WithTelemetry returns a clone of the Client with OpenTelemetry tracing and metrics, see the otel package.
func (c Client) WithTelemetry(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...otel.Option) Client {
	return c.AndTrace(otel.NewTrace(tracerProvider, meterProvider, opts...))
}

// Fetch sends one HTTP request and returns the HTTP response, it implements the fetch.BaseFetch.
//
// The method is taken from opts.Method, GET by default. Headers from opts.Header replace the client headers.
// Supported opts.Body data types are: string, []byte, io.Reader and any value encodable to JSON.
// The response body is decoded according to the Content-Encoding header and must be closed by the caller.
// A response with any status code is returned without an error.
func (c Client) Fetch(ctx context.Context, urlStr string, opts options.Options) (res *http.Response, err error) {
	// Method cannot be called on an empty value
	if c.transport == nil {
		panic(fmt.Errorf("client value is not initialized"))
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	// Convert to absolute url
	var reqURL *url.URL
	if c.baseURL == nil {
		reqURL, err = url.Parse(urlStr)
	} else {
		reqURL, err = c.baseURL.Parse(urlStr)
	}
	if err != nil {
		return nil, fmt.Errorf(`request %s "%s": url is not valid: %w`, method, urlStr, err)
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	// Global headers
	for k, values := range c.header {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// Request headers
	for k, values := range opts.Header {
		req.Header.Del(k) // clear global values
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Body
	if err := setRequestBody(req, opts.Body); err != nil {
		return nil, fmt.Errorf(`request %s "%s": cannot prepare request body: %w`, req.Method, req.URL.String(), err)
	}

	// Init trace
	ctx, clientTrace := c.initTrace(ctx, req)
	if clientTrace != nil {
		req = req.WithContext(httptrace.WithClientTrace(ctx, &clientTrace.ClientTrace))
	}

	// Trace request processed
	if clientTrace != nil && clientTrace.RequestProcessed != nil {
		defer func() {
			clientTrace.RequestProcessed(res, err)
		}()
	}

	// Setup native client
	var transport http.RoundTripper = roundTripper{trace: clientTrace, wrapped: c.transport}
	if c.tokenSource != nil {
		transport = &oauth2.Transport{Source: c.tokenSource, Base: transport}
	}
	nativeClient := http.Client{Timeout: c.timeout, Transport: transport}

	// Send request
	startedAt := time.Now()
	res, err = nativeClient.Do(req)
	if err != nil {
		return nil, handleSendError(startedAt, c.timeout, req, err)
	}

	// Final request, for example after redirects, is used in the error message of a failed request
	if res.Request == nil {
		res.Request = req
	}

	// Process content encoding
	if err := decode.Response(res); err != nil {
		_ = res.Body.Close()
		return nil, fmt.Errorf(`request %s "%s": %w`, req.Method, req.URL.String(), err)
	}

	// Count read bytes, report to the trace when the body is closed
	var onClose counter.OnClose
	if clientTrace != nil && clientTrace.BodyClosed != nil {
		onClose = counter.OnClose(clientTrace.BodyClosed)
	}
	res.Body = counter.NewReadCloser(res.Body, onClose)

	return res, nil
}

func (c Client) initTrace(ctx context.Context, req *http.Request) (context.Context, *trace.ClientTrace) {
	var out *trace.ClientTrace
	for _, factory := range c.traceFactories {
		var t *trace.ClientTrace
		ctx, t = factory(ctx, req)
		if t == nil {
			continue
		}
		t.Compose(out)
		out = t
	}
	return ctx, out
}

func handleSendError(startedAt time.Time, clientTimeout time.Duration, req *http.Request, err error) error {
	// Timeout
	var netErr net.Error
	if deadline, ok := req.Context().Deadline(); ok && errors.Is(err, context.DeadlineExceeded) {
		err = urlError(req, fmt.Errorf("timeout after %s", deadline.Sub(startedAt)))
	} else if errors.Is(err, context.Canceled) {
		err = urlError(req, fmt.Errorf("canceled after %s", time.Since(startedAt)))
	} else if errors.As(err, &netErr) && netErr.Timeout() {
		if strings.Contains(err.Error(), "Client.Timeout exceeded") {
			err = urlError(req, fmt.Errorf("timeout after %s", clientTimeout))
		} else {
			err = urlError(req, fmt.Errorf("timeout after %s", time.Since(startedAt)))
		}
	}

	// Url error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf(`request %s "%s" failed: %w`, strings.ToUpper(urlErr.Op), urlErr.URL, urlErr.Err)
	}

	return err
}

// roundTripper wraps a http.RoundTripper and adds trace hooks for each request, including redirects.
type roundTripper struct {
	trace   *trace.ClientTrace
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Trace request start
	if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
		rt.trace.HTTPRequestStart(req)
	}

	// Send
	res, err := rt.wrapped.RoundTrip(req)

	// Trace request done
	if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
		rt.trace.HTTPRequestDone(res, err)
	}

	return res, err
}

func urlError(req *http.Request, err error) *url.Error {
	return &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
}
