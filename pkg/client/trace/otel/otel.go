// Package otel provides OpenTelemetry tracing and metrics for the client.Client fetches.
//
// The package provides 3 types of telemetry:
// 1. Low-level httptrace telemetry:
//   - It provides spans for HTTP request parts, for example: "http.dns", "http.tls", "http.getconn".
//   - Span names start with "http".
//   - Metrics are not provided.
//
// 2. HTTP request telemetry:
//   - It provides span and metrics for every sent HTTP request, including redirects.
//   - Span name is "http.request".
//   - Metrics names start with "fetch.http." (httpMeterPrefix const).
//
// 3. Fetch telemetry:
//   - It provides span and metrics for each Client.Fetch call.
//   - Main span "fetch.client.request" wraps all redirects and the response body reading.
//   - Span "fetch.client.response.body" tracks the response body reading, until the body is closed.
//   - Metrics names start with "fetch.client." (clientMeterPrefix const).
//
// The main span ends when the response body is closed, or when the fetch fails.
package otel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelMetric "go.opentelemetry.io/otel/metric"
	metricNoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/keboola/go-resource-fetch/pkg/client/trace"
)

const (
	traceAppName     = "github.com/keboola/go-resource-fetch"
	attrResourceName = attribute.Key("resource.name")
	// Low-level tracing, for each redirect.
	httpSpanPrefix             = "http."
	httpRequestSpanName        = httpSpanPrefix + "request"
	httpDNSSpanName            = httpSpanPrefix + "dns"
	httpGetConnSpanName        = httpSpanPrefix + "getconn"
	httpConnectSpanName        = httpSpanPrefix + "connect"
	httpTLSHandshakeSpanName   = httpSpanPrefix + "tls"
	httpHeadersSpanName        = httpSpanPrefix + "headers"
	httpSendSpanName           = httpSpanPrefix + "send"
	httpReceiveSpanName        = httpSpanPrefix + "receive"
	attrDNSAddresses           = attribute.Key("http.dns.addrs")
	attrRemoteAddr             = attribute.Key("http.remote")
	attrLocalAddr              = attribute.Key("http.local")
	attrConnectionReused       = attribute.Key("http.conn.reused")
	attrConnectionWasIdle      = attribute.Key("http.conn.wasidle")
	attrConnectionIdleTime     = attribute.Key("http.conn.idletime")
	attrConnectionStartNetwork = attribute.Key("http.conn.start.network")
	attrConnectionDoneNetwork  = attribute.Key("http.conn.done.network")
	attrConnectionDoneAddr     = attribute.Key("http.conn.done.addr")
	attrReadBytes              = attribute.Key("http.read_bytes")
	// High-level tracing.
	clientSpanPrefix           = "fetch.client."
	clientRequestSpanName      = clientSpanPrefix + "request"
	clientResponseBodySpanName = clientSpanPrefix + "response.body"
	// Extra attributes for DataDog.
	attrSpanKind            = attribute.Key("span.kind")
	attrSpanKindValueClient = "client"
	attrSpanType            = attribute.Key("span.type")
	attrSpanTypeValueHTTP   = "http"
)

// NewTrace creates a trace.Factory, which reports spans and metrics of each Client.Fetch call.
// Nil providers are replaced by noop implementations.
func NewTrace(tracerProvider otelTrace.TracerProvider, meterProvider otelMetric.MeterProvider, opts ...Option) trace.Factory {
	cfg := newConfig(opts)
	if tracerProvider == nil {
		tracerProvider = noop.NewTracerProvider()
	}
	if meterProvider == nil {
		meterProvider = metricNoop.NewMeterProvider()
	}
	tracer := tracerProvider.Tracer(traceAppName)
	meters := newMeters(meterProvider.Meter(traceAppName))

	return func(rootCtx context.Context, req *http.Request) (context.Context, *trace.ClientTrace) {
		tc := &trace.ClientTrace{}
		attrs := newAttributes(cfg, req)

		// Create root span and metrics, it may contain multiple HTTP requests (redirects).
		var rootSpan otelTrace.Span
		startTime := time.Now()
		meters.client.inFlight.Add(rootCtx, 1, otelMetric.WithAttributes(attrs.fetch...))
		rootCtx, rootSpan = tracer.Start(
			rootCtx,
			clientRequestSpanName,
			otelTrace.WithSpanKind(otelTrace.SpanKindClient),
			otelTrace.WithAttributes(
				attrResourceName.String(mustURLPathUnescape(attrs.fetchURL.Path)),
				attrSpanKind.String(attrSpanKindValueClient),
				attrSpanType.String(attrSpanTypeValueHTTP),
			),
			otelTrace.WithAttributes(attrs.fetch...),
			otelTrace.WithAttributes(attrs.fetchExtra...),
		)

		// finish ends the root span, it is called once, on a fetch error or when the body is closed
		finish := func(err error) {
			elapsedTime := float64(time.Since(startTime)) / float64(time.Millisecond)

			// Metrics
			meterAttrs := append(append([]attribute.KeyValue(nil), attrs.fetch...), attrs.httpResponse...)
			meters.client.inFlight.Add(rootCtx, -1, otelMetric.WithAttributes(attrs.fetch...)) // same attributes/dimensions as above (+1)!
			meters.client.duration.Record(rootCtx, elapsedTime, otelMetric.WithAttributes(meterAttrs...))

			// Tracing
			rootSpan.SetAttributes(attrs.httpResponse...)
			rootSpan.SetAttributes(attrs.httpResponseExtra...)
			if err == nil {
				rootSpan.End()
			} else {
				rootSpan.RecordError(err)
				rootSpan.SetStatus(codes.Error, err.Error())
				rootSpan.End(otelTrace.WithStackTrace(true))
			}
		}

		// Handle response body
		{
			var bodySpan otelTrace.Span
			var bodyStart time.Time
			tc.RequestProcessed = func(res *http.Response, err error) {
				if err != nil {
					finish(err)
					return
				}
				bodyStart = time.Now()
				_, bodySpan = tracer.Start(
					rootCtx,
					clientResponseBodySpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(attrs.httpRequest...),
					otelTrace.WithAttributes(attrs.httpResponse...),
				)
			}
			tc.BodyClosed = func(readBytes int64, err error) {
				elapsedTime := float64(time.Since(bodyStart)) / float64(time.Millisecond)
				meterAttrs := append(append([]attribute.KeyValue(nil), attrs.fetch...), attrs.httpResponse...)
				meters.body.duration.Record(rootCtx, elapsedTime, otelMetric.WithAttributes(meterAttrs...))
				meters.body.size.Add(rootCtx, readBytes, otelMetric.WithAttributes(meterAttrs...))
				if bodySpan != nil {
					bodySpan.SetAttributes(attrReadBytes.Int64(readBytes))
					if err != nil {
						bodySpan.RecordError(err)
						bodySpan.SetStatus(codes.Error, err.Error())
					}
					bodySpan.End()
					bodySpan = nil
				}
				finish(err)
			}
		}

		// Handle HTTP requests
		var httpCtx context.Context
		var httpRequestSpan otelTrace.Span
		var sendSpan otelTrace.Span
		var receiveSpan otelTrace.Span
		{
			var httpRequestStart time.Time
			tc.HTTPRequestStart = func(req *http.Request) {
				// Create HTTP request span
				httpCtx, httpRequestSpan = tracer.Start(
					rootCtx,
					httpRequestSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(
						attrSpanKind.String(attrSpanKindValueClient),
						attrSpanType.String(attrSpanTypeValueHTTP),
					),
				)

				// Inject trace headers
				if cfg.propagators != nil {
					cfg.propagators.Inject(httpCtx, propagation.HeaderCarrier(req.Header))
				}

				// Attrs
				httpRequestStart = time.Now()
				attrs.SetFromRequest(req)
				httpRequestSpan.SetAttributes(attrResourceName.String(mustURLPathUnescape(req.URL.Path)))

				// Metrics
				meters.http.inFlight.Add(rootCtx, 1, otelMetric.WithAttributes(attrs.httpRequest...))

				// Tracing
				httpRequestSpan.SetAttributes(attrs.httpRequest...)
				httpRequestSpan.SetAttributes(attrs.httpRequestExtra...)
			}
			tc.GotFirstResponseByte = func() {
				_, receiveSpan = tracer.Start(
					httpCtx,
					httpReceiveSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
				)
			}
			tc.HTTPRequestDone = func(res *http.Response, err error) {
				elapsedTime := float64(time.Since(httpRequestStart)) / float64(time.Millisecond)
				attrs.SetFromResponse(res, err)

				// Metrics
				meters.http.inFlight.Add(
					rootCtx,
					-1,
					otelMetric.WithAttributes(attrs.httpRequest...), // same attributes/dimensions as in HTTPRequestStart!
				)
				meters.http.duration.Record(
					rootCtx,
					elapsedTime,
					otelMetric.WithAttributes(attrs.httpRequest...),
					otelMetric.WithAttributes(attrs.httpResponse...),
				)

				// Tracing
				if receiveSpan != nil {
					if err != nil {
						receiveSpan.RecordError(err)
						receiveSpan.SetStatus(codes.Error, err.Error())
					}
					receiveSpan.End()
					receiveSpan = nil
				}
				if httpRequestSpan != nil {
					httpRequestSpan.SetAttributes(attrs.httpResponse...)
					httpRequestSpan.SetAttributes(attrs.httpResponseExtra...)
					switch {
					case err != nil:
						httpRequestSpan.RecordError(err)
						httpRequestSpan.SetStatus(codes.Error, err.Error())
					case res != nil && res.StatusCode >= http.StatusBadRequest:
						httpErr := fmt.Errorf(`HTTP status code: %d %s`, res.StatusCode, http.StatusText(res.StatusCode))
						httpRequestSpan.RecordError(httpErr)
						httpRequestSpan.SetStatus(codes.Error, httpErr.Error())
					}
					httpRequestSpan.End()
					httpRequestSpan = nil
				}
			}
		}

		// Register low-level tracing.
		// "otelhttptrace" pkg from the opentelemetry-contrib module is buggy, does not end spans:
		// https://github.com/open-telemetry/opentelemetry-go-contrib/issues/399
		// httptrace: DNS
		{
			var dnsSpan otelTrace.Span
			tc.DNSStart = func(info httptrace.DNSStartInfo) {
				_, dnsSpan = tracer.Start(
					httpCtx,
					httpDNSSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(semconv.NetHostName(info.Host)),
				)
			}
			tc.DNSDone = func(info httptrace.DNSDoneInfo) {
				if dnsSpan != nil {
					var addrs []string
					for _, netAddr := range info.Addrs {
						addrs = append(addrs, netAddr.String())
					}
					dnsSpan.SetAttributes(attrDNSAddresses.String(strings.Join(addrs, ";")))
					if info.Err != nil {
						dnsSpan.RecordError(info.Err)
						dnsSpan.SetStatus(codes.Error, info.Err.Error())
					}
					dnsSpan.End()
					dnsSpan = nil
				}
			}
		}
		// httptrace: Get connection
		{
			var getConnSpan otelTrace.Span
			tc.GetConn = func(host string) {
				_, getConnSpan = tracer.Start(
					httpCtx,
					httpGetConnSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(semconv.NetHostName(host)),
				)
			}
			tc.GotConn = func(info httptrace.GotConnInfo) {
				if getConnSpan != nil {
					getConnSpan.SetAttributes(
						attrRemoteAddr.String(info.Conn.RemoteAddr().String()),
						attrLocalAddr.String(info.Conn.LocalAddr().String()),
						attrConnectionReused.Bool(info.Reused),
						attrConnectionWasIdle.Bool(info.WasIdle),
					)
					if info.WasIdle {
						getConnSpan.SetAttributes(attrConnectionIdleTime.String(info.IdleTime.String()))
					}
					getConnSpan.End()
					getConnSpan = nil
				}
			}
		}
		// httptrace: Connect
		{
			var connectSpan otelTrace.Span
			tc.ConnectStart = func(network, addr string) {
				_, connectSpan = tracer.Start(
					httpCtx,
					httpConnectSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					otelTrace.WithAttributes(
						attrRemoteAddr.String(addr),
						attrConnectionStartNetwork.String(network),
					),
				)
			}
			tc.ConnectDone = func(network, addr string, err error) {
				if connectSpan != nil {
					connectSpan.SetAttributes(
						attrConnectionDoneAddr.String(addr),
						attrConnectionDoneNetwork.String(network),
					)
					if err != nil {
						connectSpan.RecordError(err)
						connectSpan.SetStatus(codes.Error, err.Error())
					}
					connectSpan.End()
					connectSpan = nil
				}
			}
		}
		// httptrace: TLS handshake
		// Note: It is not reported if the http2.Transport is used directly, without upgrade from http.Transport.
		{
			var tlsSpan otelTrace.Span
			tc.TLSHandshakeStart = func() {
				_, tlsSpan = tracer.Start(
					httpCtx,
					httpTLSHandshakeSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
				)
			}
			tc.TLSHandshakeDone = func(_ tls.ConnectionState, err error) {
				if tlsSpan != nil {
					if err != nil {
						tlsSpan.RecordError(err)
						tlsSpan.SetStatus(codes.Error, err.Error())
					}
					tlsSpan.End()
					tlsSpan = nil
				}
			}
		}
		// httptrace: headers, send
		{
			var headersSpan otelTrace.Span
			tc.WroteHeaderField = func(_ string, _ []string) {
				// Start headers span at first header
				if headersSpan == nil {
					_, headersSpan = tracer.Start(
						httpCtx,
						httpHeadersSpanName,
						otelTrace.WithSpanKind(otelTrace.SpanKindClient),
					)
				}
			}
			tc.WroteHeaders = func() {
				// End headers span, if any
				if headersSpan != nil {
					headersSpan.End()
					headersSpan = nil
				}

				// Start send span
				_, sendSpan = tracer.Start(
					httpCtx,
					httpSendSpanName,
					otelTrace.WithSpanKind(otelTrace.SpanKindClient),
				)
			}
			tc.WroteRequest = func(info httptrace.WroteRequestInfo) {
				if sendSpan != nil {
					// End send span
					if info.Err != nil {
						sendSpan.RecordError(info.Err)
						sendSpan.SetStatus(codes.Error, info.Err.Error())
					}
					sendSpan.End()
					sendSpan = nil
				}
			}
		}

		return rootCtx, tc
	}
}
