package trace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"strings"
	"time"

	"github.com/keboola/go-resource-fetch/pkg/client/decode"
	"github.com/keboola/go-resource-fetch/pkg/logging"
)

const dumpTraceMaxLength = 2000

type dumpTrace struct {
	ClientTrace
	wr io.Writer
}

// DumpTracer dumps HTTP request and response to a writer.
// Values of sensitive headers are masked, the body is dumped as it is, do not use it in production!
func DumpTracer(wr io.Writer) Factory {
	return func(ctx context.Context, _ *http.Request) (context.Context, *ClientTrace) {
		var requestMethod, requestURI string
		var responseStatusCode int
		var requestDump []byte
		var responseErr error
		var startTime, headersTime time.Time

		t := &dumpTrace{wr: wr}
		t.HTTPRequestStart = func(r *http.Request) {
			startTime = time.Now()
			requestMethod = r.Method
			requestURI = r.URL.RequestURI()
			requestDump, _ = httputil.DumpRequestOut(maskRequest(r), true)
		}
		t.HTTPRequestDone = func(r *http.Response, err error) {
			// Response can be nil, for example, if some network error occurred
			if r != nil {
				responseStatusCode = r.StatusCode
				responseErr = err
				headersTime = time.Now()
			}
			if err != nil {
				responseErr = err
			}

			// Dump request
			t.log()
			t.log(">>>>>> HTTP DUMP")
			t.dump(string(requestDump))

			// Dump response
			t.log("------")
			if err != nil {
				t.log("ERROR: ", err)
			} else {
				// Dump response headers
				if v, err := httputil.DumpResponse(maskResponse(r), false); err == nil {
					t.log(strings.TrimSpace(string(v)))
				} else {
					t.log("cannot dump response headers: ", err)
				}
				// Dump response body
				if r.Body != nil {
					// Decode body and copy raw body to rawBody buffer
					var rawBody bytes.Buffer
					var decodedBody strings.Builder
					bodyReader, err := decode.Decode(io.NopCloser(io.TeeReader(r.Body, &rawBody)), r.Header.Get("Content-Encoding"))
					if err != nil {
						t.log("cannot read response body: ", err)
					}
					if _, err := io.Copy(&decodedBody, bodyReader); err != nil {
						t.log("cannot read response body: ", err)
					}
					// Set buffered raw body back to the response
					r.Body = io.NopCloser(bytes.NewReader(rawBody.Bytes()))
					// Dump decoded response
					t.log("------")
					t.dump(decodedBody.String())
				}
			}
			t.log("<<<<<< HTTP DUMP END")
		}
		t.BodyClosed = func(readBytes int64, err error) {
			t.log()
			t.log(">>>>>> HTTP BODY CLOSED", "| ", requestMethod, requestURI, responseStatusCode, "| BYTES:", readBytes, "| ERROR:", errors.Join(responseErr, err), "| HEADERS AT:", headersTime.Sub(startTime), "| DONE AT:", time.Since(startTime))
		}
		return ctx, &t.ClientTrace
	}
}

func (t *dumpTrace) dump(body string) {
	body = strings.TrimSpace(body)
	if len(body) > dumpTraceMaxLength && os.Getenv("HTTP_DUMP_TRACE_FULL") != "true" { //nolint:forbidigo
		t.log(body[:dumpTraceMaxLength])
		t.log("... (set env HTTP_DUMP_TRACE_FULL=true to see full output)")
	} else {
		t.log(body)
	}
}

// maskRequest returns a shallow copy of the request with masked sensitive headers.
func maskRequest(r *http.Request) *http.Request {
	out := r.Clone(r.Context())
	out.Header = maskHeader(r.Header)
	// DumpRequestOut consumes the body, so a fresh copy is used, the original body is kept for the real request
	out.Body = nil
	if r.GetBody != nil {
		if body, err := r.GetBody(); err == nil {
			out.Body = body
		}
	}
	return out
}

func maskResponse(r *http.Response) *http.Response {
	out := *r
	out.Header = maskHeader(r.Header)
	return &out
}

func maskHeader(in http.Header) http.Header {
	out := in.Clone()
	for k := range out {
		if logging.IsSensitiveHeader(k) {
			out.Set(k, "****")
		}
	}
	return out
}

func (t *dumpTrace) log(a ...any) {
	_, _ = fmt.Fprintln(t.wr, a...)
}
