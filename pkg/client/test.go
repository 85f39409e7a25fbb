package client

import (
	"context"
	"net/http"
	"os"

	"github.com/jarcoal/httpmock"

	"github.com/keboola/go-resource-fetch/pkg/client/trace"
)

var testTransport = DefaultTransport() //nolint:gochecknoglobals

// NewTestClient creates the Client for tests.
//
// If the TEST_HTTP_CLIENT_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
func NewTestClient() Client {
	return New().
		WithTransport(testTransport).
		AndTrace(func(ctx context.Context, req *http.Request) (context.Context, *trace.ClientTrace) {
			if os.Getenv("TEST_HTTP_CLIENT_VERBOSE") == "true" { //nolint:forbidigo
				return trace.DumpTracer(os.Stdout)(ctx, req)
			}
			return ctx, nil
		})
}

// NewMockedClient creates the Client with mocked HTTP transport.
func NewMockedClient() (Client, *httpmock.MockTransport) {
	mockTransport := httpmock.NewMockTransport()
	return NewTestClient().WithTransport(mockTransport), mockTransport
}
