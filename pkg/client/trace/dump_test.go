package trace_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/keboola/go-utils/pkg/wildcards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-resource-fetch/pkg/client"
	"github.com/keboola/go-resource-fetch/pkg/client/trace"
	"github.com/keboola/go-resource-fetch/pkg/options"
)

func TestDumpTracer(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com`, func(request *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("OK"))}, nil
	})

	// Logs for trace testing
	var logs strings.Builder

	// Create client
	ctx := context.Background()
	c := client.New().
		WithTransport(transport).
		WithHeader("Authorization", "Bearer my-secret-token").
		AndTrace(trace.DumpTracer(&logs))

	// Expected trace
	expected := `
>>>>>> HTTP DUMP
GET / HTTP/1.1
Host: example.com
User-Agent: keboola-go-resource-fetch
Accept-Encoding: gzip, deflate, br
Authorization: ****
------
HTTP/0.0 200 OK
Content-Length: 0
------
OK
<<<<<< HTTP DUMP END

>>>>>> HTTP BODY CLOSED |  GET / 200 | BYTES: 2 | ERROR: <nil> | HEADERS AT: %s | DONE AT: %s
`

	// Test
	res, err := c.Fetch(ctx, "https://example.com", options.Options{})
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
	require.NoError(t, res.Body.Close())
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
	assert.NotContains(t, logs.String(), "my-secret-token")
}

func TestDumpTracer_Error(t *testing.T) {
	t.Parallel()

	// Mocked response
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", `https://example.com/users`, httpmock.NewErrorResponder(io.ErrUnexpectedEOF))

	// Logs for trace testing
	var logs strings.Builder

	c := client.New().WithTransport(transport).AndTrace(trace.DumpTracer(&logs))

	// Expected trace
	expected := `
>>>>>> HTTP DUMP
GET /users HTTP/1.1
Host: example.com
User-Agent: keboola-go-resource-fetch
Accept-Encoding: gzip, deflate, br
------
ERROR:  unexpected EOF
<<<<<< HTTP DUMP END
`

	_, err := c.Fetch(context.Background(), "https://example.com/users", options.Options{})
	require.Error(t, err)
	wildcards.Assert(t, strings.TrimLeft(expected, "\n"), logs.String())
}
