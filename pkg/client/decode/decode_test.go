package decode_test

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-resource-fetch/pkg/client/decode"
)

func TestResponse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		encoding string
		encode   func(w io.Writer) io.WriteCloser
	}{
		{encoding: "gzip", encode: func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }},
		{encoding: "deflate", encode: func(w io.Writer) io.WriteCloser {
			v, err := flate.NewWriter(w, flate.DefaultCompression)
			if err != nil {
				panic(err)
			}
			return v
		}},
		{encoding: "br", encode: func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) }},
	}

	for _, tc := range cases {
		t.Run(tc.encoding, func(t *testing.T) {
			t.Parallel()

			var encoded bytes.Buffer
			w := tc.encode(&encoded)
			_, err := w.Write([]byte(`{"name":"Ann"}`))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			res := &http.Response{
				Header:        http.Header{"Content-Encoding": {strings.ToUpper(tc.encoding)}, "Content-Length": {"123"}},
				Body:          io.NopCloser(&encoded),
				ContentLength: 123,
			}
			require.NoError(t, decode.Response(res))

			body, err := io.ReadAll(res.Body)
			require.NoError(t, err)
			assert.NoError(t, res.Body.Close())
			assert.Equal(t, `{"name":"Ann"}`, string(body))
			assert.Empty(t, res.Header.Get("Content-Encoding"))
			assert.Empty(t, res.Header.Get("Content-Length"))
			assert.Equal(t, int64(-1), res.ContentLength)
			assert.True(t, res.Uncompressed)
		})
	}
}

func TestResponse_Identity(t *testing.T) {
	t.Parallel()

	body := io.NopCloser(strings.NewReader("plain"))
	res := &http.Response{Header: http.Header{"Content-Encoding": {"identity"}}, Body: body}
	require.NoError(t, decode.Response(res))
	assert.Equal(t, body, res.Body)
	assert.Equal(t, "identity", res.Header.Get("Content-Encoding"))
}

func TestDecode_InvalidGzip(t *testing.T) {
	t.Parallel()

	_, err := decode.Decode(io.NopCloser(strings.NewReader("not gzip")), "gzip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot decode gzip")
}
