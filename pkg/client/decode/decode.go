// Package decode provides transparent decoding of a compressed HTTP response body.
package decode

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// AcceptEncoding is the value of the Accept-Encoding header sent by the client.
const AcceptEncoding = "gzip, deflate, br"

// Decode wraps the body by a decoder for the content encoding.
// An unknown or empty encoding returns the body unchanged.
func Decode(body io.ReadCloser, contentEncoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		v, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("cannot decode gzip: %w", err)
		}
		return readCloser{Reader: v, closers: []io.Closer{v, body}}, nil
	case "deflate":
		v := flate.NewReader(body)
		return readCloser{Reader: v, closers: []io.Closer{v, body}}, nil
	case "br":
		return readCloser{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	default:
		return body, nil
	}
}

// Response replaces the response body by the decoded body.
// Content-Encoding and Content-Length headers are removed, as they describe the encoded body.
func Response(res *http.Response) error {
	contentEncoding := res.Header.Get("Content-Encoding")
	if contentEncoding == "" || res.Body == nil || res.Body == http.NoBody {
		return nil
	}

	body, err := Decode(res.Body, contentEncoding)
	if err != nil {
		return err
	}
	if body == res.Body {
		return nil
	}

	res.Body = body
	res.Header.Del("Content-Encoding")
	res.Header.Del("Content-Length")
	res.ContentLength = -1
	res.Uncompressed = true
	return nil
}

// readCloser closes the decoder and the underlying body.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (v readCloser) Close() error {
	var firstErr error
	for _, c := range v.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
