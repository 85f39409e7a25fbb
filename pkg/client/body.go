package client

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

const ContentTypeApplicationJSON = "application/json"

// json - replacement of the standard encoding/json library, it is faster for larger bodies.
var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// setRequestBody sets the body and the GetBody factory, it is used when a redirect requires reading the body more than once.
// A value that is not a string, []byte or io.Reader is encoded to JSON,
// and the Content-Type header is set, if it is not already present.
func setRequestBody(req *http.Request, body any) error {
	var content []byte
	switch v := body.(type) {
	case nil:
		return nil
	case string:
		content = []byte(v)
	case []byte:
		content = v
	case io.ReadSeeker:
		// Stream, rewind before each read
		req.GetBody = func() (io.ReadCloser, error) {
			if _, err := v.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return io.NopCloser(v), nil
		}
		return initBody(req)
	case io.Reader:
		// Stream, it can be read only once
		req.Body = io.NopCloser(v)
		return nil
	default:
		var err error
		content, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf(`cannot encode JSON body: %w`, err)
		}
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", ContentTypeApplicationJSON)
		}
	}

	req.ContentLength = int64(len(content))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}
	return initBody(req)
}

func initBody(req *http.Request) (err error) {
	req.Body, err = req.GetBody()
	return err
}
