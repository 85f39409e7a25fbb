package fetch

import (
	"errors"
	"fmt"
)

// ResponseError is returned for a response with a non-success status code.
type ResponseError struct {
	StatusCode int
	StatusText string
	URL        string
	// Body is the parsed response body, a decoded JSON value or a string.
	Body any
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (%s)", e.StatusText, e.URL)
}

// AsResponseError unwraps a ResponseError from the err, if any.
func AsResponseError(err error) (*ResponseError, bool) {
	var out *ResponseError
	if errors.As(err, &out) {
		return out, true
	}
	return nil, false
}
