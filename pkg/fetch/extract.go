package fetch

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ContentTypeApplicationJSON prefix selects the JSON decoding of a response body.
// Only the exact prefix is matched, "application/vnd.api+json" is read as a text.
const ContentTypeApplicationJSON = "application/json"

// json - replacement of the standard encoding/json library, it is faster for larger responses.
var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

// Extract reads and closes the response body.
//
// The body is decoded as JSON if the Content-Type header starts with "application/json",
// otherwise it is returned as a string. A missing header means a string.
// For a status code outside 200-299, the parsed body is returned in the ResponseError.
func Extract(res *http.Response) (any, error) {
	if res.Body == nil {
		res.Body = http.NoBody
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf(`cannot read response body: %w`, err)
	}

	var body any
	if isJSONContentType(res.Header.Get("Content-Type")) {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			return nil, fmt.Errorf(`cannot decode JSON body: %w`, err)
		}
	} else {
		body = string(bodyBytes)
	}

	if res.StatusCode > 199 && res.StatusCode < 300 {
		return body, nil
	}

	return nil, &ResponseError{
		StatusCode: res.StatusCode,
		StatusText: statusText(res),
		URL:        responseURL(res),
		Body:       body,
	}
}

func isJSONContentType(contentType string) bool {
	return strings.HasPrefix(contentType, ContentTypeApplicationJSON)
}

// statusText returns the reason phrase from the status line, for example "Not Found" from "404 Not Found".
func statusText(res *http.Response) string {
	if _, text, ok := strings.Cut(res.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(res.StatusCode)
}

func responseURL(res *http.Response) string {
	if res.Request != nil && res.Request.URL != nil {
		return res.Request.URL.String()
	}
	return ""
}
