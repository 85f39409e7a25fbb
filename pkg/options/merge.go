package options

import (
	"net/http"
	"net/url"

	"github.com/knadh/koanf/maps"
)

// Merge deep merges layers, a later layer wins conflicts.
//
//   - Method: the last non-empty value.
//   - Header: per key, values from the later layer replace earlier ones.
//   - Query: values of the same key are concatenated.
//   - Path: per key, the later value.
//   - Params: nested maps are merged key by key, slices are concatenated, other values are replaced.
//   - Body: two map[string]any bodies are merged as Params, otherwise the last non-nil body.
//
// Layers are not modified, the result does not share maps or slices with them.
func Merge(layers ...Options) Options {
	out := Options{}
	for _, l := range layers {
		if l.Method != "" {
			out.Method = l.Method
		}
		if len(l.Header) > 0 {
			if out.Header == nil {
				out.Header = make(http.Header)
			}
			for k, values := range l.Header {
				out.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), values...)
			}
		}
		if len(l.Query) > 0 {
			if out.Query == nil {
				out.Query = make(url.Values)
			}
			for k, values := range l.Query {
				out.Query[k] = append(out.Query[k], values...)
			}
		}
		if len(l.Path) > 0 {
			if out.Path == nil {
				out.Path = make(map[string]string)
			}
			for k, v := range l.Path {
				out.Path[k] = v
			}
		}
		if len(l.Params) > 0 {
			if out.Params == nil {
				out.Params = make(map[string]any)
			}
			out.Params = mergeMaps(out.Params, l.Params)
		}
		if l.Body != nil {
			out.Body = mergeValues(out.Body, l.Body)
		}
	}
	return out
}

// mergeMaps returns a new map, src wins conflicts.
func mergeMaps(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if current, found := out[k]; found {
			out[k] = mergeValues(current, v)
		} else {
			out[k] = copyValue(v)
		}
	}
	return out
}

func mergeValues(dst, src any) any {
	switch s := src.(type) {
	case map[string]any:
		if d, ok := dst.(map[string]any); ok {
			return mergeMaps(d, s)
		}
	case []any:
		if d, ok := dst.([]any); ok {
			out := make([]any, 0, len(d)+len(s))
			out = append(out, d...)
			return append(out, copyValue(s).([]any)...)
		}
	}
	return copyValue(src)
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return maps.Copy(v)
	case []any:
		wrapped := maps.Copy(map[string]any{"v": v})
		return wrapped["v"]
	default:
		return v
	}
}
