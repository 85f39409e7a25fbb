package resource

import (
	"fmt"
	"strings"
)

// JSONPath returns a TransformFunc which picks a nested field from a decoded JSON body.
// The path is dot separated, for example "data.items". An empty path returns the body unchanged.
func JSONPath(path string) TransformFunc {
	return func(raw any, _ TransformContext) (any, error) {
		if path == "" {
			return raw, nil
		}
		current := raw
		for _, key := range strings.Split(path, ".") {
			object, ok := current.(map[string]any)
			if !ok {
				return nil, fmt.Errorf(`cannot pick "%s" from %T, path "%s"`, key, current, path)
			}
			if current, ok = object[key]; !ok {
				return nil, fmt.Errorf(`key "%s" not found, path "%s"`, key, path)
			}
		}
		return current, nil
	}
}
