package urlbuild

import (
	jsonlib "encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"sort"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

// ToQuery converts a JSON like map to query values, any scalar type is mapped to string.
// Slices are mapped to repeated values, maps of strings to "key[subKey]" parameters.
// A value which cannot be mapped, for example a map nested in a map, is an error.
func ToQuery(in map[string]any) (url.Values, error) {
	out := make(url.Values)
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := in[k]
		if v == nil {
			continue
		}
		ty := reflect.TypeOf(v)
		switch {
		case ty.Kind() == reflect.Slice:
			items := reflect.ValueOf(v)
			for i := range items.Len() {
				str, err := castToString(items.Index(i).Interface())
				if err != nil {
					return nil, fmt.Errorf(`query parameter "%s": %w`, k, err)
				}
				out.Add(k, str)
			}
		case ty.Kind() == reflect.Map && ty.Key().Kind() == reflect.String:
			items := reflect.ValueOf(v)
			for _, key := range items.MapKeys() {
				name := fmt.Sprintf("%s[%s]", k, key.String())
				str, err := castToString(items.MapIndex(key).Interface())
				if err != nil {
					return nil, fmt.Errorf(`query parameter "%s": %w`, name, err)
				}
				out.Add(name, str)
			}
		default:
			str, err := castToString(v)
			if err != nil {
				return nil, fmt.Errorf(`query parameter "%s": %w`, k, err)
			}
			out.Add(k, str)
		}
	}
	return out, nil
}

func castToString(v any) (string, error) {
	// Ordered map
	if orderedMap, ok := v.(*orderedmap.OrderedMap); ok {
		// Standard json encoding library is used.
		// JsonIter lib returns non-compact JSON,
		// if custom OrderedMap.MarshalJSON method is used.
		bytes, err := jsonlib.Marshal(orderedMap)
		if err != nil {
			return "", fmt.Errorf(`cannot encode %T: %w`, v, err)
		}
		return string(bytes), nil
	}

	// Other types
	str, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf(`cannot cast %T to string`, v)
	}
	return str, nil
}
