package options_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/options"
)

func TestCompose_Precedence(t *testing.T) {
	t.Parallel()

	defaults := options.Options{Params: map[string]any{"a": 1, "b": 1}}
	resource := options.Options{Params: map[string]any{"b": 2, "c": 2}}
	call := options.Options{Params: map[string]any{"c": 3}}

	out, err := options.Compose(action.Create, defaults, resource, call)
	require.NoError(t, err)
	assert.Equal(t, options.Options{
		Method: http.MethodPost,
		Params: map[string]any{"a": 1, "b": 2, "c": 3},
	}, out)
}

func TestCompose_MethodPerKind(t *testing.T) {
	t.Parallel()

	for kind, method := range map[action.Kind]string{
		action.Load:           http.MethodGet,
		action.LoadCollection: http.MethodGet,
		action.Create:         http.MethodPost,
		action.Update:         http.MethodPut,
		action.Destroy:        http.MethodDelete,
	} {
		out, err := options.Compose(kind, options.Options{}, options.Options{}, options.Options{})
		require.NoError(t, err)
		assert.Equal(t, method, out.Method, kind.String())
	}
}

func TestCompose_MethodOverride(t *testing.T) {
	t.Parallel()

	out, err := options.Compose(action.Update, options.Options{}, options.Options{Method: http.MethodPatch}, options.Options{})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, out.Method)
}

func TestCompose_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := options.Compose(action.Kind("FOO"), options.Options{}, options.Options{}, options.Options{})
	assert.ErrorIs(t, err, action.ErrUnknownKind)
}

func TestMerge_Nested(t *testing.T) {
	t.Parallel()

	base := options.Options{
		Header: http.Header{"Accept": {"text/plain"}, "X-Foo": {"foo"}},
		Query:  url.Values{"tag": {"a"}, "page": {"1"}},
		Path:   map[string]string{"org": "acme", "team": "core"},
		Params: map[string]any{
			"paging": map[string]any{"limit": 10, "offset": 0},
			"fields": []any{"id"},
			"name":   "base",
		},
		Body: map[string]any{"user": map[string]any{"name": "Ann"}},
	}
	override := options.Options{
		Header: http.Header{"accept": {"application/json"}},
		Query:  url.Values{"tag": {"b"}},
		Path:   map[string]string{"team": "platform"},
		Params: map[string]any{
			"paging": map[string]any{"limit": 50},
			"fields": []any{"name"},
			"name":   "override",
		},
		Body: map[string]any{"user": map[string]any{"age": 42}},
	}

	out := options.Merge(base, override)
	assert.Equal(t, http.Header{"Accept": {"application/json"}, "X-Foo": {"foo"}}, out.Header)
	assert.Equal(t, url.Values{"tag": {"a", "b"}, "page": {"1"}}, out.Query)
	assert.Equal(t, map[string]string{"org": "acme", "team": "platform"}, out.Path)
	assert.Equal(t, map[string]any{
		"paging": map[string]any{"limit": 50, "offset": 0},
		"fields": []any{"id", "name"},
		"name":   "override",
	}, out.Params)
	assert.Equal(t, map[string]any{"user": map[string]any{"name": "Ann", "age": 42}}, out.Body)
}

func TestMerge_DoesNotModifyLayers(t *testing.T) {
	t.Parallel()

	nested := map[string]any{"limit": 10}
	fields := []any{"id"}
	defaults := options.Options{
		Header: http.Header{"Accept": {"text/plain"}},
		Query:  url.Values{"tag": {"a"}},
		Params: map[string]any{"paging": nested, "fields": fields},
	}

	out := options.Merge(defaults, options.Options{
		Query:  url.Values{"tag": {"b"}},
		Params: map[string]any{"paging": map[string]any{"limit": 20}, "fields": []any{"name"}},
	})

	// Modify the result
	out.Header.Set("Accept", "application/json")
	out.Query.Add("tag", "c")
	out.Params["paging"].(map[string]any)["offset"] = 5

	// Layers are untouched
	assert.Equal(t, http.Header{"Accept": {"text/plain"}}, defaults.Header)
	assert.Equal(t, url.Values{"tag": {"a"}}, defaults.Query)
	assert.Equal(t, map[string]any{"limit": 10}, nested)
	assert.Equal(t, []any{"id"}, fields)
}

func TestMerge_NonMapBody(t *testing.T) {
	t.Parallel()

	out := options.Merge(
		options.Options{Body: map[string]any{"foo": "bar"}},
		options.Options{Body: "raw"},
		options.Options{},
	)
	assert.Equal(t, "raw", out.Body)
}

func TestOptions_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, options.Options{}.IsEmpty())
	assert.True(t, options.Merge().IsEmpty())
	assert.False(t, options.Options{Params: map[string]any{"a": 1}}.IsEmpty())
}

func TestOptions_Clone(t *testing.T) {
	t.Parallel()

	o := options.Options{Method: http.MethodGet, Params: map[string]any{"a": map[string]any{"b": 1}}}
	clone := o.Clone()
	assert.Equal(t, o, clone)
	clone.Params["a"].(map[string]any)["b"] = 2
	assert.Equal(t, map[string]any{"b": 1}, o.Params["a"])
}
