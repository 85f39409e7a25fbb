package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/fetch"
	"github.com/keboola/go-resource-fetch/pkg/options"
	"github.com/keboola/go-resource-fetch/pkg/resource"
	"github.com/keboola/go-resource-fetch/pkg/urlbuild"
)

type fetchCall struct {
	URL  string
	Opts options.Options
}

// mockedFetch returns a BaseFetch which responds with a fixed response and records calls.
func mockedFetch(status int, contentType, body string) (fetch.BaseFetch, *[]fetchCall) {
	var calls []fetchCall
	return func(ctx context.Context, rawURL string, opts options.Options) (*http.Response, error) {
		calls = append(calls, fetchCall{URL: rawURL, Opts: opts})
		res, _ := newResponse(status, contentType, body, rawURL)
		return res, nil
	}, &calls
}

func usersRegistry() *resource.Registry {
	return resource.NewRegistry().
		MustRegister("users", resource.Static("/users/{id}", options.Options{}))
}

func TestExecutor_Load(t *testing.T) {
	t.Parallel()

	baseFetch, calls := mockedFetch(http.StatusOK, "application/json", `{"name":"Ann"}`)
	executor := fetch.NewExecutor(usersRegistry(), baseFetch)

	data, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", ID: 42, Kind: action.Load})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Ann"}, data)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/users/42", (*calls)[0].URL)
	assert.Equal(t, http.MethodGet, (*calls)[0].Opts.Method)
}

func TestExecutor_NotFound(t *testing.T) {
	t.Parallel()

	baseFetch, _ := mockedFetch(http.StatusNotFound, "application/json", `{"error":"missing"}`)
	executor := fetch.NewExecutor(usersRegistry(), baseFetch)

	data, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", ID: 42, Kind: action.Load})
	assert.Nil(t, data)
	require.Error(t, err)
	assert.Equal(t, "Not Found (/users/42)", err.Error())

	responseErr, ok := fetch.AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, responseErr.StatusCode)
	assert.Equal(t, map[string]any{"error": "missing"}, responseErr.Body)
}

func TestExecutor_NotFound_ResponseWithoutRequest(t *testing.T) {
	t.Parallel()

	baseFetch := func(ctx context.Context, rawURL string, opts options.Options) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Status: "404 Not Found", Header: make(http.Header)}, nil
	}
	executor := fetch.NewExecutor(usersRegistry(), baseFetch)

	_, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", ID: 42, Kind: action.Load})
	require.Error(t, err)
	assert.Equal(t, "Not Found (/users/42)", err.Error())

	responseErr, ok := fetch.AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, "/users/42", responseErr.URL)
	assert.Equal(t, "", responseErr.Body)
}

func TestExecutor_MethodByKind(t *testing.T) {
	t.Parallel()

	cases := map[action.Kind]string{
		action.Load:           http.MethodGet,
		action.LoadCollection: http.MethodGet,
		action.Create:         http.MethodPost,
		action.Update:         http.MethodPut,
		action.Destroy:        http.MethodDelete,
	}

	for kind, method := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()
			baseFetch, calls := mockedFetch(http.StatusOK, "text/plain", "ok")
			executor := fetch.NewExecutor(resource.NewRegistry().MustRegister("users", resource.Static("/users", options.Options{})), baseFetch)
			data, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", Kind: kind})
			require.NoError(t, err)
			assert.Equal(t, "ok", data)
			require.Len(t, *calls, 1)
			assert.Equal(t, method, (*calls)[0].Opts.Method)
		})
	}
}

func TestExecutor_OptionsPrecedence(t *testing.T) {
	t.Parallel()

	registry := resource.NewRegistry().MustRegister("users", resource.Static("/users", options.Options{
		Header: http.Header{"X-B": {"resource"}, "X-C": {"resource"}},
		Query:  url.Values{"page": {"1"}},
	}))
	baseFetch, calls := mockedFetch(http.StatusCreated, "application/json", `{"id":1}`)
	executor := fetch.NewExecutor(registry, baseFetch, fetch.WithDefaultOpts(options.Options{
		Header: http.Header{"X-A": {"default"}, "X-B": {"default"}},
	}))

	_, err := executor.Execute(context.Background(), fetch.Request{
		Resource: "users",
		Kind:     action.Create,
		Opts: options.Options{
			Header: http.Header{"X-C": {"call"}},
			Body:   map[string]any{"name": "Bob"},
		},
	})
	require.NoError(t, err)
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, "/users?page=1", call.URL)
	assert.Equal(t, http.MethodPost, call.Opts.Method)
	assert.Equal(t, "default", call.Opts.Header.Get("X-A"))
	assert.Equal(t, "resource", call.Opts.Header.Get("X-B"))
	assert.Equal(t, "call", call.Opts.Header.Get("X-C"))
	assert.Equal(t, map[string]any{"name": "Bob"}, call.Opts.Body)
}

func TestExecutor_MethodOverride(t *testing.T) {
	t.Parallel()

	baseFetch, calls := mockedFetch(http.StatusOK, "", "")
	executor := fetch.NewExecutor(usersRegistry(), baseFetch)
	_, err := executor.Execute(context.Background(), fetch.Request{
		Resource: "users",
		ID:       "7",
		Kind:     action.Update,
		Opts:     options.Options{Method: http.MethodPatch},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, (*calls)[0].Opts.Method)
}

func TestExecutor_Transform(t *testing.T) {
	t.Parallel()

	var transformContext resource.TransformContext
	registry := resource.NewRegistry().MustRegister("users", resource.Static("/users/{id}", options.Options{}).
		WithTransform(func(raw any, c resource.TransformContext) (any, error) {
			transformContext = c
			return raw.(map[string]any)["name"], nil
		}))
	baseFetch, _ := mockedFetch(http.StatusOK, "application/json", `{"name":"Ann"}`)
	executor := fetch.NewExecutor(registry, baseFetch)

	callOpts := options.Options{Params: map[string]any{"expand": true}}
	data, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", ID: 42, Kind: action.Load, Opts: callOpts})
	require.NoError(t, err)
	assert.Equal(t, "Ann", data)
	assert.Equal(t, resource.TransformContext{ID: 42, Opts: callOpts, Kind: action.Load}, transformContext)
}

func TestExecutor_TransformError(t *testing.T) {
	t.Parallel()

	registry := resource.NewRegistry().MustRegister("users", resource.Static("/users", options.Options{}).
		WithTransform(resource.JSONPath("data")))
	baseFetch, _ := mockedFetch(http.StatusOK, "application/json", `{"items":[]}`)
	executor := fetch.NewExecutor(registry, baseFetch)

	_, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", Kind: action.LoadCollection})
	assert.EqualError(t, err, `key "data" not found, path "data"`)
}

func TestExecutor_StateIsPassedToDescriptor(t *testing.T) {
	t.Parallel()

	registry := resource.NewRegistry().MustRegister("posts", resource.Descriptor{
		Fetch: func(id any, kind action.Kind, state resource.State) (resource.Target, error) {
			userID := state.(map[string]any)["currentUser"]
			return resource.Target{
				URL:  "/users/{user}/posts/{id}",
				Opts: options.Options{Path: map[string]string{"user": fmt.Sprint(userID)}},
			}, nil
		},
	})
	baseFetch, calls := mockedFetch(http.StatusOK, "", "")
	executor := fetch.NewExecutor(registry, baseFetch)

	_, err := executor.Execute(context.Background(), fetch.Request{
		Resource: "posts",
		ID:       3,
		Kind:     action.Load,
		State:    map[string]any{"currentUser": 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "/users/5/posts/3", (*calls)[0].URL)
}

func TestExecutor_URLBuilder(t *testing.T) {
	t.Parallel()

	baseFetch, calls := mockedFetch(http.StatusOK, "", "")
	executor := fetch.NewExecutor(usersRegistry(), baseFetch, fetch.WithURLBuilder(func(target urlbuild.Target) (string, error) {
		path, err := urlbuild.Build(target)
		return "https://api.example.com" + path, err
	}))

	_, err := executor.Execute(context.Background(), fetch.Request{Resource: "users", ID: 1, Kind: action.Load})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/users/1", (*calls)[0].URL)
}

func TestExecutor_Errors(t *testing.T) {
	t.Parallel()

	networkErr := errors.New("connection refused")
	registry := usersRegistry().MustRegister("broken", resource.Descriptor{
		Fetch: func(id any, kind action.Kind, state resource.State) (resource.Target, error) {
			return resource.Target{}, errors.New("no target")
		},
	})
	failingFetch := func(ctx context.Context, url string, opts options.Options) (*http.Response, error) {
		return nil, networkErr
	}
	executor := fetch.NewExecutor(registry, failingFetch)
	ctx := context.Background()

	// Unknown resource
	_, err := executor.Execute(ctx, fetch.Request{Resource: "missing", Kind: action.Load})
	assert.ErrorIs(t, err, resource.ErrUnknownResource)

	// Unknown kind
	_, err = executor.Execute(ctx, fetch.Request{Resource: "users", ID: 1, Kind: "patch"})
	assert.ErrorIs(t, err, action.ErrUnknownKind)

	// Descriptor error
	_, err = executor.Execute(ctx, fetch.Request{Resource: "broken", Kind: action.Load})
	assert.EqualError(t, err, `resource "broken": cannot get target: no target`)

	// Missing path value
	_, err = executor.Execute(ctx, fetch.Request{Resource: "users", Kind: action.Load})
	assert.EqualError(t, err, `resource "users": cannot build url: url "/users/{id}": missing path value "id"`)

	// Network error is not wrapped
	_, err = executor.Execute(ctx, fetch.Request{Resource: "users", ID: 1, Kind: action.Load})
	assert.Same(t, networkErr, err)
}

func TestNewExecutor_Panics(t *testing.T) {
	t.Parallel()

	baseFetch, _ := mockedFetch(http.StatusOK, "", "")
	assert.Panics(t, func() { fetch.NewExecutor(nil, baseFetch) })
	assert.Panics(t, func() { fetch.NewExecutor(resource.NewRegistry(), nil) })
}
