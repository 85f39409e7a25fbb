package main

import (
	"context"
	jsonlib "encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/keboola/go-resource-fetch/pkg/action"
	"github.com/keboola/go-resource-fetch/pkg/client"
	"github.com/keboola/go-resource-fetch/pkg/client/trace"
	"github.com/keboola/go-resource-fetch/pkg/config"
	"github.com/keboola/go-resource-fetch/pkg/dispatch"
	"github.com/keboola/go-resource-fetch/pkg/fetch"
	"github.com/keboola/go-resource-fetch/pkg/logging"
	"github.com/keboola/go-resource-fetch/pkg/options"
	"github.com/keboola/go-resource-fetch/pkg/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type flags struct {
	configPath string
	kind       string
	method     string
	query      []string
	header     []string
	body       string
}

// newCommand creates the root command. The transport is replaced in tests, nil means the default transport.
func newCommand(stdout, stderr io.Writer, transport http.RoundTripper) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "fetch <resource> [id...]",
		Short: "Fetch resources defined in the configuration",
		Long: `Fetch resources defined in the configuration.

One request is dispatched for each id, all requests run concurrently.
Lifecycle notifications are printed as JSON lines, followed by the final state.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, args, stdout, stderr, transport)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to the YAML configuration file")
	cmd.Flags().StringVarP(&f.kind, "kind", "k", action.Load.String(), fmt.Sprintf("action kind, one of: %s", strings.Join(kindNames(), ", ")))
	cmd.Flags().StringVarP(&f.method, "method", "X", "", "HTTP method override")
	cmd.Flags().StringArrayVarP(&f.query, "query", "q", nil, "query parameter key=value, can be repeated")
	cmd.Flags().StringArrayVarP(&f.header, "header", "H", nil, "request header key=value, can be repeated")
	cmd.Flags().StringVarP(&f.body, "body", "d", "", "JSON request body")
	return cmd
}

func run(ctx context.Context, f *flags, args []string, stdout, stderr io.Writer, transport http.RoundTripper) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	ctx = logging.WithLogger(ctx, logger)

	kind, err := action.ParseKind(strings.ToUpper(f.kind))
	if err != nil {
		return err
	}

	callOpts, err := f.options()
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	defaultOpts, err := cfg.DefaultOptions()
	if err != nil {
		return err
	}

	c := newClient(cfg, transport, stderr)
	executor := fetch.NewExecutor(registry, c.Fetch, fetch.WithDefaultOpts(defaultOpts))

	// Print notifications as JSON lines
	s := store.NewRequests()
	out := &output{lock: &sync.Mutex{}, w: stdout}
	s.Subscribe(func(n dispatch.Notification, _ any) {
		out.write(notificationJSON(n))
	})

	d, err := dispatch.New(s, executor)
	if err != nil {
		return err
	}

	// Dispatch one request per id, or one request without id
	resourceName := args[0]
	var ids []any
	for _, id := range args[1:] {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		ids = append(ids, nil)
	}

	wg := dispatch.NewWaitGroup(ctx)
	for _, id := range ids {
		wg.Add(d.Dispatch(ctx, dispatch.Request{Resource: resourceName, ID: id, Opts: callOpts, Kind: kind}))
	}
	err = wg.Wait()

	out.write(stateJSON(s.State().(store.Requests)))

	if err != nil {
		logger.ErrorContext(ctx, "fetch failed", "error", err.Error())
	}
	return err
}

func newClient(cfg *config.Config, transport http.RoundTripper, stderr io.Writer) client.Client {
	if transport == nil {
		if cfg.HTTP2 {
			transport = client.HTTP2Transport(client.DefaultTimeouts())
		} else {
			transport = client.DefaultTransport()
		}
	}

	c := client.New().WithTransport(transport).WithUserAgent(cfg.UserAgent).WithTimeout(cfg.Timeout)
	if cfg.BaseURL != "" {
		c = c.WithBaseURL(cfg.BaseURL)
	}
	if cfg.Token != "" {
		c = c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	switch cfg.Trace {
	case "log":
		c = c.AndTrace(trace.LogTracer(stderr))
	case "dump":
		c = c.AndTrace(trace.DumpTracer(stderr))
	}
	return c
}

// options converts the command flags to the per-call fetch options.
func (f *flags) options() (options.Options, error) {
	out := options.Options{Method: strings.ToUpper(f.method)}

	for _, item := range f.query {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return out, fmt.Errorf(`query "%s" is not in the key=value format`, item)
		}
		if out.Query == nil {
			out.Query = make(url.Values)
		}
		out.Query.Add(k, v)
	}

	for _, item := range f.header {
		k, v, ok := strings.Cut(item, "=")
		if !ok {
			return out, fmt.Errorf(`header "%s" is not in the key=value format`, item)
		}
		if out.Header == nil {
			out.Header = make(http.Header)
		}
		out.Header.Add(k, v)
	}

	if f.body != "" {
		var body any
		if err := json.UnmarshalFromString(f.body, &body); err != nil {
			return out, fmt.Errorf("body is not a valid JSON: %w", err)
		}
		out.Body = body
	}

	return out, nil
}

type output struct {
	lock *sync.Mutex
	w    io.Writer
}

func (o *output) write(v any) {
	o.lock.Lock()
	defer o.lock.Unlock()
	// Standard json encoding library is used, the output of OrderedMap.MarshalJSON is compacted.
	bytes, err := jsonlib.Marshal(v)
	if err != nil {
		bytes = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	_, _ = fmt.Fprintln(o.w, string(bytes))
}

func notificationJSON(n dispatch.Notification) *orderedmap.OrderedMap {
	pairs := []orderedmap.Pair{
		{Key: "type", Value: n.Type.String()},
		{Key: "resource", Value: n.Resource},
	}
	if n.ID != nil {
		pairs = append(pairs, orderedmap.Pair{Key: "id", Value: n.ID})
	}
	if n.Pending == nil {
		if n.Err != nil {
			pairs = append(pairs, orderedmap.Pair{Key: "error", Value: n.Err.Error()})
		} else {
			pairs = append(pairs, orderedmap.Pair{Key: "data", Value: n.Data})
		}
	}
	return orderedmap.FromPairs(pairs)
}

func stateJSON(state store.Requests) *orderedmap.OrderedMap {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var requests []orderedmap.Pair
	for _, k := range keys {
		r := state[k]
		pairs := []orderedmap.Pair{
			{Key: "kind", Value: r.Kind.String()},
			{Key: "status", Value: string(r.Status)},
		}
		if r.Data != nil {
			pairs = append(pairs, orderedmap.Pair{Key: "data", Value: r.Data})
		}
		if msg := r.ErrorMessage(); msg != "" {
			pairs = append(pairs, orderedmap.Pair{Key: "error", Value: msg})
		}
		requests = append(requests, orderedmap.Pair{Key: k, Value: orderedmap.FromPairs(pairs)})
	}
	return orderedmap.FromPairs([]orderedmap.Pair{{Key: "state", Value: orderedmap.FromPairs(requests)}})
}

func kindNames() []string {
	var out []string
	for _, k := range action.Kinds() {
		out = append(out, k.String())
	}
	return out
}
