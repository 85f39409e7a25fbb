// Package config loads the configuration of the fetch command.
// Configuration is layered: defaults -> YAML file -> environment variables with the FETCH_ prefix.
package config

import "time"

// Config of the fetch command.
type Config struct {
	// BaseURL is used to resolve relative resource URLs.
	BaseURL   string        `koanf:"base_url"`
	UserAgent string        `koanf:"user_agent"`
	Timeout   time.Duration `koanf:"timeout"`
	// Token is sent as a bearer token in the Authorization header, if set.
	Token string `koanf:"token"`
	// HTTP2 forces the HTTP2 transport.
	HTTP2 bool `koanf:"http2"`
	// Trace is one of: "", "log", "dump".
	Trace     string                    `koanf:"trace"`
	Log       LogConfig                 `koanf:"log"`
	Defaults  OptionsConfig             `koanf:"defaults"`
	Resources map[string]ResourceConfig `koanf:"resources"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OptionsConfig is a serializable form of options.Options.
type OptionsConfig struct {
	Method string            `koanf:"method"`
	Header map[string]string `koanf:"header"`
	Query  map[string]any    `koanf:"query"`
	Path   map[string]string `koanf:"path"`
	Body   any               `koanf:"body"`
	Params map[string]any    `koanf:"params"`
}

// ResourceConfig defines a resource with a static URL template.
type ResourceConfig struct {
	// URL template, for example "/users/{id}".
	URL string `koanf:"url"`
	// DataPath picks a nested field from the JSON response, for example "data.items".
	DataPath string        `koanf:"data_path"`
	Opts     OptionsConfig `koanf:"opts"`
}
