package config

import "github.com/keboola/go-resource-fetch/pkg/client"

// defaults returns the default configuration values.
// These are loaded first and can be overridden by the YAML file and env vars.
func defaults() map[string]any {
	return map[string]any{
		"user_agent": client.DefaultUserAgent,
		"timeout":    "30s",
		"http2":      false,
		"trace":      "",
		"log.level":  "info",
		"log.format": "text",
	}
}
