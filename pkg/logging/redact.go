package logging

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders are lowercase names of headers redacted in logs and traces.
var SensitiveHeaders = []string{"authorization", "cookie", "set-cookie", "x-api-key", "x-storageapi-token"} //nolint:gochecknoglobals

var (
	bearerRegexp = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)                                   //nolint:gochecknoglobals
	jwtRegexp    = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`) //nolint:gochecknoglobals
)

// IsSensitiveHeader returns true if the header value must not be logged.
func IsSensitiveHeader(name string) bool {
	for _, v := range SensitiveHeaders {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}

func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(SensitiveHeaders)+5)
	for _, name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	opts = append(opts,
		masq.WithFieldName("token"),
		masq.WithFieldName("password"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(bearerRegexp),
		masq.WithRegex(jwtRegexp),
	)
	return masq.New(opts...)
}
