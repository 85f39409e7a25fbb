package client

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Timeouts of the transport layer. The total request timeout is set by Client.WithTimeout.
type Timeouts struct {
	// Dial specifies maximum connection initialization time.
	Dial time.Duration
	// KeepAlive specifies interval between keep-alive probes.
	KeepAlive time.Duration
	// TLSHandshake specifies timeout of TLS handshake.
	TLSHandshake time.Duration
	// ResponseHeader specifies amount of time to wait for a server's response headers.
	ResponseHeader time.Duration
	// HTTP2Ping specifies the health check interval and timeout of an idle HTTP2 connection.
	HTTP2Ping time.Duration
}

// DefaultTimeouts returns reasonable transport timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Dial:           3 * time.Second,
		KeepAlive:      10 * time.Second,
		TLSHandshake:   5 * time.Second,
		ResponseHeader: 20 * time.Second,
		HTTP2Ping:      3 * time.Second,
	}
}

// DefaultTransport with default timeouts, HTTP2 is preferred.
func DefaultTransport() http.RoundTripper {
	return NewTransport(DefaultTimeouts())
}

// NewTransport with timeouts, HTTP2 is preferred.
// The number of connections is not limited, rate limiting is up to the caller.
func NewTransport(t Timeouts) http.RoundTripper {
	dialer := Dialer(t)
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   t.TLSHandshake,
		ResponseHeaderTimeout: t.ResponseHeader,
	}
}

// HTTP2Transport forces HTTP2 protocol.
func HTTP2Transport(t Timeouts) http.RoundTripper {
	dialer := Dialer(t)
	return &http2.Transport{
		DialTLS: func(network, addr string, cfg *tls.Config) (net.Conn, error) {
			return tls.DialWithDialer(dialer, network, addr, cfg)
		},
		ReadIdleTimeout:  t.HTTP2Ping,
		PingTimeout:      t.HTTP2Ping,
		WriteByteTimeout: t.HTTP2Ping,
	}
}

func Dialer(t Timeouts) *net.Dialer {
	return &net.Dialer{
		Timeout:   t.Dial,
		KeepAlive: t.KeepAlive,
	}
}
