// Package transport builds the shared HTTP client used for provider
// streaming requests. Timeouts are tuned for long-lived SSE and JSON
// array responses rather than short request/response cycles.
package transport

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Config shapes the shared HTTP transport. Zero values fall back to the
// defaults from DefaultConfig.
type Config struct {
	// DialTimeout bounds TCP connection establishment.
	DialTimeout time.Duration
	// ResponseHeaderTimeout bounds the wait for response headers. Streaming
	// bodies are unbounded here; idle detection covers stalled streams.
	ResponseHeaderTimeout time.Duration
	// IdleConnTimeout controls how long idle connections stay pooled.
	IdleConnTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// ReadIdleTimeout sends an HTTP/2 ping when no frames arrive for this
	// long, so half-dead connections are detected mid-stream.
	ReadIdleTimeout time.Duration
	// PingTimeout is how long to wait for the ping response before the
	// connection is torn down.
	PingTimeout time.Duration

	// DisableCompression keeps Accept-Encoding under our control so the
	// response body can be unwrapped explicitly.
	DisableCompression bool
}

// DefaultConfig returns settings tuned for streaming LLM responses:
// generous header timeout for large prompts, HTTP/2 pings to catch
// stalled connections, and explicit content-encoding handling.
func DefaultConfig() Config {
	return Config{
		DialTimeout:           30 * time.Second,
		ResponseHeaderTimeout: 600 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ReadIdleTimeout:       30 * time.Second,
		PingTimeout:           15 * time.Second,
		DisableCompression:    true,
	}
}

// NewTransport builds an *http.Transport from cfg and upgrades it for
// HTTP/2 with keepalive pings enabled.
func NewTransport(cfg Config) (*http.Transport, error) {
	def := DefaultConfig()
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.ResponseHeaderTimeout <= 0 {
		cfg.ResponseHeaderTimeout = def.ResponseHeaderTimeout
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = def.IdleConnTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = def.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if cfg.ReadIdleTimeout <= 0 {
		cfg.ReadIdleTimeout = def.ReadIdleTimeout
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = def.PingTimeout
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		DisableCompression:    cfg.DisableCompression,
	}

	h2, err := http2.ConfigureTransports(tr)
	if err != nil {
		return nil, fmt.Errorf("transport: configure http2: %w", err)
	}
	h2.ReadIdleTimeout = cfg.ReadIdleTimeout
	h2.PingTimeout = cfg.PingTimeout

	return tr, nil
}

// NewClient wraps NewTransport in an *http.Client with no overall timeout.
// Streaming requests are bounded by their context and by idle detection,
// not by a wall-clock deadline that would kill slow-but-healthy streams.
func NewClient(cfg Config) (*http.Client, error) {
	tr, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: tr}, nil
}
