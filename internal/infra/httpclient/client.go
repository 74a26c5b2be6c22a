package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/aalvaropc/docmapr/internal/domain"
)

type Config struct {
	// Total timeout for the entire request (includes redirects, reading body, etc).
	// A context deadline can still override this.
	Timeout time.Duration

	// Transport / dial timeouts.
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		DialTimeout:         5 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshake:        5 * time.Second,
		ResponseHeader:      10 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
	}
}

// ConfigFrom overlays the batch file's HTTP settings on DefaultConfig.
// Only Timeout reaches the transport: it replaces the client timeout and
// caps the dial, TLS and response-header timeouts. MaxBodyBytes, UserAgent
// and RequestsPerSecond are per-request concerns applied through Fetcher
// options (WithMaxBodyBytes, WithUserAgent, WithRateLimit).
func ConfigFrom(hc domain.HTTPConfig) Config {
	cfg := DefaultConfig()
	if hc.Timeout <= 0 {
		return cfg
	}
	cfg.Timeout = hc.Timeout
	cfg.DialTimeout = minDuration(cfg.DialTimeout, hc.Timeout)
	cfg.TLSHandshake = minDuration(cfg.TLSHandshake, hc.Timeout)
	cfg.ResponseHeader = minDuration(cfg.ResponseHeader, hc.Timeout)
	return cfg
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func New(cfg Config) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	tr := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		ForceAttemptHTTP2: true,

		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   cfg.Timeout,
	}
}
