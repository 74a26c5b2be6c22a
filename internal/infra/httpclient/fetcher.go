package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/aalvaropc/docmapr/internal/domain"
	"github.com/aalvaropc/docmapr/internal/ports"
)

const (
	defaultMaxBodyBytes = 4 << 20 // 4MB
	defaultUserAgent    = "docmapr"
	acceptJSON          = "application/json, application/ld+json;q=0.9, text/plain;q=0.5, */*;q=0.1"
)

// Fetcher is the net/http implementation of ports.Fetcher.
// It never retries: the first failure is returned as a *domain.FetchFailure.
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
	userAgent    string
	limiter      *rate.Limiter
	logger       *slog.Logger
}

type Option func(*Fetcher)

func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if strings.TrimSpace(ua) != "" {
			f.userAgent = ua
		}
	}
}

// WithRateLimit shares one token bucket between every call of the fetcher.
// rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(f *Fetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       New(DefaultConfig()),
		maxBodyBytes: defaultMaxBodyBytes,
		userAgent:    defaultUserAgent,
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ ports.Fetcher = (*Fetcher)(nil)

// Get fetches uri and decodes the body as JSON.
func (f *Fetcher) Get(ctx context.Context, uri string) (any, error) {
	resp, body, err := f.do(ctx, domain.MethodGet, uri)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &domain.FetchFailure{
			Kind:    domain.FetchDecode,
			Method:  domain.MethodGet,
			Message: fmt.Sprintf("response body is not valid JSON (content-type %q): %v", resp.Header.Get("Content-Type"), err),
		}
	}
	return doc, nil
}

// Head fetches uri headers. Names are lower-cased; repeated headers are joined with ", ".
func (f *Fetcher) Head(ctx context.Context, uri string) (map[string]string, error) {
	resp, _, err := f.do(ctx, domain.MethodHead, uri)
	if err != nil {
		return nil, err
	}
	return flattenHeaders(resp.Header), nil
}

func (f *Fetcher) do(ctx context.Context, method domain.HTTPMethod, uri string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, string(method), uri, nil)
	if err != nil {
		return nil, nil, &domain.FetchFailure{Kind: domain.FetchUnknown, Method: method, Message: err.Error()}
	}
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("User-Agent", f.userAgent)

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, nil, &domain.FetchFailure{Kind: domain.FetchTimeout, Method: method, Message: "rate limiter: " + err.Error()}
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	lat := time.Since(start)
	if err != nil {
		ff := classify(method, err)
		f.logger.Debug("http.fetch.failed", "method", method, "uri", uri, "kind", ff.Kind, "latency_ms", lat.Milliseconds(), "error", ff.Message)
		return nil, nil, ff
	}
	defer resp.Body.Close()

	f.logger.Debug("http.fetch", "method", method, "uri", uri, "status", resp.StatusCode, "latency_ms", lat.Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodyBytes))
		return nil, nil, &domain.FetchFailure{
			Kind:    domain.FetchHTTP,
			Method:  method,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("request failed with status code %d", resp.StatusCode),
		}
	}

	if method == domain.MethodHead {
		return resp, nil, nil
	}

	body, truncated, err := readBounded(resp.Body, f.maxBodyBytes)
	if err != nil {
		return nil, nil, classify(method, err)
	}
	if truncated {
		return nil, nil, &domain.FetchFailure{
			Kind:    domain.FetchDecode,
			Method:  method,
			Message: fmt.Sprintf("response body exceeds %d bytes", f.maxBodyBytes),
		}
	}
	return resp, body, nil
}

func classify(method domain.HTTPMethod, err error) *domain.FetchFailure {
	kind := domain.FetchUnknown

	var dnsErr *net.DNSError
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr):
		kind = domain.FetchDNS
	case errors.Is(err, context.DeadlineExceeded):
		kind = domain.FetchTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = domain.FetchTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		kind = domain.FetchConn
	case errors.As(err, &opErr):
		kind = domain.FetchConn
	}

	return &domain.FetchFailure{Kind: kind, Method: method, Message: err.Error()}
}

func readBounded(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	lim := io.LimitReader(r, maxBytes+1)
	b, err := io.ReadAll(lim)
	if err != nil {
		return nil, false, err
	}
	if int64(len(b)) > maxBytes {
		return b[:maxBytes], true, nil
	}
	return b, false, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return out
}
