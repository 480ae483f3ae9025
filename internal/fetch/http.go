package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Fetcher retrieves the full content behind a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var _ Fetcher = (*HTTPFetcher)(nil)

const (
	// DefaultMaxBodySize limits a single template file (8 MB)
	DefaultMaxBodySize int64 = 8 << 20
	// DefaultTimeout bounds one request including the body read
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "woolball-cli"
)

// HTTPFetcher fetches template files over HTTP(S). Redirects are followed by
// the client; anything other than a 2xx final response is a failure. There
// is no retry.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *zap.Logger
}

// Option configures HTTPFetcher
type Option func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client. If c is nil the default client is kept.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPFetcher) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the client timeout
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPFetcher) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(h *HTTPFetcher) {
		if ua != "" {
			h.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the accepted response size; n <= 0 keeps the default
func WithMaxBodySize(n int64) Option {
	return func(h *HTTPFetcher) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *zap.Logger) Option {
	return func(h *HTTPFetcher) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	h := &HTTPFetcher{
		client:      &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CloseIdleConnections closes keep-alive connections left by earlier fetches
func (h *HTTPFetcher) CloseIdleConnections() {
	h.client.CloseIdleConnections()
}

// Fetch downloads url and returns the whole body once the transport
// reports end of stream. Every failure is a *NetworkError.
func (h *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)}
	}

	// Read one byte past the limit so oversized bodies fail instead of truncating
	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > h.maxBodySize {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, h.maxBodySize)}
	}

	h.logger.Debug("fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}
