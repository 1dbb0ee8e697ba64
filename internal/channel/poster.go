package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Poster sends a JSON body to a URL and reports the remote status code.
type Poster interface {
	PostJSON(ctx context.Context, url string, body any) (int, error)
}

// PosterConfig holds HTTP poster configuration.
type PosterConfig struct {
	Timeout   time.Duration
	Transport http.RoundTripper
	UserAgent string
}

// PosterOption modifies PosterConfig.
type PosterOption func(*PosterConfig)

// WithTimeout bounds each post. Zero means no timeout.
func WithTimeout(timeout time.Duration) PosterOption {
	return func(c *PosterConfig) {
		c.Timeout = timeout
	}
}

// WithTransport sets a custom transport.
func WithTransport(transport http.RoundTripper) PosterOption {
	return func(c *PosterConfig) {
		c.Transport = transport
	}
}

// WithUserAgent sets the User-Agent header sent with every post.
func WithUserAgent(ua string) PosterOption {
	return func(c *PosterConfig) {
		c.UserAgent = ua
	}
}

// HTTPPoster is the net/http implementation of Poster.
type HTTPPoster struct {
	client    *http.Client
	userAgent string
}

// NewHTTPPoster creates an HTTPPoster with the given options.
func NewHTTPPoster(opts ...PosterOption) *HTTPPoster {
	cfg := PosterConfig{Timeout: 30 * time.Second, UserAgent: "notifier"}
	for _, opt := range opts {
		opt(&cfg)
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(transport),
	}
	return &HTTPPoster{client: client, userAgent: cfg.UserAgent}
}

// PostJSON implements Poster.
func (p *HTTPPoster) PostJSON(ctx context.Context, url string, body any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encoding body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting to %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}
