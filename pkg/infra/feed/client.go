package feed

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yamori/gleaner/pkg/domain/interfaces"
	"github.com/yamori/gleaner/pkg/domain/types"
)

const defaultTimeout = 30 * time.Second

type client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures the feed client
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent to feed servers
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a feed fetcher backed by net/http
func NewClient(opts ...Option) interfaces.FeedFetcher {
	c := &client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "gleaner/" + types.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the feed at url and returns its raw body
func (c *client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build feed request", goerr.V("url", url))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch feed", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code from feed",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read feed body", goerr.V("url", url))
	}

	return body, nil
}
