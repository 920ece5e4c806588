// Package httpclient provides the shared outbound HTTP client for source
// fetchers and the registry lookup.
package httpclient

import (
	"context"
	"net/http"
	"time"
)

const maxRedirects = 5

// Funding sources block obviously non-browser clients, so requests carry a
// conventional browser identity.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	// Accept-Encoding is left to the transport so gzip responses are
	// decompressed transparently.
	"Accept-Language": "fi-FI,fi;q=0.9,en-US;q=0.8,en;q=0.7",
	"Connection":      "keep-alive",
}

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			// Applies to the whole exchange: connect, redirects, transfer.
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
			Transport: &http.Transport{
				MaxConnsPerHost:     2,
				MaxIdleConnsPerHost: 1,
			},
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	applyDefaultHeaders(req)
	return c.httpClient.Do(req)
}

// Get issues a context-bound GET with the browser header set. The context
// deadline caps the entire operation, not just the connection phase.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	applyDefaultHeaders(req)
	return c.httpClient.Do(req)
}

func applyDefaultHeaders(req *http.Request) {
	for k, v := range defaultHeaders {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
}
