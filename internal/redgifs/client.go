// Package redgifs is a minimal client for the RedGifs public API, covering
// the temporary-auth and gif-search endpoints this service proxies.
package redgifs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/littleslush/gifproxy/internal/config"
)

// Client issues requests to the upstream media API. The upstream rejects
// requests that don't look like they originate from its own web frontend, so
// every request carries a browser User-Agent and an Origin/Referer pair
// matching the upstream's public site.
type Client struct {
	apiURL    string
	siteURL   string
	userAgent string

	httpClient *http.Client
}

func New(cfg config.UpstreamConfig) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("upstream API URL must be configured")
	}

	return &Client{
		apiURL:    strings.TrimSuffix(cfg.APIURL, "/"),
		siteURL:   strings.TrimSuffix(cfg.SiteURL, "/"),
		userAgent: cfg.UserAgent,

		// The default client carries the instrumented transport configured
		// at startup.
		httpClient: http.DefaultClient,
	}, nil
}

// newRequest decorates an upstream request with the browser-like header set.
// Tokens are single-use-window, so responses must never be served from an
// intermediate cache.
func (c *Client) newRequest(r *http.Request) {
	r.Header.Set("User-Agent", c.userAgent)
	r.Header.Set("Origin", c.siteURL)
	r.Header.Set("Referer", c.siteURL+"/")
	r.Header.Set("Cache-Control", "no-store")
}

// UpstreamError reports a non-2xx response from the upstream API. The status
// code is preserved so callers can branch on 401 (token expiry) and 429
// (rate limiting), and handlers can pass the status through to the client.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Body)
}

// Status implements the HTTPStatuser seam used by the HTTP handlers.
func (e *UpstreamError) Status() (int, string) {
	return e.StatusCode, e.Body
}

// IsStatus reports whether err is an UpstreamError with the given code.
func IsStatus(err error, code int) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.StatusCode == code
}
