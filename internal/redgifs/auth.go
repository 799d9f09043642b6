package redgifs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// cachedToken pairs a token value with its local expiry. The two are only
// ever stored together, so a reader can never observe a value without an
// expiry.
type cachedToken struct {
	value     string
	expiresAt time.Time
}

// TokenSource obtains and caches a bearer token from the upstream
// temporary-auth endpoint. The token is held process-wide and refreshed when
// it expires locally, or on demand when the upstream rejects it with a 401.
//
// Concurrent refreshes are coalesced: callers arriving during a cache-miss
// window share a single upstream call rather than each issuing their own.
type TokenSource struct {
	client *Client
	ttl    time.Duration

	current atomic.Pointer[cachedToken]
	refresh singleflight.Group
}

func NewTokenSource(client *Client, ttl time.Duration) *TokenSource {
	return &TokenSource{
		client: client,
		ttl:    ttl,
	}
}

// Token returns a bearer token for the upstream API. Unless forceRefresh is
// set, a cached unexpired token is returned without any network call. A
// failed refresh clears the cache and returns the failure; the refresh was
// itself the retry, so callers must not loop.
func (s *TokenSource) Token(ctx context.Context, forceRefresh bool) (string, error) {
	if !forceRefresh {
		if tok := s.current.Load(); tok != nil && time.Now().Before(tok.expiresAt) {
			return tok.value, nil
		}
	}

	value, err, _ := s.refresh.Do("token", func() (any, error) {
		return s.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}

	return value.(string), nil
}

// Invalidate drops the cached token, forcing the next Token call to refresh.
func (s *TokenSource) Invalidate() {
	s.current.Store(nil)
}

func (s *TokenSource) fetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.apiURL+"/auth/temporary", nil)
	if err != nil {
		return "", fmt.Errorf("creating auth request: %w", err)
	}
	s.client.newRequest(req)

	res, err := s.client.httpClient.Do(req)
	if err != nil {
		s.current.Store(nil)
		return "", fmt.Errorf("fetching auth token: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		s.current.Store(nil)
		return "", fmt.Errorf("reading auth response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		s.current.Store(nil)
		log.Warn().
			Int("status", res.StatusCode).
			Str("body", string(body)).
			Msg("upstream auth request failed")
		return "", &UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		s.current.Store(nil)
		return "", fmt.Errorf("parsing auth response: %w", err)
	}
	if parsed.Token == "" {
		s.current.Store(nil)
		return "", fmt.Errorf("auth response contained no token")
	}

	expiry := time.Now().Add(s.ttl)
	s.current.Store(&cachedToken{value: parsed.Token, expiresAt: expiry})

	log.Info().Time("expiry", expiry).Msg("upstream auth token refreshed")

	return parsed.Token, nil
}
