package feed

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/littleslush/gifproxy/internal/cache"
	"github.com/littleslush/gifproxy/internal/redgifs"
	"github.com/rs/zerolog/log"
)

// Service resolves search result pages, consulting the response cache before
// the upstream API. It owns no goroutines; all state lives in the injected
// stores, which are shared process-wide.
type Service struct {
	client   *redgifs.Client
	tokens   *redgifs.TokenSource
	pages    *cache.Pages[Page]
	pageSize int
}

func NewService(client *redgifs.Client, tokens *redgifs.TokenSource, pages *cache.Pages[Page], pageSize int) *Service {
	return &Service{
		client:   client,
		tokens:   tokens,
		pages:    pages,
		pageSize: pageSize,
	}
}

// Result is a successfully resolved page together with how it was resolved.
type Result struct {
	Page  Page
	Cache CacheStatus
}

// Lookup resolves one result page for the given search text ("" means the
// trending feed) and page number string.
//
// The failure modes are recovered in order of preference: a fresh cached
// entry short-circuits entirely; an upstream 429 is answered from the cache
// ignoring freshness; an upstream 401 triggers one forced token refresh and
// one retry. Anything else surfaces as an *Error carrying the upstream
// status.
func (s *Service) Lookup(ctx context.Context, search, page string) (Result, error) {
	key := cache.Key{Search: search, Page: page}

	if cached, found, fresh := s.pages.Get(key); found && fresh {
		return Result{Page: cached, Cache: CacheHit}, nil
	}

	token, err := s.tokens.Token(ctx, false)
	if err != nil {
		// one forced refresh before giving up; the token source itself
		// never retries
		token, err = s.tokens.Token(ctx, true)
		if err != nil {
			log.Warn().Err(err).Msg("upstream authentication failed")
			return Result{}, &Error{
				Code:    http.StatusInternalServerError,
				Message: "failed to authenticate with upstream",
			}
		}
	}

	pageNum := parsePage(page)

	raw, err := s.client.Search(ctx, token, search, pageNum, s.pageSize)
	if err != nil {
		switch {
		case redgifs.IsStatus(err, http.StatusTooManyRequests):
			// serve anything cached for this search, any page, any age
			if fallback, fallbackKey, ok := s.pages.AnyForSearch(search); ok {
				log.Info().
					Str("search", search).
					Str("requested_page", page).
					Str("served_page", fallbackKey.Page).
					Msg("rate limited: serving cached fallback")
				return Result{Page: fallback, Cache: CacheFallback}, nil
			}
			return Result{}, &Error{
				Code:    http.StatusTooManyRequests,
				Message: "upstream rate limited, try again shortly",
			}

		case redgifs.IsStatus(err, http.StatusUnauthorized):
			// token no longer valid upstream: force a refresh and retry the
			// same request exactly once
			log.Info().Msg("upstream rejected token, refreshing and retrying")

			token, tokenErr := s.tokens.Token(ctx, true)
			if tokenErr == nil {
				raw, err = s.client.Search(ctx, token, search, pageNum, s.pageSize)
			}
		}
	}

	if err != nil {
		var upstream *redgifs.UpstreamError
		if errors.As(err, &upstream) {
			log.Warn().
				Int("status", upstream.StatusCode).
				Str("search", search).
				Str("page", page).
				Msg("upstream search request failed")
			return Result{}, &Error{
				Code:    upstream.StatusCode,
				Message: "failed to fetch data from upstream",
				Details: upstream.Body,
			}
		}

		log.Warn().Err(err).Msg("upstream search request errored")
		return Result{}, &Error{
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
			Details: err.Error(),
		}
	}

	normalized := Normalize(raw, pageNum)
	s.pages.Put(key, normalized)

	return Result{Page: normalized, Cache: CacheMiss}, nil
}

// parsePage interprets the page query parameter, falling back to the first
// page for anything unparsable.
func parsePage(page string) int {
	n, err := strconv.Atoi(page)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
