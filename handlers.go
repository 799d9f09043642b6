package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/littleslush/gifproxy/internal/config"
	"github.com/littleslush/gifproxy/internal/feed"
	"github.com/littleslush/gifproxy/internal/imageproxy"
	"github.com/littleslush/gifproxy/internal/sitemap"
	"github.com/rs/zerolog/log"
)

// HTTPStatuser provides HTTP status information for errors
type HTTPStatuser interface {
	Status() (int, string)
}

func handleGetGifs(feedService *feed.Service, freshnessSeconds int) http.Handler {
	cacheControl := fmt.Sprintf("public, max-age=%d", freshnessSeconds)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		search := r.URL.Query().Get("search")

		result, err := feedService.Lookup(r.Context(), search, page)
		if err != nil {
			log.Info().Err(err).Str("search", search).Str("page", page).Msg("gif lookup failed")
			writeFeedError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", string(result.Cache))
		w.Header().Set("Cache-Control", cacheControl)

		if err := json.NewEncoder(w).Encode(result.Page); err != nil {
			// the status line is already written; logging is all that's left
			log.Info().Err(err).Msg("failed to write gifs response")
		}
	})
}

func handleGetImageProxy(proxy *imageproxy.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		imageURL := r.URL.Query().Get("url")
		if imageURL == "" {
			writeJSONError(w, http.StatusBadRequest, "missing image URL")
			return
		}

		img, hit, err := proxy.Fetch(r.Context(), imageURL)
		if err != nil {
			var statuser HTTPStatuser
			if errors.As(err, &statuser) {
				status, message := statuser.Status()
				writeJSONError(w, status, message)
				return
			}

			log.Info().Err(err).Str("url", imageURL).Msg("image proxy failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to proxy image")
			return
		}

		cacheStatus := feed.CacheMiss
		if hit {
			cacheStatus = feed.CacheHit
		}

		w.Header().Set("Content-Type", img.ContentType)
		w.Header().Set("X-Cache", string(cacheStatus))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := w.Write(img.Data); err != nil {
			log.Info().Err(err).Msg("failed to write image response")
		}
	})
}

func handleGetSitemap(cfg config.ServerConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		body, err := sitemap.Generate(cfg.SiteURL, cfg.SitemapCategories, time.Now())
		if err != nil {
			log.Info().Err(err).Msg("sitemap generation failed")
			requestError(w, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/xml")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	})
}

func handleHealthCheck() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer drainRequestBody(r)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func maxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

// feedErrorResponse keeps failure bodies response-compatible with success
// bodies: gifs is always an array and next is always present, so the client
// never has to special-case a malformed payload.
type feedErrorResponse struct {
	Error   string     `json:"error"`
	Details string     `json:"details,omitempty"`
	Gifs    []feed.Gif `json:"gifs"`
	Next    *string    `json:"next"`
}

func writeFeedError(w http.ResponseWriter, err error) {
	status, message := errorStatus(err)

	details := ""
	var lookupErr *feed.Error
	if errors.As(err, &lookupErr) {
		details = lookupErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := feedErrorResponse{
		Error:   message,
		Details: details,
		Gifs:    []feed.Gif{},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Info().Err(err).Msg("failed to write error response")
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSONError writes a JSON error response with the given status code and message.
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Info().Err(err).Msg("failed to write JSON error response")
	}
}

// errorStatus extracts HTTP status code and message from an error.
// Returns (StatusInternalServerError, StatusText) for errors that don't
// implement HTTPStatuser.
func errorStatus(err error) (int, string) {
	var statuser HTTPStatuser
	if errors.As(err, &statuser) {
		return statuser.Status()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func requestError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}

// drainRequestBody drains the request body by reading and discarding the
// contents, which matters for connection reuse in HTTP/1 clients.
func drainRequestBody(r *http.Request) {
	if r.Body != nil {
		io.CopyN(io.Discard, r.Body, 5*1024*1024)
	}
}
