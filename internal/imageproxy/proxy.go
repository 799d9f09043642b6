// Package imageproxy fetches thumbnail images server-side on behalf of the
// browser. The upstream media host rejects hotlinked requests, so the proxy
// presents a browser User-Agent and a Referer matching the upstream's own
// site, and re-serves the bytes with a long-lived cache header.
package imageproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/littleslush/gifproxy/internal/cache"
	"github.com/littleslush/gifproxy/internal/config"
	"github.com/rs/zerolog/log"
)

// Image is a proxied image body with its content type.
type Image struct {
	ContentType string
	Data        []byte
}

// FetchError reports a non-2xx response from the image host. The status is
// passed through to the client with a generic message; upstream error bodies
// are never forwarded.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("image host responded %d", e.StatusCode)
}

// Status implements the HTTPStatuser seam used by the HTTP handlers.
func (e *FetchError) Status() (int, string) {
	return e.StatusCode, "failed to fetch image"
}

// Service fetches and caches proxied images.
type Service struct {
	userAgent string
	referer   string
	images    cache.ByteCache[Image]

	httpClient *http.Client
}

func NewService(cfg config.UpstreamConfig, images cache.ByteCache[Image]) *Service {
	return &Service{
		userAgent:  cfg.UserAgent,
		referer:    strings.TrimSuffix(cfg.SiteURL, "/") + "/",
		images:     images,
		httpClient: http.DefaultClient,
	}
}

// Fetch returns the image at the given URL, from the byte cache when
// possible. The second return reports whether the cache served the request.
func (s *Service) Fetch(ctx context.Context, rawURL string) (Image, bool, error) {
	if img, found, err := s.images.Get(ctx, rawURL); err == nil && found {
		return img, true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Image{}, false, fmt.Errorf("creating image request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", s.referer)

	res, err := s.httpClient.Do(req)
	if err != nil {
		return Image{}, false, fmt.Errorf("fetching image: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		log.Info().Int("status", res.StatusCode).Str("url", rawURL).Msg("image host refused request")
		return Image{}, false, &FetchError{StatusCode: res.StatusCode}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Image{}, false, fmt.Errorf("reading image body: %w", err)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	img := Image{ContentType: contentType, Data: data}

	if err := s.images.Set(ctx, rawURL, img); err != nil {
		// cache trouble is not a reason to fail the request
		log.Warn().Err(err).Msg("caching proxied image failed")
	}

	return img, false, nil
}
