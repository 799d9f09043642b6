package config

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Cache    CacheConfig
	Observe  ObserveConfig
	Server   ServerConfig
	Upstream UpstreamConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`

	// SiteURL is the public URL of this site, used for sitemap generation.
	SiteURL string `env:"SERVER_SITE_URL, default=https://thelittleslush.fun"`

	// SitemapCategories lists category searches included in the sitemap.
	SitemapCategories []string `env:"SERVER_SITEMAP_CATEGORIES"`
}

// UpstreamConfig specifies the media API endpoints and the browser-like
// identity presented to them. The upstream rejects requests without a
// plausible User-Agent and an Origin/Referer pair matching its own site.
type UpstreamConfig struct {
	APIURL  string `env:"UPSTREAM_API_URL, default=https://api.redgifs.com/v2"`
	SiteURL string `env:"UPSTREAM_SITE_URL, default=https://www.redgifs.com"`

	// UserAgent defaults in code: the value contains commas, which the env
	// tag syntax cannot carry.
	UserAgent string `env:"UPSTREAM_USER_AGENT"`

	// TokenTTLMinutes is the local lifetime for cached auth tokens. Kept
	// below the upstream's own ~60 minute window so refresh is proactive.
	TokenTTLMinutes int `env:"UPSTREAM_TOKEN_TTL_MINS, default=50"`

	// PageSize is the fixed per-page gif count forwarded upstream. Not
	// client controlled.
	PageSize int `env:"UPSTREAM_PAGE_SIZE, default=20"`
}

// CacheConfig specifies the in-process cache settings.
type CacheConfig struct {
	// PageFreshnessSeconds is the window during which a cached search result
	// page is served without consulting the upstream.
	PageFreshnessSeconds int `env:"CACHE_PAGE_FRESHNESS_SECS, default=300"`

	// PageCapacity bounds the search result cache. The oldest-inserted entry
	// is evicted when the bound would be exceeded.
	PageCapacity int `env:"CACHE_PAGE_CAPACITY, default=100"`

	// ImageTTLMinutes and ImageCapacity bound the proxied thumbnail byte
	// cache.
	ImageTTLMinutes int `env:"CACHE_IMAGE_TTL_MINS, default=15"`
	ImageCapacity   int `env:"CACHE_IMAGE_CAPACITY, default=512"`
}

type ObserveConfig struct {
	Enabled                    bool   `env:"OBSERVE_ENABLED, default=false"`
	MetricsEnabled             bool   `env:"OBSERVE_METRICS_ENABLED, default=true"`
	Type                       string `env:"OBSERVE_TYPE, default=grpc"`
	ServiceName                string `env:"OBSERVE_SERVICE_NAME, default=gifproxy"`
	TraceBatchTimeoutSeconds   int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds  int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`
	HTTPTransportEnabled       bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
	HTTPConnectionTraceEnabled bool   `env:"OBSERVE_CONNECTION_TRACE_ENABLED, default=true"`
}

// defaultUserAgent is the browser identity presented to the upstream when
// none is configured.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = defaultUserAgent
	}

	err = cfg.Upstream.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid upstream configuration: %w", err)
	}

	err = cfg.Cache.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the upstream configuration is usable.
func (c *UpstreamConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("UPSTREAM_API_URL is required")
	}
	if _, err := url.Parse(c.APIURL); err != nil {
		return fmt.Errorf("UPSTREAM_API_URL must be a valid URL: %w", err)
	}

	if c.SiteURL == "" {
		return fmt.Errorf("UPSTREAM_SITE_URL is required")
	}
	if _, err := url.Parse(c.SiteURL); err != nil {
		return fmt.Errorf("UPSTREAM_SITE_URL must be a valid URL: %w", err)
	}

	if c.TokenTTLMinutes < 1 {
		return fmt.Errorf("UPSTREAM_TOKEN_TTL_MINS must be positive")
	}

	if c.PageSize < 1 {
		return fmt.Errorf("UPSTREAM_PAGE_SIZE must be positive")
	}

	return nil
}

// Validate checks that the cache configuration is usable.
func (c *CacheConfig) Validate() error {
	if c.PageCapacity < 1 {
		return fmt.Errorf("CACHE_PAGE_CAPACITY must be positive")
	}

	if c.PageFreshnessSeconds < 1 {
		return fmt.Errorf("CACHE_PAGE_FRESHNESS_SECS must be positive")
	}

	if c.ImageCapacity < 1 {
		return fmt.Errorf("CACHE_IMAGE_CAPACITY must be positive")
	}

	return nil
}
