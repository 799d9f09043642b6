package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/justinas/alice"
	"github.com/littleslush/gifproxy/internal/cache"
	"github.com/littleslush/gifproxy/internal/config"
	"github.com/littleslush/gifproxy/internal/feed"
	"github.com/littleslush/gifproxy/internal/imageproxy"
	"github.com/littleslush/gifproxy/internal/observe"
	"github.com/littleslush/gifproxy/internal/redgifs"
	"github.com/littleslush/gifproxy/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func configureServerRoutes(cfg config.Config) (http.Handler, error) {
	// wrap a mux such that HTTP telemetry is configured by default
	muxWithoutTelemetry := http.NewServeMux()
	mux := observe.NewMux(muxWithoutTelemetry)

	// These are all GET endpoints; a request carrying a meaningful body is
	// either broken or abusive.
	requestLimitBytes := int64(10 << 10) // 10 KB
	standardRouteMiddleware := alice.New(maxRequestSize(requestLimitBytes))

	// upstream client and the two process-wide caches
	client, err := redgifs.New(cfg.Upstream)
	if err != nil {
		return nil, fmt.Errorf("upstream client configuration failed: %w", err)
	}

	tokens := redgifs.NewTokenSource(client, time.Duration(cfg.Upstream.TokenTTLMinutes)*time.Minute)

	pages := cache.NewPages[feed.Page](
		time.Duration(cfg.Cache.PageFreshnessSeconds)*time.Second,
		cfg.Cache.PageCapacity,
	)
	feedService := feed.NewService(client, tokens, pages, cfg.Upstream.PageSize)

	imageCache, err := cache.NewMemory[imageproxy.Image](
		time.Duration(cfg.Cache.ImageTTLMinutes)*time.Minute,
		cfg.Cache.ImageCapacity,
	)
	if err != nil {
		return nil, fmt.Errorf("image cache configuration failed: %w", err)
	}
	imageService := imageproxy.NewService(cfg.Upstream, cache.NewInstrumented(imageCache, "memory"))

	mux.Handle("GET /api/gifs", standardRouteMiddleware.Then(handleGetGifs(feedService, cfg.Cache.PageFreshnessSeconds)))
	mux.Handle("GET /api/image-proxy", standardRouteMiddleware.Then(handleGetImageProxy(imageService)))
	mux.Handle("GET /sitemap.xml", standardRouteMiddleware.Then(handleGetSitemap(cfg.Server)))

	// healthchecks are not included in telemetry
	muxWithoutTelemetry.Handle("GET /healthcheck", standardRouteMiddleware.Then(handleHealthCheck()))

	return mux, nil
}

func main() {
	configureLogging()

	logBuildInfo()

	err := launchServer()
	if err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func launchServer() error {
	ctx := context.Background()

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded environment from .env")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	// configure telemetry, including wrapping the default HTTP client used
	// for upstream calls
	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}

	http.DefaultTransport = observe.HTTPTransport(
		configureHTTPTransport(cfg.Server),
		cfg.Observe,
	)
	http.DefaultClient = &http.Client{
		Transport: http.DefaultTransport,
	}

	// setup routing and dependencies
	handler, err := configureServerRoutes(cfg)
	if err != nil {
		return fmt.Errorf("server routing configuration failed: %w", err)
	}

	shutdownHooks := &server.ShutdownHooks{}
	shutdownHooks.AddContext("telemetry", shutdownTelemetry)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		MaxHeaderBytes:    20 << 10,         // 20 KB
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	err = server.Serve(cfg.Server, srv)

	shutdownHooks.Execute(ctx)

	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func configureLogging() {
	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.ServerConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	return transport
}
