// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/internal/cache"
	"github.com/seolens/seolens/internal/collector"
	"github.com/seolens/seolens/internal/config"
	"github.com/seolens/seolens/internal/fetch"
	"github.com/seolens/seolens/internal/history"
	"github.com/seolens/seolens/internal/queue"
	"github.com/seolens/seolens/internal/ratelimit"
	"github.com/seolens/seolens/internal/render"
	"github.com/seolens/seolens/internal/scan"
	"github.com/seolens/seolens/internal/transport"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Fetcher     *fetch.Fetcher
	Queue       *queue.Queue
	History     *history.Store
	Scanner     *scan.Scanner

	renderer *render.Renderer
	rendMu   sync.Mutex
	started  time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// The signal queue starts its periodic flush immediately; Close drains
// anything still queued. If any step fails, an error is returned and no
// resources are left allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := initLogger(cfg)

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Memory cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}

	fetcher := fetch.New(memCache, rateLimiter, httpClient, cfg.UserAgent, cfg.CacheTTL)

	tr := transport.Pick(nil, cfg.Endpoint, cfg.APIKey, httpClient)
	q := queue.New(tr, cfg.QueueCapacity)
	q.StartPeriodicFlush(cfg.FlushInterval)
	logger.Debug().
		Str("transport", tr.Name()).
		Int("capacity", cfg.QueueCapacity).
		Dur("flush_interval", cfg.FlushInterval).
		Msg("Signal queue initialized")

	var store *history.Store
	if cfg.HistoryPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0700); err != nil {
			memCache.Close()
			q.StopPeriodicFlush()
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		var err error
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			memCache.Close()
			q.StopPeriodicFlush()
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
	}

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Fetcher:     fetcher,
		Queue:       q,
		History:     store,
		started:     time.Now(),
	}

	registry := collector.Default(cfg.TargetKeywords)
	var renderer *render.Renderer
	if cfg.Render {
		var err error
		renderer, err = app.ensureRenderer()
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
	}
	app.Scanner = scan.New(fetcher, renderer, registry, q, store)

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

func initLogger(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	return log.Output(logWriter).With().Timestamp().Logger()
}

// ensureRenderer lazily resolves a Chrome binary and builds the headless
// renderer. Rendering is optional; the error tells the caller Chrome is
// missing.
func (a *Application) ensureRenderer() (*render.Renderer, error) {
	a.rendMu.Lock()
	defer a.rendMu.Unlock()

	if a.renderer != nil {
		return a.renderer, nil
	}

	chromePath := a.Config.ChromePath
	if chromePath == "" {
		chromePath = render.FindChrome()
	}
	if chromePath == "" {
		return nil, fmt.Errorf("no Chrome/Chromium binary found; set --chrome-path")
	}

	a.renderer = render.New(chromePath, config.DefaultRenderHeadless, a.Config.UserAgent)
	a.Logger.Debug().Str("chrome_path", chromePath).Msg("Renderer initialized")
	return a.renderer, nil
}

// Close gracefully shuts down the application and all its resources.
//
// The signal queue is drained first so collected signals are not lost,
// then the cache's maintenance goroutine and the history store are
// stopped. Errors during shutdown are logged but do not prevent other
// shutdown steps.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Msg("Shutting down application")

	var firstErr error

	if a.Queue != nil {
		if err := a.Queue.Close(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to flush queued signals on shutdown")
			firstErr = err
		}
	}

	if a.Cache != nil {
		a.Cache.Close()
	}

	if a.History != nil {
		if err := a.History.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing history store")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.HTTPClient.CloseIdleConnections()

	a.Logger.Debug().
		Dur("uptime", time.Since(a.started)).
		Msg("Application shut down")

	return firstErr
}

// Uptime reports how long the application has been running
func (a *Application) Uptime() time.Duration {
	return time.Since(a.started)
}
