// internal/fetch/fetcher.go
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/internal/cache"
	"github.com/seolens/seolens/internal/ratelimit"
	"github.com/seolens/seolens/internal/retry"
	"github.com/seolens/seolens/internal/urlutil"
	"github.com/seolens/seolens/pkg/models"
	"golang.org/x/net/html/charset"
)

// maxBodyBytes caps how much HTML is read from a single page
const maxBodyBytes = 10 * 1024 * 1024

// Fetcher acquires pages over plain HTTP and parses them with goquery.
// Fetches are rate limited per domain and cached by URL.
type Fetcher struct {
	cache     cache.Cache
	limiter   ratelimit.RateLimiter
	client    *http.Client
	userAgent string
	cacheTTL  time.Duration
	retryCfg  retry.Config
}

// New creates a Fetcher with dependency injection
func New(c cache.Cache, lim ratelimit.RateLimiter, client *http.Client, ua string, cacheTTL time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		cache:     c,
		limiter:   lim,
		client:    client,
		userAgent: ua,
		cacheTTL:  cacheTTL,
		retryCfg:  retry.DefaultConfig(),
	}
}

// SetRetryConfig overrides the default retry behavior for page fetches
func (f *Fetcher) SetRetryConfig(cfg retry.Config) {
	f.retryCfg = cfg
}

// Fetch retrieves and parses a page, returning both the page state and the
// parsed document collectors read from. Cached pages are re-parsed without
// touching the network.
func (f *Fetcher) Fetch(ctx context.Context, opts models.FetchOptions) (*models.Page, *goquery.Document, error) {
	if err := urlutil.ValidateURL(opts.URL); err != nil {
		return nil, nil, err
	}

	if f.cache != nil {
		if page, ok := f.cache.Get(opts.URL); ok {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
			if err == nil {
				return page, doc, nil
			}
			log.Warn().Err(err).Str("url", opts.URL).Msg("Failed to re-parse cached page, refetching")
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, nil, fmt.Errorf("rate limit wait cancelled: %w", err)
		}
	}

	var page *models.Page
	err := retry.WithRetry(ctx, f.retryCfg, func() error {
		var err error
		page, err = f.doFetch(ctx, opts)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())

	if f.cache != nil {
		_ = f.cache.Set(opts.URL, page, f.cacheTTL)
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", page.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Int64("html_bytes", page.HTMLBytes).
		Msg("Fetch completed")

	return page, doc, nil
}

// doFetch performs one HTTP round trip. Retryable statuses (429, 5xx) are
// surfaced as HTTPError so the retry layer can back off; other non-2xx
// statuses still produce a page, since error pages carry SEO signals too.
func (f *Fetcher) doFetch(ctx context.Context, opts models.FetchOptions) (*models.Page, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	// Headers are in; body read time counts toward the total below
	ttfb := time.Since(start).Milliseconds()

	if isRetryableStatus(resp.StatusCode) {
		return nil, retry.NewHTTPError(resp.StatusCode, resp.Status, "")
	}

	// Decode to UTF-8 based on Content-Type and in-document hints
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	page := &models.Page{
		URL:          opts.URL,
		StatusCode:   resp.StatusCode,
		HTML:         string(body),
		Headers:      make(map[string]string),
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
		TTFB:         ttfb,
		HTMLBytes:    int64(len(body)),
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			page.Headers[key] = values[0]
		}
	}

	return page, nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
