// internal/render/renderer.go
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/pkg/models"
)

// jsWaitTime gives client-side frameworks a moment to settle after load
const jsWaitTime = 500 * time.Millisecond

// timingJS reads the navigation timeline from the page. Values are deltas
// from navigationStart in milliseconds.
const timingJS = `(() => {
	const t = performance.timing;
	const s = t.navigationStart;
	return {
		dns_lookup_ms: t.domainLookupEnd - t.domainLookupStart,
		connect_ms: t.connectEnd - t.connectStart,
		ttfb_ms: t.responseStart - s,
		dom_content_loaded_ms: t.domContentLoadedEventEnd - s,
		load_ms: (t.loadEventEnd > 0 ? t.loadEventEnd : Date.now()) - s
	};
})()`

// Renderer acquires pages through headless Chrome so JS-rendered DOM and
// real browser navigation timings are visible to the collectors.
type Renderer struct {
	chromePath string
	headless   bool
	userAgent  string
}

// New creates a Renderer. An empty chromePath falls back to FindChrome.
func New(chromePath string, headless bool, userAgent string) *Renderer {
	return &Renderer{
		chromePath: chromePath,
		headless:   headless,
		userAgent:  userAgent,
	}
}

// Render navigates to the URL in a fresh browser context and returns the
// rendered page with navigation timings attached.
func (r *Renderer) Render(ctx context.Context, opts models.FetchOptions) (*models.Page, *goquery.Document, error) {
	start := time.Now()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", r.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("mute-audio", true),
	}
	if r.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(r.userAgent))
	}
	chromePath := r.chromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}
	if chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// Capture the main document status code from the network events
	var statusCode int
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument && statusCode == 0 {
				statusCode = int(resp.Response.Status)
			}
		}
	})

	var htmlContent string
	timing := &models.NavigationTiming{}

	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(jsWaitTime),
		chromedp.Evaluate(timingJS, timing),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render page: %w", err)
	}

	if statusCode == 0 {
		statusCode = 200
	}

	page := &models.Page{
		URL:          opts.URL,
		StatusCode:   statusCode,
		HTML:         htmlContent,
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
		TTFB:         timing.TTFBMs,
		HTMLBytes:    int64(len(htmlContent)),
		Timing:       timing,
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse rendered HTML: %w", err)
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())

	log.Debug().
		Str("url", opts.URL).
		Int("status", statusCode).
		Int64("response_time_ms", page.ResponseTime).
		Msg("Render completed")

	return page, doc, nil
}
