// internal/scan/scanner.go
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/internal/collector"
	"github.com/seolens/seolens/internal/fetch"
	"github.com/seolens/seolens/internal/history"
	"github.com/seolens/seolens/internal/queue"
	"github.com/seolens/seolens/internal/render"
	"github.com/seolens/seolens/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Scanner runs the full pipeline for a page: acquire, collect signals,
// enqueue them for delivery, and record the scan in history.
type Scanner struct {
	fetcher  *fetch.Fetcher
	renderer *render.Renderer
	registry *collector.Registry
	queue    *queue.Queue
	history  *history.Store
}

// New creates a Scanner. renderer and history may be nil; rendering then
// falls back to static fetches and scans are not persisted.
func New(f *fetch.Fetcher, r *render.Renderer, reg *collector.Registry, q *queue.Queue, h *history.Store) *Scanner {
	return &Scanner{
		fetcher:  f,
		renderer: r,
		registry: reg,
		queue:    q,
		history:  h,
	}
}

// Scan processes a single URL and returns the aggregated report.
// Collected signals are also added to the delivery queue one by one.
func (s *Scanner) Scan(ctx context.Context, url string, mode models.FetchMode) (*models.ScanReport, error) {
	page, doc, err := s.acquire(ctx, models.FetchOptions{URL: url, Mode: mode})
	if err != nil {
		return nil, err
	}

	signals := s.registry.Collect(page, doc)
	for _, payload := range signals {
		s.queue.Add(payload)
	}

	report := &models.ScanReport{
		ScanID:    uuid.NewString(),
		URL:       url,
		Title:     page.Title,
		ScannedAt: time.Now().UTC(),
		Signals:   signals,
	}

	if s.history != nil {
		if err := s.history.RecordScan(report); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to record scan in history")
		}
		if links := collector.ExtractBacklinks(page, doc); len(links) > 0 {
			if err := s.history.RecordBacklinks(links); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Failed to record backlinks")
			}
		}
	}

	log.Info().
		Str("url", url).
		Str("scan_id", report.ScanID).
		Int("signals", len(signals)).
		Msg("Scan completed")

	return report, nil
}

// ScanBatch processes URLs concurrently, at most concurrency at a time,
// and returns one result per URL in input order. onDone, when non-nil, is
// invoked after each URL finishes.
func (s *Scanner) ScanBatch(ctx context.Context, urls []string, mode models.FetchMode, concurrency int, onDone func(models.ScanResult)) []models.ScanResult {
	if concurrency <= 0 {
		concurrency = 3
	}

	results := make([]models.ScanResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, url := range urls {
		g.Go(func() error {
			report, err := s.Scan(gctx, url, mode)
			results[i] = models.ScanResult{URL: url, Report: report, Error: err}
			if onDone != nil {
				onDone(results[i])
			}
			// Individual failures are reported per URL, not propagated
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// acquire picks between the static fetcher and the headless renderer.
// Auto mode renders only when the static page looks like an empty app
// shell whose content arrives via scripts.
func (s *Scanner) acquire(ctx context.Context, opts models.FetchOptions) (*models.Page, *goquery.Document, error) {
	switch opts.Mode {
	case models.ModeRender:
		if s.renderer == nil {
			return nil, nil, fmt.Errorf("render mode requested but no renderer configured")
		}
		return s.renderer.Render(ctx, opts)
	case models.ModeStatic, "":
		return s.fetcher.Fetch(ctx, opts)
	}

	page, doc, err := s.fetcher.Fetch(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if s.renderer != nil && needsRendering(doc) {
		log.Debug().Str("url", opts.URL).Msg("Static page looks script-driven, rendering")
		if rp, rd, rerr := s.renderer.Render(ctx, opts); rerr == nil {
			return rp, rd, nil
		} else {
			log.Warn().Err(rerr).Str("url", opts.URL).Msg("Render fallback failed, keeping static page")
		}
	}
	return page, doc, nil
}

// needsRendering is a heuristic for script-driven pages: a nearly empty
// body combined with script tags.
func needsRendering(doc *goquery.Document) bool {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	text := len(body.Text())
	scripts := doc.Find("script[src]").Length()
	return text < 200 && scripts > 0
}
