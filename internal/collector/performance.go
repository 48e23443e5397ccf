// internal/collector/performance.go
package collector

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

// Performance collects timing and weight signals for the fetch itself,
// plus resource counts from the document. Rendered pages additionally
// report browser navigation timings.
type Performance struct{}

func (p *Performance) Name() string { return "performance" }

func (p *Performance) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	signals := map[string]any{
		"status_code":      page.StatusCode,
		"response_time_ms": page.ResponseTime,
		"ttfb_ms":          page.TTFB,
		"html_bytes":       page.HTMLBytes,
		"scripts":          doc.Find("script[src]").Length(),
		"stylesheets":      doc.Find(`link[rel="stylesheet"]`).Length(),
		"images":           doc.Find("img[src]").Length(),
		"inline_styles":    doc.Find("style").Length(),
	}

	if t := page.Timing; t != nil {
		signals["navigation"] = map[string]any{
			"dns_lookup_ms":         t.DNSLookupMs,
			"connect_ms":            t.ConnectMs,
			"ttfb_ms":               t.TTFBMs,
			"dom_content_loaded_ms": t.DOMContentLoadedMs,
			"load_ms":               t.LoadMs,
		}
	}

	return signals
}
