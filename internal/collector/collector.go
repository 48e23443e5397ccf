// Package collector extracts SEO signals from fetched pages. Each collector
// produces one JSON-serializable payload; the batching queue treats those
// payloads as opaque events.
package collector

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/pkg/models"
)

// Collector reads one class of signals from a parsed page
type Collector interface {
	// Name identifies the collector and becomes the "type" field of its payload
	Name() string

	// Collect extracts the collector's signals. A nil return means the
	// collector has nothing to report for this page.
	Collect(page *models.Page, doc *goquery.Document) map[string]any
}

// Registry runs a fixed set of collectors over a page
type Registry struct {
	collectors []Collector
}

// NewRegistry creates a registry with the given collectors
func NewRegistry(collectors ...Collector) *Registry {
	return &Registry{collectors: collectors}
}

// Default returns the standard collector set. Target keywords feed the
// keyword density collector and may be empty.
func Default(targetKeywords []string) *Registry {
	return NewRegistry(
		&Meta{},
		&Headings{},
		&Links{},
		&Schema{},
		NewKeywords(targetKeywords),
		&Images{},
		&Performance{},
	)
}

// Collect runs every collector and returns their payloads, tagged with the
// collector name, page URL, and collection time.
func (r *Registry) Collect(page *models.Page, doc *goquery.Document) []map[string]any {
	if page == nil || doc == nil {
		return nil
	}

	payloads := make([]map[string]any, 0, len(r.collectors))
	for _, c := range r.collectors {
		signals := c.Collect(page, doc)
		if signals == nil {
			log.Debug().Str("collector", c.Name()).Str("url", page.URL).Msg("No signals collected")
			continue
		}
		signals["type"] = c.Name()
		signals["url"] = page.URL
		signals["collected_at"] = time.Now().UnixMilli()
		payloads = append(payloads, signals)
	}
	return payloads
}
