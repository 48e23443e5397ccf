// internal/collector/meta.go
package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

// Meta collects head metadata: title, description, canonical, robots
// directives, Open Graph and Twitter card tags, viewport and hreflang.
type Meta struct{}

func (m *Meta) Name() string { return "meta" }

func (m *Meta) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	var description, robots string
	openGraph := make(map[string]string)
	twitter := make(map[string]string)

	doc.Find("meta").Each(func(i int, sel *goquery.Selection) {
		content, _ := sel.Attr("content")
		if name, exists := sel.Attr("name"); exists {
			switch strings.ToLower(name) {
			case "description":
				description = content
			case "robots":
				robots = content
			}
			if strings.HasPrefix(name, "twitter:") {
				twitter[strings.TrimPrefix(name, "twitter:")] = content
			}
		}
		if property, exists := sel.Attr("property"); exists {
			if strings.HasPrefix(property, "og:") {
				openGraph[strings.TrimPrefix(property, "og:")] = content
			}
		}
	})

	canonical, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")

	var hreflang []string
	doc.Find(`link[rel="alternate"][hreflang]`).Each(func(i int, sel *goquery.Selection) {
		if lang, exists := sel.Attr("hreflang"); exists && lang != "" {
			hreflang = append(hreflang, lang)
		}
	})

	hasViewport := doc.Find(`meta[name="viewport"]`).Length() > 0

	signals := map[string]any{
		"title":              title,
		"title_length":       len([]rune(title)),
		"description":        description,
		"description_length": len([]rune(description)),
		"canonical":          canonical,
		"robots":             robots,
		"viewport":           hasViewport,
	}
	if len(openGraph) > 0 {
		signals["open_graph"] = openGraph
	}
	if len(twitter) > 0 {
		signals["twitter"] = twitter
	}
	if len(hreflang) > 0 {
		signals["hreflang"] = hreflang
	}
	return signals
}
