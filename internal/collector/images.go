// internal/collector/images.go
package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

// Images collects accessibility and sizing signals for page images
type Images struct{}

func (im *Images) Name() string { return "images" }

func (im *Images) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	var total, missingAlt, missingDimensions, lazy int

	doc.Find("img[src]").Each(func(i int, sel *goquery.Selection) {
		total++

		alt, hasAlt := sel.Attr("alt")
		if !hasAlt || strings.TrimSpace(alt) == "" {
			missingAlt++
		}

		_, hasWidth := sel.Attr("width")
		_, hasHeight := sel.Attr("height")
		if !hasWidth || !hasHeight {
			missingDimensions++
		}

		if loading, _ := sel.Attr("loading"); loading == "lazy" {
			lazy++
		}
	})

	altCoverage := 100.0
	if total > 0 {
		altCoverage = float64(total-missingAlt) / float64(total) * 100
	}

	return map[string]any{
		"total":              total,
		"missing_alt":        missingAlt,
		"missing_dimensions": missingDimensions,
		"lazy_loaded":        lazy,
		"alt_coverage_pct":   altCoverage,
	}
}
