// internal/collector/headings.go
package collector

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

// Headings collects the h1-h6 outline and flags common structure problems
type Headings struct{}

func (h *Headings) Name() string { return "headings" }

func (h *Headings) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	counts := make(map[string]int)
	var order []int
	var firstH1 string

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		counts[tag]++

		var level int
		fmt.Sscanf(tag, "h%d", &level)
		order = append(order, level)

		if tag == "h1" && firstH1 == "" {
			firstH1 = strings.TrimSpace(sel.Text())
		}
	})

	var issues []string
	if counts["h1"] == 0 {
		issues = append(issues, "missing_h1")
	}
	if counts["h1"] > 1 {
		issues = append(issues, "multiple_h1")
	}
	// A jump of more than one level down the outline breaks the hierarchy
	for i := 1; i < len(order); i++ {
		if order[i] > order[i-1]+1 {
			issues = append(issues, "skipped_level")
			break
		}
	}

	signals := map[string]any{
		"counts":   counts,
		"total":    len(order),
		"first_h1": firstH1,
	}
	if len(issues) > 0 {
		signals["issues"] = issues
	}
	return signals
}
