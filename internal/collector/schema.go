// internal/collector/schema.go
package collector

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

// Schema collects structured data markup: JSON-LD @type values and
// microdata itemtype values.
type Schema struct{}

func (s *Schema) Name() string { return "schema" }

func (s *Schema) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	types := make(map[string]int)
	var jsonLDBlocks, invalidBlocks int

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		jsonLDBlocks++
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			invalidBlocks++
			return
		}
		collectJSONLDTypes(raw, types)
	})

	var microdata int
	doc.Find("[itemtype]").Each(func(i int, sel *goquery.Selection) {
		itemtype, _ := sel.Attr("itemtype")
		if itemtype == "" {
			return
		}
		microdata++
		// Keep the bare type name from schema.org URLs
		if idx := strings.LastIndex(itemtype, "/"); idx >= 0 {
			itemtype = itemtype[idx+1:]
		}
		types[itemtype]++
	})

	typeNames := make([]string, 0, len(types))
	for name := range types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	signals := map[string]any{
		"json_ld_blocks":  jsonLDBlocks,
		"invalid_blocks":  invalidBlocks,
		"microdata_items": microdata,
		"type_counts":     types,
	}
	if len(typeNames) > 0 {
		signals["types"] = typeNames
	}
	return signals
}

// collectJSONLDTypes walks a decoded JSON-LD value and tallies every @type,
// descending into @graph and nested entities.
func collectJSONLDTypes(raw any, types map[string]int) {
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			collectJSONLDTypes(item, types)
		}
	case map[string]any:
		switch t := v["@type"].(type) {
		case string:
			types[t]++
		case []any:
			for _, name := range t {
				if s, ok := name.(string); ok {
					types[s]++
				}
			}
		}
		for key, child := range v {
			if key == "@type" {
				continue
			}
			collectJSONLDTypes(child, types)
		}
	}
}
