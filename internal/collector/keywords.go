// internal/collector/keywords.go
package collector

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

// topTermCount limits how many frequent terms are reported per page
const topTermCount = 10

var wordPattern = regexp.MustCompile(`[a-z0-9]+(?:'[a-z]+)?`)

// stopwords are excluded from frequency counts but still count toward the
// total for density math.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "will": {}, "with": {},
	"you": {}, "your": {},
}

// Keywords collects word frequency and the density of configured target
// keywords over the page's visible text.
type Keywords struct {
	targets []string
}

// NewKeywords creates the collector; targets may be empty
func NewKeywords(targets []string) *Keywords {
	normalized := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return &Keywords{targets: normalized}
}

func (k *Keywords) Name() string { return "keywords" }

func (k *Keywords) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	body := doc.Find("body").Clone()
	// Visible text only
	body.Find("script, style, noscript").Remove()
	text := strings.ToLower(body.Text())

	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return nil
	}

	freq := make(map[string]int)
	for _, w := range words {
		if _, skip := stopwords[w]; skip {
			continue
		}
		if len(w) < 3 {
			continue
		}
		freq[w]++
	}

	type termCount struct {
		Term  string `json:"term"`
		Count int    `json:"count"`
	}
	top := make([]termCount, 0, len(freq))
	for term, count := range freq {
		top = append(top, termCount{term, count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Term < top[j].Term
	})
	if len(top) > topTermCount {
		top = top[:topTermCount]
	}

	signals := map[string]any{
		"word_count": len(words),
		"top_terms":  top,
	}

	if len(k.targets) > 0 {
		density := make(map[string]float64, len(k.targets))
		for _, target := range k.targets {
			occurrences := countOccurrences(text, target)
			density[target] = float64(occurrences) / float64(len(words)) * 100
		}
		signals["target_density"] = density
	}

	return signals
}

// countOccurrences counts whole-phrase matches of target in text
func countOccurrences(text, target string) int {
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(target) + `\b`)
	if err != nil {
		return strings.Count(text, target)
	}
	return len(pattern.FindAllStringIndex(text, -1))
}
