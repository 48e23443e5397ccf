// internal/collector/links.go
package collector

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/internal/urlutil"
	"github.com/seolens/seolens/pkg/models"
)

// Links collects the link graph signals of a page: internal/external split,
// nofollow share, and empty anchors.
type Links struct{}

func (l *Links) Name() string { return "links" }

func (l *Links) Collect(page *models.Page, doc *goquery.Document) map[string]any {
	var total, internal, external, nofollow, emptyAnchor int
	externalHosts := make(map[string]struct{})

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		total++

		if urlutil.IsInternal(page.URL, href) {
			internal++
		} else {
			external++
			if host := urlutil.Host(urlutil.ResolveURL(page.URL, href)); host != "" {
				externalHosts[host] = struct{}{}
			}
		}

		if rel, exists := sel.Attr("rel"); exists && strings.Contains(rel, "nofollow") {
			nofollow++
		}
		if strings.TrimSpace(sel.Text()) == "" && sel.Find("img").Length() == 0 {
			emptyAnchor++
		}
	})

	hosts := make([]string, 0, len(externalHosts))
	for host := range externalHosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	signals := map[string]any{
		"total":        total,
		"internal":     internal,
		"external":     external,
		"nofollow":     nofollow,
		"empty_anchor": emptyAnchor,
	}
	if len(hosts) > 0 {
		signals["external_hosts"] = hosts
	}
	return signals
}

// ExtractBacklinks lists the outbound links of a page for the history
// store. Only resolvable http(s) targets are reported.
func ExtractBacklinks(page *models.Page, doc *goquery.Document) []models.Backlink {
	var links []models.Backlink

	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		target := urlutil.ResolveURL(page.URL, href)
		if err := urlutil.ValidateURL(target); err != nil {
			return
		}

		rel, _ := sel.Attr("rel")
		links = append(links, models.Backlink{
			Source:    page.URL,
			Target:    target,
			Anchor:    strings.TrimSpace(sel.Text()),
			NoFollow:  strings.Contains(rel, "nofollow"),
			FirstSeen: page.FetchedAt,
			LastSeen:  page.FetchedAt,
		})
	})

	return links
}
