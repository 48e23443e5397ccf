package collector

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/pkg/models"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse fixture HTML: %v", err)
	}
	return doc
}

func testPage(url string) *models.Page {
	return &models.Page{
		URL:          url,
		StatusCode:   200,
		FetchedAt:    time.Now(),
		ResponseTime: 120,
		TTFB:         40,
		HTMLBytes:    2048,
	}
}

func TestMeta_Collect(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>  Acme Widgets | Home  </title>
	<meta name="description" content="Buy the best widgets online.">
	<meta name="robots" content="index,follow">
	<meta name="viewport" content="width=device-width">
	<meta property="og:title" content="Acme Widgets">
	<meta property="og:image" content="/hero.png">
	<meta name="twitter:card" content="summary">
	<link rel="canonical" href="https://acme.example.com/">
	<link rel="alternate" hreflang="de" href="https://acme.example.com/de/">
</head>
<body></body>
</html>`

	signals := (&Meta{}).Collect(testPage("https://acme.example.com/"), parseDoc(t, html))

	if signals["title"] != "Acme Widgets | Home" {
		t.Errorf("Unexpected title: %q", signals["title"])
	}
	if signals["description"] != "Buy the best widgets online." {
		t.Errorf("Unexpected description: %q", signals["description"])
	}
	if signals["canonical"] != "https://acme.example.com/" {
		t.Errorf("Unexpected canonical: %q", signals["canonical"])
	}
	if signals["robots"] != "index,follow" {
		t.Errorf("Unexpected robots: %q", signals["robots"])
	}
	if signals["viewport"] != true {
		t.Error("Expected viewport signal")
	}

	og := signals["open_graph"].(map[string]string)
	if og["title"] != "Acme Widgets" || og["image"] != "/hero.png" {
		t.Errorf("Unexpected open graph map: %v", og)
	}
	tw := signals["twitter"].(map[string]string)
	if tw["card"] != "summary" {
		t.Errorf("Unexpected twitter map: %v", tw)
	}
	hreflang := signals["hreflang"].([]string)
	if len(hreflang) != 1 || hreflang[0] != "de" {
		t.Errorf("Unexpected hreflang: %v", hreflang)
	}
}

func TestHeadings_Collect_OutlineIssues(t *testing.T) {
	html := `<html><body>
	<h1>Main</h1>
	<h1>Second main</h1>
	<h2>Section</h2>
	<h4>Skipped to four</h4>
</body></html>`

	signals := (&Headings{}).Collect(testPage("https://x.test"), parseDoc(t, html))

	counts := signals["counts"].(map[string]int)
	if counts["h1"] != 2 || counts["h2"] != 1 || counts["h4"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
	if signals["first_h1"] != "Main" {
		t.Errorf("Unexpected first h1: %q", signals["first_h1"])
	}

	issues := signals["issues"].([]string)
	wantIssues := map[string]bool{"multiple_h1": false, "skipped_level": false}
	for _, issue := range issues {
		if _, ok := wantIssues[issue]; ok {
			wantIssues[issue] = true
		}
	}
	for issue, seen := range wantIssues {
		if !seen {
			t.Errorf("Expected issue %q in %v", issue, issues)
		}
	}
}

func TestHeadings_Collect_MissingH1(t *testing.T) {
	signals := (&Headings{}).Collect(testPage("https://x.test"),
		parseDoc(t, `<html><body><h2>Only h2</h2></body></html>`))

	issues := signals["issues"].([]string)
	if len(issues) != 1 || issues[0] != "missing_h1" {
		t.Errorf("Expected [missing_h1], got %v", issues)
	}
}

func TestLinks_Collect(t *testing.T) {
	html := `<html><body>
	<a href="/about">About</a>
	<a href="https://www.site.test/contact">Contact</a>
	<a href="https://other.test/ref" rel="nofollow sponsored">Partner</a>
	<a href="https://another.test/x"></a>
	<a href="mailto:hi@site.test">Mail</a>
</body></html>`

	signals := (&Links{}).Collect(testPage("https://site.test/"), parseDoc(t, html))

	if signals["total"] != 5 {
		t.Errorf("Expected 5 links, got %v", signals["total"])
	}
	// mailto counts as internal noise, not an external link
	if signals["internal"] != 3 {
		t.Errorf("Expected 3 internal, got %v", signals["internal"])
	}
	if signals["external"] != 2 {
		t.Errorf("Expected 2 external, got %v", signals["external"])
	}
	if signals["nofollow"] != 1 {
		t.Errorf("Expected 1 nofollow, got %v", signals["nofollow"])
	}
	if signals["empty_anchor"] != 1 {
		t.Errorf("Expected 1 empty anchor, got %v", signals["empty_anchor"])
	}

	hosts := signals["external_hosts"].([]string)
	if len(hosts) != 2 || hosts[0] != "another.test" || hosts[1] != "other.test" {
		t.Errorf("Unexpected external hosts: %v", hosts)
	}
}

func TestExtractBacklinks(t *testing.T) {
	html := `<html><body>
	<a href="/about">About us</a>
	<a href="https://other.test/ref" rel="nofollow">Ref</a>
	<a href="#top">Top</a>
	<a href="javascript:void(0)">JS</a>
</body></html>`

	page := testPage("https://site.test/blog/")
	links := ExtractBacklinks(page, parseDoc(t, html))

	if len(links) != 2 {
		t.Fatalf("Expected 2 backlinks, got %d", len(links))
	}
	if links[0].Target != "https://site.test/about" || links[0].Anchor != "About us" {
		t.Errorf("Unexpected first backlink: %+v", links[0])
	}
	if !links[1].NoFollow {
		t.Error("Expected nofollow flag on second backlink")
	}
}

func TestSchema_Collect(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{"@context": "https://schema.org", "@graph": [
		{"@type": "Organization", "name": "Acme"},
		{"@type": "WebSite", "publisher": {"@type": "Organization"}}
	]}
	</script>
	<script type="application/ld+json">not json</script>
</head><body>
	<div itemscope itemtype="https://schema.org/Product"><span itemprop="name">W1</span></div>
</body></html>`

	signals := (&Schema{}).Collect(testPage("https://x.test"), parseDoc(t, html))

	if signals["json_ld_blocks"] != 2 {
		t.Errorf("Expected 2 JSON-LD blocks, got %v", signals["json_ld_blocks"])
	}
	if signals["invalid_blocks"] != 1 {
		t.Errorf("Expected 1 invalid block, got %v", signals["invalid_blocks"])
	}
	if signals["microdata_items"] != 1 {
		t.Errorf("Expected 1 microdata item, got %v", signals["microdata_items"])
	}

	counts := signals["type_counts"].(map[string]int)
	if counts["Organization"] != 2 || counts["WebSite"] != 1 || counts["Product"] != 1 {
		t.Errorf("Unexpected type counts: %v", counts)
	}

	types := signals["types"].([]string)
	if len(types) != 3 || types[0] != "Organization" {
		t.Errorf("Unexpected sorted types: %v", types)
	}
}

func TestKeywords_Collect(t *testing.T) {
	html := `<html><body>
	<h1>Widget store</h1>
	<p>The widget is the best widget for every widget need.</p>
	<script>var ignored = "widget widget widget";</script>
</body></html>`

	k := NewKeywords([]string{"widget", "gadget"})
	signals := k.Collect(testPage("https://x.test"), parseDoc(t, html))

	// 12 visible words: widget store the widget is the best widget for every widget need
	if signals["word_count"] != 12 {
		t.Errorf("Expected 12 words, got %v", signals["word_count"])
	}

	density := signals["target_density"].(map[string]float64)
	if got := density["widget"]; got < 33.2 || got > 33.5 {
		t.Errorf("Expected widget density ~33.3, got %v", got)
	}
	if density["gadget"] != 0 {
		t.Errorf("Expected zero density for absent keyword, got %v", density["gadget"])
	}
}

func TestKeywords_Collect_EmptyBody(t *testing.T) {
	k := NewKeywords(nil)
	if signals := k.Collect(testPage("https://x.test"), parseDoc(t, `<html><body></body></html>`)); signals != nil {
		t.Errorf("Expected nil signals on empty body, got %v", signals)
	}
}

func TestImages_Collect(t *testing.T) {
	html := `<html><body>
	<img src="/a.png" alt="A" width="10" height="10">
	<img src="/b.png" alt="" loading="lazy">
	<img src="/c.png" width="10">
</body></html>`

	signals := (&Images{}).Collect(testPage("https://x.test"), parseDoc(t, html))

	if signals["total"] != 3 {
		t.Errorf("Expected 3 images, got %v", signals["total"])
	}
	if signals["missing_alt"] != 2 {
		t.Errorf("Expected 2 missing alt, got %v", signals["missing_alt"])
	}
	if signals["missing_dimensions"] != 2 {
		t.Errorf("Expected 2 missing dimensions, got %v", signals["missing_dimensions"])
	}
	if signals["lazy_loaded"] != 1 {
		t.Errorf("Expected 1 lazy image, got %v", signals["lazy_loaded"])
	}
}

func TestPerformance_Collect(t *testing.T) {
	html := `<html><head>
	<link rel="stylesheet" href="/main.css">
	<style>body{}</style>
</head><body>
	<script src="/app.js"></script>
	<img src="/a.png">
</body></html>`

	page := testPage("https://x.test")
	page.Timing = &models.NavigationTiming{LoadMs: 900, TTFBMs: 80}

	signals := (&Performance{}).Collect(page, parseDoc(t, html))

	if signals["scripts"] != 1 || signals["stylesheets"] != 1 || signals["images"] != 1 {
		t.Errorf("Unexpected resource counts: %v", signals)
	}
	if signals["response_time_ms"] != int64(120) {
		t.Errorf("Unexpected response time: %v", signals["response_time_ms"])
	}

	nav := signals["navigation"].(map[string]any)
	if nav["load_ms"] != int64(900) {
		t.Errorf("Unexpected navigation load: %v", nav["load_ms"])
	}
}

func TestRegistry_Collect_TagsPayloads(t *testing.T) {
	html := `<html><head><title>T</title></head><body><h1>H</h1><p>some words here</p></body></html>`
	page := testPage("https://site.test/")

	payloads := Default([]string{"words"}).Collect(page, parseDoc(t, html))
	if len(payloads) != 7 {
		t.Fatalf("Expected 7 collector payloads, got %d", len(payloads))
	}

	seen := make(map[string]bool)
	for _, p := range payloads {
		name, _ := p["type"].(string)
		seen[name] = true
		if p["url"] != page.URL {
			t.Errorf("Payload %q missing url tag: %v", name, p["url"])
		}
		if p["collected_at"] == nil {
			t.Errorf("Payload %q missing collected_at", name)
		}
	}
	for _, want := range []string{"meta", "headings", "links", "schema", "keywords", "images", "performance"} {
		if !seen[want] {
			t.Errorf("Missing payload type %q (got %v)", want, seen)
		}
	}
}
