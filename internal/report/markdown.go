package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/seolens/seolens/internal/urlutil"
	"github.com/seolens/seolens/pkg/models"
)

// maxExcerptRunes bounds the rendered content preview
const maxExcerptRunes = 4000

// SaveMarkdown writes a human-readable audit of the scan to filepath.
// When page is non-nil its body is appended as a Markdown content preview.
func SaveMarkdown(report *models.ScanReport, page *models.Page, filepath string) error {
	content, err := RenderMarkdown(report, page)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, []byte(content), 0644)
}

// RenderMarkdown builds the Markdown audit document
func RenderMarkdown(report *models.ScanReport, page *models.Page) (string, error) {
	var b strings.Builder

	title := report.Title
	if title == "" {
		title = report.URL
	}
	fmt.Fprintf(&b, "# SEO Audit: %s\n\n", title)
	fmt.Fprintf(&b, "- **URL:** %s\n", report.URL)
	fmt.Fprintf(&b, "- **Scanned:** %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Scan ID:** `%s`\n\n", report.ScanID)

	for _, signal := range report.Signals {
		name, _ := signal["type"].(string)
		if name == "" {
			name = "signal"
		}
		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(name[:1])+name[1:])
		writeSignalTable(&b, signal)
		b.WriteString("\n")
	}

	if page != nil && page.HTML != "" {
		excerpt, err := contentExcerpt(page)
		if err != nil {
			return "", err
		}
		if excerpt != "" {
			b.WriteString("## Content Preview\n\n")
			b.WriteString(excerpt)
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

// writeSignalTable renders one signal payload as a key/value table,
// skipping the envelope fields added by the collector registry.
func writeSignalTable(b *strings.Builder, signal map[string]any) {
	keys := make([]string, 0, len(signal))
	for k := range signal {
		switch k {
		case "type", "url", "collected_at":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) == 0 {
		b.WriteString("_No data._\n")
		return
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %s |\n", k, formatValue(signal[k]))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return escapeCell(val)
	case []string:
		return escapeCell(strings.Join(val, ", "))
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, val[k]))
		}
		return escapeCell(strings.Join(parts, "; "))
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	default:
		return escapeCell(fmt.Sprintf("%v", val))
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// contentExcerpt converts the page body to Markdown, resolving relative
// links against the page URL.
func contentExcerpt(page *models.Page) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Resolve relative links against the scanned URL
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			resolved := urlutil.ResolveURL(page.URL, href)
			str := fmt.Sprintf("[%s](%s)", selec.Text(), resolved)
			return &str
		},
	})

	excerpt, err := converter.ConvertString(body)
	if err != nil {
		return "", err
	}

	runes := []rune(excerpt)
	if len(runes) > maxExcerptRunes {
		excerpt = string(runes[:maxExcerptRunes]) + "\n\n_(truncated)_"
	}
	return strings.TrimSpace(excerpt), nil
}
