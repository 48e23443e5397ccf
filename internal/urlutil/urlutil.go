package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateURL performs comprehensive URL validation
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: must be http or https, got %s", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("invalid URL: missing host")
	}

	return nil
}

// ResolveURL resolves a possibly-relative href against a base URL and returns a string
func ResolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}

// Host extracts the lowercased host of a URL, with any www. prefix stripped
func Host(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// IsInternal reports whether href points at the same site as base once
// resolved. Fragment-only and non-HTTP hrefs (mailto:, tel:, javascript:)
// count as internal noise, not external links.
func IsInternal(base, href string) bool {
	resolved := ResolveURL(base, href)
	u, err := url.Parse(resolved)
	if err != nil {
		return true
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return true
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "" || host == Host(base)
}
