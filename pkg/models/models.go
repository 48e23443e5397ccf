package models

import "time"

// Event is one opaque, JSON-serializable payload produced by a collector.
// The queue tags it with an ID and enqueue timestamp; it never inspects
// the payload beyond checking that it is non-empty.
type Event struct {
	ID         string         `json:"id"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
	Payload    map[string]any `json:"payload"`
}

// Batch is a point-in-time snapshot of queued events handed to a transport.
// Timestamp is unix milliseconds at flush time.
type Batch struct {
	Events    []Event `json:"events"`
	BatchSize int     `json:"batchSize"`
	Timestamp int64   `json:"timestamp"`
}

// Page holds the fetched and parsed state of a single URL that collectors
// read their signals from.
type Page struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	Title        string            `json:"title,omitempty"`
	HTML         string            `json:"html,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`
	TTFB         int64             `json:"ttfb_ms"`
	HTMLBytes    int64             `json:"html_bytes"`

	// Timing is populated by the renderer (navigation timing read from the
	// browser); nil for static fetches.
	Timing *NavigationTiming `json:"timing,omitempty"`
}

// NavigationTiming mirrors the subset of the browser performance timeline
// the performance collector reports.
type NavigationTiming struct {
	DNSLookupMs        int64 `json:"dns_lookup_ms"`
	ConnectMs          int64 `json:"connect_ms"`
	TTFBMs             int64 `json:"ttfb_ms"`
	DOMContentLoadedMs int64 `json:"dom_content_loaded_ms"`
	LoadMs             int64 `json:"load_ms"`
}

// FetchMode defines how a page is acquired
type FetchMode string

const (
	ModeAuto   FetchMode = "auto"
	ModeStatic FetchMode = "static"
	ModeRender FetchMode = "render"
)

// FetchOptions contains options for acquiring a page
type FetchOptions struct {
	URL     string
	Mode    FetchMode
	Headers map[string]string
	Timeout time.Duration
	Proxy   string
}

// ScanReport aggregates the collector payloads produced for one page,
// used by the CLI output writers and the history store.
type ScanReport struct {
	ScanID    string           `json:"scan_id"`
	URL       string           `json:"url"`
	Title     string           `json:"title,omitempty"`
	ScannedAt time.Time        `json:"scanned_at"`
	Signals   []map[string]any `json:"signals"`
}

// ScanResult pairs a report with its error for batch scans
type ScanResult struct {
	URL    string
	Report *ScanReport
	Error  error
}

// Backlink is one observed link from a scanned page to another page,
// recorded in the history store.
type Backlink struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Anchor    string    `json:"anchor,omitempty"`
	NoFollow  bool      `json:"nofollow"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
