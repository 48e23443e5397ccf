package history

import (
	"testing"
	"time"

	"github.com/seolens/seolens/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ScanRoundTrip(t *testing.T) {
	s := openTestStore(t)

	report := &models.ScanReport{
		ScanID:    "scan-1",
		URL:       "https://example.com/",
		Title:     "Example",
		ScannedAt: time.Now().UTC().Truncate(time.Second),
		Signals: []map[string]any{
			{"type": "meta", "title": "Example"},
			{"type": "links", "total": float64(3)},
		},
	}

	if err := s.RecordScan(report); err != nil {
		t.Fatalf("RecordScan failed: %v", err)
	}

	got, err := s.RecentScans("", 10)
	if err != nil {
		t.Fatalf("RecentScans failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 scan, got %d", len(got))
	}
	if got[0].ScanID != "scan-1" || got[0].Title != "Example" {
		t.Errorf("Unexpected scan: %+v", got[0])
	}
	if len(got[0].Signals) != 2 || got[0].Signals[0]["type"] != "meta" {
		t.Errorf("Signals not round-tripped: %v", got[0].Signals)
	}
}

func TestStore_RecentScans_FilterAndOrder(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, url := range []string{"https://a.test/", "https://b.test/", "https://a.test/"} {
		err := s.RecordScan(&models.ScanReport{
			ScanID:    string(rune('x' + i)),
			URL:       url,
			ScannedAt: base.Add(time.Duration(i) * time.Minute),
			Signals:   []map[string]any{},
		})
		if err != nil {
			t.Fatalf("RecordScan failed: %v", err)
		}
	}

	got, err := s.RecentScans("https://a.test/", 10)
	if err != nil {
		t.Fatalf("RecentScans failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 scans for URL, got %d", len(got))
	}
	if !got[0].ScannedAt.After(got[1].ScannedAt) {
		t.Error("Expected newest-first ordering")
	}
}

func TestStore_Backlinks_Upsert(t *testing.T) {
	s := openTestStore(t)

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	links := []models.Backlink{
		{Source: "https://a.test/", Target: "https://b.test/", Anchor: "B", FirstSeen: first, LastSeen: first},
		{Source: "https://a.test/", Target: "https://c.test/", NoFollow: true, FirstSeen: first, LastSeen: first},
	}
	if err := s.RecordBacklinks(links); err != nil {
		t.Fatalf("RecordBacklinks failed: %v", err)
	}

	// Re-observe the first link later with a new anchor
	later := first.Add(time.Hour)
	err := s.RecordBacklinks([]models.Backlink{
		{Source: "https://a.test/", Target: "https://b.test/", Anchor: "B updated", FirstSeen: later, LastSeen: later},
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := s.BacklinksTo("https://b.test/")
	if err != nil {
		t.Fatalf("BacklinksTo failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 backlink after upsert, got %d", len(got))
	}
	if got[0].Anchor != "B updated" {
		t.Errorf("Anchor not updated: %q", got[0].Anchor)
	}
	if !got[0].FirstSeen.Equal(first) {
		t.Errorf("first_seen must not move on upsert: %v", got[0].FirstSeen)
	}
	if !got[0].LastSeen.Equal(later) {
		t.Errorf("last_seen should advance: %v", got[0].LastSeen)
	}

	from, err := s.BacklinksFrom("https://a.test/")
	if err != nil {
		t.Fatalf("BacklinksFrom failed: %v", err)
	}
	if len(from) != 2 {
		t.Errorf("Expected 2 outbound links, got %d", len(from))
	}
	var sawNoFollow bool
	for _, l := range from {
		if l.Target == "https://c.test/" && l.NoFollow {
			sawNoFollow = true
		}
	}
	if !sawNoFollow {
		t.Error("NoFollow flag not round-tripped")
	}
}
