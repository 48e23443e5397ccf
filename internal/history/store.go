// Package history persists scan results and the observed backlink graph
// in a local SQLite database. The batching queue itself keeps no persisted
// state; history is a CLI-side ledger only.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/seolens/seolens/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	scan_id    TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	title      TEXT,
	scanned_at INTEGER NOT NULL,
	signals    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_url ON scans(url, scanned_at);

CREATE TABLE IF NOT EXISTS backlinks (
	source     TEXT NOT NULL,
	target     TEXT NOT NULL,
	anchor     TEXT,
	nofollow   INTEGER NOT NULL DEFAULT 0,
	first_seen INTEGER NOT NULL,
	last_seen  INTEGER NOT NULL,
	PRIMARY KEY (source, target)
);
CREATE INDEX IF NOT EXISTS idx_backlinks_target ON backlinks(target);
`

// Store wraps the SQLite connection
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the history database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("History store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordScan stores one scan report; signal payloads are kept as JSON
func (s *Store) RecordScan(report *models.ScanReport) error {
	signals, err := json.Marshal(report.Signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO scans (scan_id, url, title, scanned_at, signals) VALUES (?, ?, ?, ?, ?)`,
		report.ScanID, report.URL, report.Title, report.ScannedAt.UTC().Unix(), string(signals),
	)
	return err
}

// RecentScans returns up to limit scans, newest first, optionally filtered
// by URL (empty url means all).
func (s *Store) RecentScans(url string, limit int) ([]models.ScanReport, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT scan_id, url, title, scanned_at, signals FROM scans`
	args := []any{}
	if url != "" {
		query += ` WHERE url = ?`
		args = append(args, url)
	}
	query += ` ORDER BY scanned_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.ScanReport
	for rows.Next() {
		var r models.ScanReport
		var scannedAt int64
		var signals string
		if err := rows.Scan(&r.ScanID, &r.URL, &r.Title, &scannedAt, &signals); err != nil {
			return nil, err
		}
		r.ScannedAt = time.Unix(scannedAt, 0).UTC()
		if err := json.Unmarshal([]byte(signals), &r.Signals); err != nil {
			return nil, fmt.Errorf("corrupt signals for scan %s: %w", r.ScanID, err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// RecordBacklinks upserts observed links; repeated observations only move
// last_seen forward.
func (s *Store) RecordBacklinks(links []models.Backlink) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO backlinks (source, target, anchor, nofollow, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, target) DO UPDATE SET
			anchor = excluded.anchor,
			nofollow = excluded.nofollow,
			last_seen = excluded.last_seen`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range links {
		nofollow := 0
		if l.NoFollow {
			nofollow = 1
		}
		if _, err := stmt.Exec(l.Source, l.Target, l.Anchor, nofollow,
			l.FirstSeen.UTC().Unix(), l.LastSeen.UTC().Unix()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// BacklinksTo returns all recorded links pointing at target
func (s *Store) BacklinksTo(target string) ([]models.Backlink, error) {
	rows, err := s.db.Query(
		`SELECT source, target, anchor, nofollow, first_seen, last_seen
		 FROM backlinks WHERE target = ? ORDER BY last_seen DESC`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBacklinks(rows)
}

// BacklinksFrom returns all recorded links on the given source page
func (s *Store) BacklinksFrom(source string) ([]models.Backlink, error) {
	rows, err := s.db.Query(
		`SELECT source, target, anchor, nofollow, first_seen, last_seen
		 FROM backlinks WHERE source = ? ORDER BY last_seen DESC`, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBacklinks(rows)
}

func scanBacklinks(rows *sql.Rows) ([]models.Backlink, error) {
	var links []models.Backlink
	for rows.Next() {
		var l models.Backlink
		var nofollow int
		var firstSeen, lastSeen int64
		if err := rows.Scan(&l.Source, &l.Target, &l.Anchor, &nofollow, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		l.NoFollow = nofollow == 1
		l.FirstSeen = time.Unix(firstSeen, 0).UTC()
		l.LastSeen = time.Unix(lastSeen, 0).UTC()
		links = append(links, l)
	}
	return links, rows.Err()
}
