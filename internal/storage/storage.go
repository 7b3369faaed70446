// Package storage provides SQLite-backed persistence for data fetched at runtime.
// It caches Relisten show-detail lookups with their fetch time, including lookups
// that found nothing, and keeps a ledger of announced daily picks.
//
// Freshness is decided by the caller: GetDetails returns whatever was stored and
// when, and PruneDetails drops rows older than a cutoff.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rewired-gh/deadredux/internal/models"
)

// ErrNotCached is returned when no details row exists for a date.
var ErrNotCached = errors.New("details not cached")

const schema = `
CREATE TABLE IF NOT EXISTS show_details (
	show_date  TEXT PRIMARY KEY,
	found      INTEGER NOT NULL,
	payload    TEXT,
	fetched_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_show_details_fetched ON show_details(fetched_at);

CREATE TABLE IF NOT EXISTS announcements (
	featured_date TEXT PRIMARY KEY,
	show_date     TEXT NOT NULL,
	message_id    INTEGER NOT NULL DEFAULT 0,
	sent_at       INTEGER NOT NULL
);
`

// Storage is safe for concurrent use.
type Storage struct {
	db   *sql.DB
	path string
}

// CachedDetails is one stored lookup. Details is nil when Relisten had no show.
type CachedDetails struct {
	Details   *models.ShowDetails
	FetchedAt time.Time
}

// New opens (creating if needed) the database at path. ":memory:" opens a
// private in-memory database.
func New(path string) (*Storage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every pooled connection to ":memory:" would otherwise see its own database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Storage{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetDetails returns the stored lookup for a show date, or ErrNotCached.
func (s *Storage) GetDetails(ctx context.Context, showDate string) (*CachedDetails, error) {
	var (
		found     bool
		payload   sql.NullString
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT found, payload, fetched_at FROM show_details WHERE show_date = ?`,
		showDate,
	).Scan(&found, &payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("query details %s: %w", showDate, err)
	}

	cached := &CachedDetails{FetchedAt: time.UnixMilli(fetchedAt).UTC()}
	if found {
		var details models.ShowDetails
		if err := json.Unmarshal([]byte(payload.String), &details); err != nil {
			return nil, fmt.Errorf("decode details %s: %w", showDate, err)
		}
		cached.Details = &details
	}
	return cached, nil
}

// PutDetails stores a lookup result. A nil details records that the show has
// no details upstream.
func (s *Storage) PutDetails(ctx context.Context, showDate string, details *models.ShowDetails, fetchedAt time.Time) error {
	var payload sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode details %s: %w", showDate, err)
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO show_details (show_date, found, payload, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(show_date) DO UPDATE SET
			found = excluded.found,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		showDate, details != nil, payload, fetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store details %s: %w", showDate, err)
	}
	return nil
}

// PruneDetails deletes lookups fetched before cutoff and returns how many were removed.
func (s *Storage) PruneDetails(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM show_details WHERE fetched_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune details: %w", err)
	}
	return res.RowsAffected()
}

// RecordAnnouncement stores a sent announcement. Recording the same featured
// date twice keeps the first row.
func (s *Storage) RecordAnnouncement(ctx context.Context, a *models.Announcement) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid announcement: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO announcements (featured_date, show_date, message_id, sent_at)
		 VALUES (?, ?, ?, ?)`,
		a.FeaturedDate, a.ShowDate, a.MessageID, a.SentAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record announcement %s: %w", a.FeaturedDate, err)
	}
	return nil
}

// IsAnnounced reports whether the pick for featuredDate was already announced.
func (s *Storage) IsAnnounced(ctx context.Context, featuredDate string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM announcements WHERE featured_date = ?`, featuredDate,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query announcement %s: %w", featuredDate, err)
	}
	return n > 0, nil
}

// LastAnnouncement returns the most recent announcement, or nil when none exist.
func (s *Storage) LastAnnouncement(ctx context.Context) (*models.Announcement, error) {
	var (
		a      models.Announcement
		sentAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT featured_date, show_date, message_id, sent_at
		 FROM announcements ORDER BY featured_date DESC LIMIT 1`,
	).Scan(&a.FeaturedDate, &a.ShowDate, &a.MessageID, &sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last announcement: %w", err)
	}
	a.SentAt = time.UnixMilli(sentAt).UTC()
	return &a, nil
}
