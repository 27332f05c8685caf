// Package state persists per-target snapshots as string-keyed blobs in
// SQLite. The blob codec lives here too: current records are JSON, and
// legacy bare-string records (the original plain state files held just a
// hash) decode as a fingerprint with empty text.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Melyssali/swap2026/watch"
)

// Schema creates the snapshot table.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    target     TEXT PRIMARY KEY,
    blob       TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Config configures the store.
type Config struct {
	// MaxTextLen bounds the persisted normalized text so repeated large
	// pages cannot grow storage without bound. Default: 50000 runes.
	MaxTextLen int
}

func (c *Config) defaults() {
	if c.MaxTextLen <= 0 {
		c.MaxTextLen = 50000
	}
}

// Store reads and writes snapshots. Records are overwritten in place and
// never deleted by the core; retention is an external concern.
type Store struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// New creates a Store on an already-opened database. logger may be nil.
func New(db *sql.DB, cfg Config, logger *slog.Logger) *Store {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, config: cfg, logger: logger}
}

// ApplySchema creates the snapshot table.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// Load returns the snapshot for a target, or (nil, nil) when absent.
// A malformed blob also yields (nil, nil) with a warning: one bad write
// must never permanently wedge monitoring of a target.
func (s *Store) Load(ctx context.Context, target string) (*watch.Snapshot, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM snapshots WHERE target = ?`, target).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap, err := decodeSnapshot(blob)
	if err != nil {
		s.logger.Warn("corrupt snapshot discarded", "target", target, "error", err)
		return nil, nil
	}
	return snap, nil
}

// Save overwrites the snapshot for a target in a single upsert, so a
// concurrent reader never observes a half-written record. Text is
// truncated to MaxTextLen runes before encoding.
func (s *Store) Save(ctx context.Context, target string, snap *watch.Snapshot) error {
	bounded := *snap
	bounded.Text = truncateRunes(bounded.Text, s.config.MaxTextLen)

	blob, err := json.Marshal(&bounded)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (target, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(target) DO UPDATE SET
		   blob = excluded.blob, updated_at = excluded.updated_at`,
		target, string(blob), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
