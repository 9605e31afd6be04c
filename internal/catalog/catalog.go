package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shortsd/internal/providers"
	"shortsd/internal/structures"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so that TEXT ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS videos (
    video_id         TEXT PRIMARY KEY,
    title            TEXT NOT NULL DEFAULT '',
    channel_title    TEXT NOT NULL DEFAULT '',
    published_at     TEXT NOT NULL DEFAULT '',
    duration_sec     INTEGER NOT NULL DEFAULT 0,
    is_short         INTEGER NOT NULL DEFAULT 1,
    region           TEXT NOT NULL DEFAULT '',
    first_seen       TEXT NOT NULL,
    last_seen        TEXT NOT NULL,
    primary_genre    TEXT,
    genre_confidence REAL NOT NULL DEFAULT 0.0
);

CREATE TABLE IF NOT EXISTS stats (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    video_id      TEXT NOT NULL REFERENCES videos(video_id),
    snapshot_date TEXT NOT NULL,
    view_count    INTEGER NOT NULL DEFAULT 0,
    like_count    INTEGER,
    comment_count INTEGER
);

CREATE TABLE IF NOT EXISTS downloads (
    video_id      TEXT PRIMARY KEY,
    audio_path    TEXT NOT NULL,
    downloaded_at TEXT NOT NULL,
    duration_sec  INTEGER NOT NULL DEFAULT 0,
    format        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_videos_short_last_seen ON videos(is_short, last_seen);
CREATE INDEX IF NOT EXISTS idx_videos_genre ON videos(primary_genre, genre_confidence);
CREATE INDEX IF NOT EXISTS idx_stats_video_date ON stats(video_id, snapshot_date);
`

// Store is the SQLite backed video catalog. Writes are serialised so that
// snapshots of one video are appended in call order.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}
	// one connection keeps PRAGMAs and :memory: databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// NewCatalogProvider opens the configured catalog for dependency injection.
func NewCatalogProvider(conf *structures.Config, logger providers.Logger) (*Store, func(), error) {
	s, err := Open(conf.Catalog.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof(providers.TypeApp, "Catalog opened at %s", conf.Catalog.DBPath)
	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Closing catalog: %s", err)
		}
	}
	return s, cleanup, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SetClock replaces the time source used for first/last seen stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
