package inkpress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/inkpress/content"
)

// Store wraps a SQLite database holding uploaded image metadata and the
// publish log. Content itself lives on disk, not here.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the scheduler write while handlers read; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS publish_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    type TEXT NOT NULL,
    item_id TEXT NOT NULL,
    slug TEXT NOT NULL,
    published_at TEXT NOT NULL,
    flipped_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_publish_log_flipped ON publish_log (flipped_at);
`)
	return err
}

// SaveImage upserts image metadata.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns every image, newest upload first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether filename is already recorded.
func (s *Store) ImageExists(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM images WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// RecordPublishRun stores every flipped item of one publisher run in a
// single transaction.
func (s *Store) RecordPublishRun(ctx context.Context, runID string, flipped []content.Published) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO publish_log (run_id, type, item_id, slug, published_at, flipped_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range flipped {
		if _, err := stmt.ExecContext(ctx, runID, string(p.Type), p.ID, p.Slug,
			p.PublishedAt.UTC().Format(time.RFC3339Nano), p.FlippedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("log %s/%s: %w", p.Type, p.ID, err)
		}
	}
	return tx.Commit()
}

// ListPublishLog returns up to limit records, most recent first.
func (s *Store) ListPublishLog(ctx context.Context, limit int) ([]PublishRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, type, item_id, slug, published_at, flipped_at FROM publish_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []PublishRecord{}
	for rows.Next() {
		var r PublishRecord
		var publishedAt, flippedAt string
		if err := rows.Scan(&r.RunID, &r.Type, &r.ItemID, &r.Slug, &publishedAt, &flippedAt); err != nil {
			return nil, err
		}
		if r.PublishedAt, err = time.Parse(time.RFC3339Nano, publishedAt); err != nil {
			return nil, err
		}
		if r.FlippedAt, err = time.Parse(time.RFC3339Nano, flippedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
