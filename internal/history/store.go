package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/GNOME/totem-sub005/internal/disc"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// timestampLayout is fixed width so detected_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages detection history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add stores entry, assigning an ID and timestamp when they are unset.
func (s *Store) Add(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Device == "" {
		return Entry{}, fmt.Errorf("history entry has no device")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.DetectedAt.IsZero() {
		entry.DetectedAt = time.Now()
	}
	entry.DetectedAt = entry.DetectedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO detections (id, device, source, media_type, mrl, error, detected_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Device,
		string(entry.Source),
		entry.MediaType.String(),
		nullableString(entry.MRL),
		nullableString(entry.Error),
		entry.DetectedAt.Format(timestampLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert detection: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, device, source, media_type, mrl, error, detected_at
         FROM detections ORDER BY detected_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate detections: %w", err)
	}
	return entries, nil
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM detections`)
	if err != nil {
		return 0, fmt.Errorf("clear detections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry      Entry
		source     string
		mediaType  string
		mrl        sql.NullString
		errText    sql.NullString
		detectedAt string
	)
	if err := rows.Scan(&entry.ID, &entry.Device, &source, &mediaType, &mrl, &errText, &detectedAt); err != nil {
		return Entry{}, fmt.Errorf("scan detection: %w", err)
	}
	parsed, err := disc.ParseMediaType(mediaType)
	if err != nil {
		return Entry{}, fmt.Errorf("detection %s: %w", entry.ID, err)
	}
	ts, err := time.Parse(timestampLayout, detectedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("detection %s: parse timestamp: %w", entry.ID, err)
	}
	entry.Source = Source(source)
	entry.MediaType = parsed
	entry.MRL = mrl.String
	entry.Error = errText.String
	entry.DetectedAt = ts
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
