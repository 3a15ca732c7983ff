package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"libris/internal/config"
)

// ErrLocked indicates another process holds the store lock.
var ErrLocked = errors.New("store is locked by another process")

// SummaryRecord is a persisted summarization result.
type SummaryRecord struct {
	ID           string
	BookID       string
	Language     string
	Style        string
	SummaryText  string
	WordCount    int
	SourceHash   string
	Model        string
	FromMetadata bool
	CreatedAt    time.Time
}

// AudioRecord is a persisted audio rendering of a summary. The audio bytes
// live on disk at FilePath; only metadata is stored here.
type AudioRecord struct {
	ID                string
	SummaryID         string
	BookID            string
	Language          string
	Model             string
	Format            string
	FilePath          string
	DurationSeconds   float64
	SizeKB            int
	SyntheticFallback bool
	CreatedAt         time.Time
}

// Store persists summaries and audio metadata in SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the library database under the data
// directory. A file lock guards against concurrent writers from other
// processes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "libris.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "libris.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database and releases the store lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// SaveSummary inserts a summary record.
func (s *Store) SaveSummary(ctx context.Context, record SummaryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (
            id, book_id, language, style, summary_text,
            word_count, source_hash, model, from_metadata, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.BookID,
		record.Language,
		record.Style,
		record.SummaryText,
		record.WordCount,
		record.SourceHash,
		record.Model,
		boolToInt(record.FromMetadata),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// FindSummary returns the newest stored summary matching the book, language,
// style, and source content hash, or false when none exists.
func (s *Store) FindSummary(ctx context.Context, bookID, language, style, sourceHash string) (SummaryRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, book_id, language, style, summary_text,
                word_count, source_hash, model, from_metadata, created_at
           FROM summaries
          WHERE book_id = ? AND language = ? AND style = ? AND source_hash = ?
          ORDER BY created_at DESC
          LIMIT 1`,
		bookID, language, style, sourceHash,
	)
	record, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SummaryRecord{}, false, nil
	}
	if err != nil {
		return SummaryRecord{}, false, err
	}
	return record, true, nil
}

// ListSummaries returns the most recent summaries for a book, newest first.
func (s *Store) ListSummaries(ctx context.Context, bookID string, limit int) ([]SummaryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, language, style, summary_text,
                word_count, source_hash, model, from_metadata, created_at
           FROM summaries
          WHERE book_id = ?
          ORDER BY created_at DESC
          LIMIT ?`,
		bookID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var records []SummaryRecord
	for rows.Next() {
		record, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveAudio inserts an audio metadata record.
func (s *Store) SaveAudio(ctx context.Context, record AudioRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audio (
            id, summary_id, book_id, language, model, format,
            file_path, duration_seconds, size_kb, synthetic_fallback, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.SummaryID,
		record.BookID,
		record.Language,
		record.Model,
		record.Format,
		record.FilePath,
		record.DurationSeconds,
		record.SizeKB,
		boolToInt(record.SyntheticFallback),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert audio: %w", err)
	}
	return nil
}

// FindAudio returns the newest audio rendering of a summary in the given
// language, or false when none exists. An empty model matches any voice;
// a non-empty model restricts the lookup to that rendering.
func (s *Store) FindAudio(ctx context.Context, summaryID, language, model string) (AudioRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, summary_id, book_id, language, model, format,
                file_path, duration_seconds, size_kb, synthetic_fallback, created_at
           FROM audio
          WHERE summary_id = ? AND language = ?
            AND (? = '' OR model = ?)
          ORDER BY created_at DESC
          LIMIT 1`,
		summaryID, language, model, model,
	)
	record, err := scanAudio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AudioRecord{}, false, nil
	}
	if err != nil {
		return AudioRecord{}, false, err
	}
	return record, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (SummaryRecord, error) {
	var record SummaryRecord
	var fromMetadata int
	var createdAt string
	err := row.Scan(
		&record.ID,
		&record.BookID,
		&record.Language,
		&record.Style,
		&record.SummaryText,
		&record.WordCount,
		&record.SourceHash,
		&record.Model,
		&fromMetadata,
		&createdAt,
	)
	if err != nil {
		return SummaryRecord{}, err
	}
	record.FromMetadata = fromMetadata != 0
	record.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return SummaryRecord{}, fmt.Errorf("parse summary created_at: %w", err)
	}
	return record, nil
}

func scanAudio(row rowScanner) (AudioRecord, error) {
	var record AudioRecord
	var synthetic int
	var createdAt string
	err := row.Scan(
		&record.ID,
		&record.SummaryID,
		&record.BookID,
		&record.Language,
		&record.Model,
		&record.Format,
		&record.FilePath,
		&record.DurationSeconds,
		&record.SizeKB,
		&synthetic,
		&createdAt,
	)
	if err != nil {
		return AudioRecord{}, err
	}
	record.SyntheticFallback = synthetic != 0
	record.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return AudioRecord{}, fmt.Errorf("parse audio created_at: %w", err)
	}
	return record, nil
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
