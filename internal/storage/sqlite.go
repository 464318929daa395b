// Package storage provides persistent backends for the vision signal cache.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/raine/product-attributes/internal/vision"
)

// SQLiteStore caches normalized vision signals in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.RWMutex
	now func() time.Time
}

var _ vision.SignalStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the cache database at dbPath. Entries older
// than ttl are treated as misses; a zero ttl keeps entries forever.
func NewSQLiteStore(dbPath string, ttl time.Duration) (*SQLiteStore, error) {
	// WAL mode and a busy timeout let several CLI runs share one file
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions once the file exists
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", dbPath).Msg("failed to restrict cache file permissions")
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		signals TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetSignals retrieves cached signals by image hash.
// Returns nil, nil if no fresh entry exists.
func (s *SQLiteStore) GetSignals(ctx context.Context, imageHash string) (*vision.Signals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT signals, created_at FROM vision_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&data, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(createdAt, 0)) > s.ttl {
		return nil, nil
	}

	return decodeSignals([]byte(data))
}

// SetSignals stores signals under the image hash, replacing any older entry.
func (s *SQLiteStore) SetSignals(ctx context.Context, imageHash string, signals *vision.Signals) error {
	data, err := encodeSignals(signals)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vision_cache (image_hash, signals, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			signals = excluded.signals,
			created_at = excluded.created_at
	`, imageHash, string(data), s.now().Unix())

	if err != nil {
		return fmt.Errorf("failed to cache vision signals: %w", err)
	}
	return nil
}

// Purge deletes entries older than the store TTL and returns how many were
// removed.
func (s *SQLiteStore) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM vision_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge vision cache: %w", err)
	}
	return res.RowsAffected()
}
