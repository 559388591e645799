package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // CGO-free SQLite

	applog "sportkal/internal/log"
)

// SQLiteStore is the durable store, a single kv table in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the store database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS kv(
	  key   TEXT PRIMARY KEY,
	  value BLOB NOT NULL
	);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Read(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			logger := applog.WithComponent("store")
			logger.Warn().Err(err).Str("key", key).Msg("read failed")
		}
		return nil, false
	}
	return value, true
}

func (s *SQLiteStore) Write(key string, value []byte) {
	_, err := s.db.Exec(
		`INSERT INTO kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		logger := applog.WithComponent("store")
		logger.Warn().Err(err).Str("key", key).Msg("write failed")
	}
}

func (s *SQLiteStore) Remove(key string) {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		logger := applog.WithComponent("store")
		logger.Warn().Err(err).Str("key", key).Msg("remove failed")
	}
}
