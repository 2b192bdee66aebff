package draft

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createDraftsTable = `
CREATE TABLE IF NOT EXISTS drafts (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// SQLiteStore persists drafts in a local SQLite file: the device-scoped
// durable key→JSON store of the engine.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the draft database at path. Use
// ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("draft: sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("draft: open sqlite store: %w", err)
	}
	// The store is hit from the autosave goroutine and user actions at the
	// same time; a single connection sidesteps SQLITE_BUSY on writes.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createDraftsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("draft: create drafts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save overwrites the snapshot stored under key.
func (s *SQLiteStore) Save(key string, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("draft: encode record: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO drafts (key, payload, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		storageKey(key), string(payload))
	if err != nil {
		return fmt.Errorf("draft: save %q: %w", key, err)
	}
	return nil
}

// Load returns the snapshot stored under key, if any.
func (s *SQLiteStore) Load(key string) (Record, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM drafts WHERE key = ?`, storageKey(key)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("draft: load %q: %w", key, err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return Record{}, false, fmt.Errorf("draft: decode %q: %w", key, err)
	}
	return rec, true, nil
}

// Delete removes the snapshot stored under key.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE key = ?`, storageKey(key)); err != nil {
		return fmt.Errorf("draft: delete %q: %w", key, err)
	}
	return nil
}

// Keys lists every stored draft key (without the namespace prefix), newest
// first. Used by the drafts CLI listing.
func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("draft: list keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("draft: scan key: %w", err)
		}
		if len(key) > len(keyPrefix) && key[:len(keyPrefix)] == keyPrefix {
			key = key[len(keyPrefix):]
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
