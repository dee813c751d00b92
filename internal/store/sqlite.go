// ABOUTME: SQLite session store backed by a key/value table
// ABOUTME: Uses the pure-Go modernc driver so no cgo toolchain is needed

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/markalston/yt-summarizer/internal/models"
)

const (
	sqliteFileName = "session.db"
	schema         = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`
)

// SQLiteStore persists the session in session.db
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) session.db under dir
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	path := filepath.Join(dir, sqliteFileName)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init session schema: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(token string, user models.UserProfile) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}
	return s.inTx(func(tx *sql.Tx) error {
		if err := set(tx, KeyToken, []byte(token)); err != nil {
			return err
		}
		return set(tx, KeyUser, raw)
	})
}

func (s *SQLiteStore) Read() (string, *models.UserProfile, error) {
	token, err := s.get(KeyToken)
	if err != nil {
		return "", nil, err
	}
	user, err := s.get(KeyUser)
	if err != nil {
		return "", nil, err
	}
	return string(token), decodeUser(user), nil
}

func (s *SQLiteStore) Clear() error {
	return s.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM kv WHERE key IN (?, ?)`, KeyToken, KeyUser)
		if err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func set(tx *sql.Tx, key string, value []byte) error {
	_, err := tx.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
