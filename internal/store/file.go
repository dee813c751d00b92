// ABOUTME: JSON file session store in the XDG config directory
// ABOUTME: Writes atomically with owner-only permissions and can watch for external changes

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/markalston/yt-summarizer/internal/models"
)

const sessionFileName = "session.json"

// FileStore persists the session as a JSON document
type FileStore struct {
	dir string
}

type sessionData struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

// NewFileStore creates a store that keeps session.json under dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the location of the session file
func (fs *FileStore) Path() string {
	return filepath.Join(fs.dir, sessionFileName)
}

// Read loads the session file. A missing or corrupt file reads as empty.
func (fs *FileStore) Read() (string, *models.UserProfile, error) {
	data, err := os.ReadFile(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s sessionData
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Debug("ignoring corrupt session file", "path", fs.Path(), "error", err)
		return "", nil, nil
	}
	return s.Token, decodeUser(s.User), nil
}

func (fs *FileStore) Save(token string, user models.UserProfile) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sessionData{Token: token, User: raw}, "", "  ")
	if err != nil {
		return err
	}
	return fs.write(data)
}

func (fs *FileStore) Clear() error {
	err := os.Remove(fs.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// write replaces the session file through a temp file and rename
func (fs *FileStore) write(data []byte) error {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, sessionFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmpName, fs.Path()); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Watch calls fn whenever the session file is created, rewritten or removed
// by any process, until ctx is done. The directory is watched rather than
// the file so that atomic renames and removals are seen.
func (fs *FileStore) Watch(ctx context.Context, fn func()) error {
	if err := os.MkdirAll(fs.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(fs.dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", fs.dir, err)
	}

	go func() {
		defer w.Close()
		target := fs.Path()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
					fn()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Debug("session watcher error", "error", err)
			}
		}
	}()
	return nil
}
