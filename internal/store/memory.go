// ABOUTME: In-memory session store used by tests and ephemeral sessions
// ABOUTME: Holds the token and user behind a mutex; nothing touches disk

package store

import (
	"sync"

	"github.com/markalston/yt-summarizer/internal/models"
)

// MemoryStore keeps the session in process memory only
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  []byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(token string, user models.UserProfile) error {
	data, err := encodeUser(user)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = data
	return nil
}

func (m *MemoryStore) Read() (string, *models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, decodeUser(m.user), nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}
