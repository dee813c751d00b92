// ABOUTME: Persisted session store contract and backend selection
// ABOUTME: Holds the bearer token and cached user profile across process restarts

package store

import (
	"encoding/json"
	"fmt"

	"github.com/markalston/yt-summarizer/internal/models"
)

// Keys under which the session is persisted
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store persists the session between runs. Implementations never validate
// the token and never touch the network.
type Store interface {
	// Save writes both the token and the serialized profile
	Save(token string, user models.UserProfile) error
	// Read returns the persisted token and profile. Absent values are
	// returned as "" and nil without an error.
	Read() (string, *models.UserProfile, error)
	// Clear removes both keys
	Clear() error
}

// Open returns the store for the named backend rooted at dir
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dir), nil
	case "sqlite":
		return OpenSQLite(dir)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q: options are file, sqlite, memory", backend)
	}
}

func encodeUser(user models.UserProfile) ([]byte, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return data, nil
}

// decodeUser treats unreadable profile data as absent
func decodeUser(data []byte) *models.UserProfile {
	if len(data) == 0 {
		return nil
	}
	var user models.UserProfile
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}
	return &user
}
