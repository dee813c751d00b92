package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/yt-summarizer/internal/models"
)

func sampleUser() models.UserProfile {
	return models.UserProfile{
		ID:                      42,
		Username:                "alice",
		Email:                   "alice@example.com",
		UserType:                models.UserTypePremium,
		DailyLimit:              50,
		MaxVideoDurationSeconds: 3600,
		CreatedAt:               models.Timestamp{Time: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		"file":   NewFileStore(t.TempDir()),
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			user := sampleUser()
			require.NoError(t, s.Save("tok-123", user))

			token, got, err := s.Read()
			require.NoError(t, err)
			assert.Equal(t, "tok-123", token)
			require.NotNil(t, got)
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, user.Username, got.Username)
			assert.Equal(t, user.UserType, got.UserType)
			assert.True(t, user.CreatedAt.Equal(got.CreatedAt.Time))
		})
	}
}

func TestStoreEmptyAndClear(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			token, user, err := s.Read()
			require.NoError(t, err)
			assert.Empty(t, token)
			assert.Nil(t, user)

			require.NoError(t, s.Save("tok", sampleUser()))
			require.NoError(t, s.Clear())
			require.NoError(t, s.Clear(), "clearing twice must be harmless")

			token, user, err = s.Read()
			require.NoError(t, err)
			assert.Empty(t, token)
			assert.Nil(t, user)
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save("first", sampleUser()))
			second := sampleUser()
			second.Username = "bob"
			require.NoError(t, s.Save("second", second))

			token, user, err := s.Read()
			require.NoError(t, err)
			assert.Equal(t, "second", token)
			assert.Equal(t, "bob", user.Username)
		})
	}
}

func TestFileStorePermissionsAndCorruption(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	require.NoError(t, fs.Save("tok", sampleUser()))

	info, err := os.Stat(fs.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, os.WriteFile(fs.Path(), []byte("{not json"), 0600))
	token, user, err := fs.Read()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileStoreWatchSeesExternalClear(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	require.NoError(t, fs.Save("tok", sampleUser()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	require.NoError(t, fs.Watch(ctx, func() { changed <- struct{}{} }))

	// Another process logging out
	require.NoError(t, NewFileStore(dir).Clear())

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected watcher to report the removal")
	}
}

func TestOpen(t *testing.T) {
	s, err := Open("file", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open("sqlite", t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.(*SQLiteStore).Close()

	_, err = Open("redis", t.TempDir())
	assert.Error(t, err)
}
