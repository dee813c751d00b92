// ABOUTME: Tests for the audio download panel
// ABOUTME: Files land in the download directory under their final name only

package audio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/client"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
	"github.com/markalston/yt-summarizer/internal/youtube"
)

const videoURL = "https://youtu.be/dQw4w9WgXcQ"

type fakeAPI struct {
	calls int
	body  string
	name  string
	err   error
}

func (f *fakeAPI) DownloadAudio(_ context.Context, url string) (*client.AudioDownload, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	name := f.name
	if name == "" {
		name = youtube.AudioFileName(url)
	}
	return &client.AudioDownload{
		Body:          io.NopCloser(strings.NewReader(f.body)),
		ContentLength: int64(len(f.body)),
		FileName:      name,
	}, nil
}

func savedFrom(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected batch from Submit")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(savedMsg); ok {
			return msg
		}
	}
	t.Fatal("no download command in batch")
	return nil
}

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	api := &fakeAPI{body: "ID3 frames"}

	path, n, err := Save(context.Background(), api, videoURL, dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "youtube_audio_dQw4w9WgXcQ.mp3") {
		t.Errorf("path = %s", path)
	}
	if n != int64(len("ID3 frames")) {
		t.Errorf("bytes = %d", n)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "ID3 frames" {
		t.Errorf("file content = %q, err = %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the mp3 in dir, got %d entries", len(entries))
	}
}

func TestSubmitValidatesFirst(t *testing.T) {
	api := &fakeAPI{}
	m := New(context.Background(), api, t.TempDir())
	m.SetURL("not a url")

	if cmd := m.Submit(); cmd != nil {
		t.Error("invalid URL should not start a download")
	}
	if m.Err() != youtube.ErrInvalidURL.Error() {
		t.Errorf("err = %q", m.Err())
	}
	if api.calls != 0 {
		t.Errorf("backend called %d times", api.calls)
	}
}

func TestSuccessfulDownloadRefetchesQuota(t *testing.T) {
	dir := t.TempDir()
	m := New(context.Background(), &fakeAPI{body: "ID3"}, dir)
	m.SetURL(videoURL)

	cmd := m.Submit()
	if !m.InFlight() {
		t.Fatal("should be in flight")
	}
	_, follow := m.Update(savedFrom(t, cmd))

	if m.InFlight() {
		t.Error("should be idle after completion")
	}
	if !strings.Contains(m.Success(), "youtube_audio_dQw4w9WgXcQ.mp3") {
		t.Errorf("success = %q", m.Success())
	}
	if follow == nil {
		t.Fatal("expected a follow-up command")
	}
	if _, ok := follow().(panels.QuotaChangedMsg); !ok {
		t.Error("expected a quota refetch")
	}
}

func TestDownloadFailureShowsBackendMessage(t *testing.T) {
	api := &fakeAPI{err: &client.APIError{StatusCode: 400, Message: "Video unavailable"}}
	m := New(context.Background(), api, t.TempDir())
	m.SetURL(videoURL)

	m.Update(savedFrom(t, m.Submit()))
	if !strings.Contains(m.Err(), "unavailable or has been removed") {
		t.Errorf("err = %q", m.Err())
	}
}

func TestFragmentURLSavesInsideDownloadDir(t *testing.T) {
	dir := t.TempDir()
	path, _, err := Save(context.Background(), &fakeAPI{body: "ID3"},
		"https://youtu.be/dQw4w9WgXcQ#/../../../tmp/evil", dir)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(dir, "youtube_audio_dQw4w9WgXcQ.mp3") {
		t.Errorf("path = %s", path)
	}
}

func TestSaveRejectsPathLikeNames(t *testing.T) {
	for _, name := range []string{"..", "../evil.mp3", "sub/evil.mp3", `..\evil.mp3`, ""} {
		dir := t.TempDir()
		api := &fakeAPI{body: "ID3", name: name}
		if name == "" {
			api.name = "."
		}
		if _, _, err := Save(context.Background(), api, videoURL, dir); err == nil {
			t.Errorf("expected %q to be refused", api.name)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("%q: expected nothing written, got %d entries", api.name, len(entries))
		}
	}
}

func TestResetDropsInFlightDownload(t *testing.T) {
	m := New(context.Background(), &fakeAPI{body: "ID3"}, t.TempDir())
	m.SetURL(videoURL)
	stale := savedFrom(t, m.Submit())

	m.Reset()
	_, follow := m.Update(stale)
	if follow != nil {
		t.Error("stale download should not refetch quota")
	}
	if m.Success() != "" {
		t.Errorf("success = %q", m.Success())
	}
}
