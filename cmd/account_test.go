// ABOUTME: Tests for the account and audio commands
// ABOUTME: Usage output, tier changes reaching the stored profile, and audio downloads

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markalston/yt-summarizer/internal/client/clienttest"
	"github.com/markalston/yt-summarizer/internal/models"
)

func TestStats(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)
	srv.AddSummary("alice", models.SummaryRecord{VideoTitle: "One"})

	var buf bytes.Buffer
	if code := runStats(context.Background(), d, &buf); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	for _, expected := range []string{"0/5 used", "Remaining:  5", "1 all time", "FREE"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, buf.String())
		}
	}
}

func TestStatsSignedOut(t *testing.T) {
	srv, d := newTestDeps(t)

	var buf bytes.Buffer
	if code := runStats(context.Background(), d, &buf); code != exitFailure {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if srv.TotalHits() != 0 {
		t.Error("no request should be sent without a token")
	}
}

func TestLimits(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)

	var buf bytes.Buffer
	if code := runLimits(context.Background(), d, &buf); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	for _, expected := range []string{"FREE", "5 summaries", "10min per video"} {
		if !strings.Contains(buf.String(), expected) {
			t.Errorf("expected output to contain %q, got:\n%s", expected, buf.String())
		}
	}
}

func TestProfile(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)

	var buf bytes.Buffer
	if code := runProfile(context.Background(), d, &buf); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "alice@example.com") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestUpgradeUpdatesStoredProfile(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)

	var buf bytes.Buffer
	if code := runUpgrade(context.Background(), d, &buf, "premium"); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "PREMIUM, 50 summaries a day, videos up to 1h") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	_, user, err := d.store.Read()
	if err != nil || user == nil {
		t.Fatalf("expected stored profile, got %v %v", user, err)
	}
	if user.UserType != models.UserTypePremium || user.DailyLimit != 50 || user.MaxVideoDurationSeconds != 3600 {
		t.Errorf("stored profile not updated: %+v", user)
	}
}

func TestUpgradeInvalidType(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)

	var buf bytes.Buffer
	if code := runUpgrade(context.Background(), d, &buf, "gold"); code != exitFailure {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if srv.Hits(clienttest.RouteUpgrade) != 0 {
		t.Error("invalid tier should not reach the backend")
	}
}

func TestAudioSavesFile(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)
	dir := filepath.Join(t.TempDir(), "downloads")

	var buf bytes.Buffer
	if code := runAudio(context.Background(), d, &buf, videoURL, dir); code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if len(matches) != 1 {
		t.Fatalf("expected one mp3 in %s, got %v", dir, matches)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, clienttest.AudioBytes) {
		t.Error("file content does not match the stream")
	}
	if !strings.Contains(buf.String(), "Saved "+matches[0]) {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestAudioInvalidURL(t *testing.T) {
	srv, d := newTestDeps(t)
	signIn(t, srv, d)

	var buf bytes.Buffer
	if code := runAudio(context.Background(), d, &buf, "not a url", t.TempDir()); code != exitFailure {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if srv.Hits(clienttest.RouteAudio) != 0 {
		t.Error("invalid url should not reach the backend")
	}
}
