// ABOUTME: Tests for the root command, global flags and shared wiring
// ABOUTME: Verifies flag precedence over the environment and error to exit code mapping

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/markalston/yt-summarizer/internal/client"
	"github.com/markalston/yt-summarizer/internal/client/clienttest"
	"github.com/markalston/yt-summarizer/internal/session"
	"github.com/markalston/yt-summarizer/internal/store"
)

func resetFlags() {
	apiURL = ""
	jsonOutput = false
	configDir = ""
	sessionBackend = ""
	ephemeral = false
	stdin = strings.NewReader("")
	lineReader = nil
}

// newTestDeps points every command at a fresh fake backend and config dir
func newTestDeps(t *testing.T) (*clienttest.Server, *deps) {
	t.Helper()
	srv := clienttest.NewServer(t)
	resetFlags()
	t.Cleanup(resetFlags)
	apiURL = srv.APIURL()
	configDir = t.TempDir()

	d, err := newDeps(false)
	if err != nil {
		t.Fatalf("newDeps: %v", err)
	}
	t.Cleanup(d.Close)
	return srv, d
}

// signIn creates alice on the fake backend and logs in through the CLI path
func signIn(t *testing.T, srv *clienttest.Server, d *deps) {
	t.Helper()
	srv.AddUser("alice", "alice@example.com", "secret1")
	if code := runLogin(context.Background(), d, io.Discard, "alice", "secret1"); code != exitOK {
		t.Fatalf("login failed with exit code %d", code)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	resetFlags()
	defer resetFlags()
	t.Setenv("YTS_API_URL", "http://env.example.com/api")
	apiURL = "http://flag.example.com/api/"
	configDir = t.TempDir()
	sessionBackend = "SQLite"

	d, err := newDeps(false)
	if err != nil {
		t.Fatalf("newDeps: %v", err)
	}
	defer d.Close()

	if d.cfg.APIURL != "http://flag.example.com/api" {
		t.Errorf("expected flag URL without trailing slash, got %s", d.cfg.APIURL)
	}
	if _, ok := d.store.(*store.SQLiteStore); !ok {
		t.Errorf("expected sqlite store, got %T", d.store)
	}
}

func TestEnvironmentUsedWithoutFlags(t *testing.T) {
	resetFlags()
	defer resetFlags()
	t.Setenv("YTS_API_URL", "http://env.example.com/api")
	t.Setenv("YTS_CONFIG_DIR", t.TempDir())

	d, err := newDeps(false)
	if err != nil {
		t.Fatalf("newDeps: %v", err)
	}
	defer d.Close()

	if d.cfg.APIURL != "http://env.example.com/api" {
		t.Errorf("expected env URL, got %s", d.cfg.APIURL)
	}
	if _, ok := d.store.(*store.FileStore); !ok {
		t.Errorf("expected file store by default, got %T", d.store)
	}
}

func TestInvalidBackendFlag(t *testing.T) {
	resetFlags()
	defer resetFlags()
	configDir = t.TempDir()
	sessionBackend = "redis"

	if _, err := newDeps(false); err == nil {
		t.Error("expected an error for an unknown session backend")
	}
}

func TestEphemeralFlagUsesMemoryStore(t *testing.T) {
	resetFlags()
	defer resetFlags()
	configDir = t.TempDir()
	sessionBackend = "sqlite"
	ephemeral = true

	d, err := newDeps(false)
	if err != nil {
		t.Fatalf("newDeps: %v", err)
	}
	defer d.Close()

	if _, ok := d.store.(*store.MemoryStore); !ok {
		t.Errorf("expected memory store, got %T", d.store)
	}
	entries, _ := os.ReadDir(configDir)
	if len(entries) != 0 {
		t.Errorf("expected nothing written to the config dir, got %d entries", len(entries))
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestReportExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantText string
	}{
		{"backend rejection", &client.APIError{StatusCode: 400, Message: "Video unavailable"}, exitFailure, "unavailable or has been removed"},
		{"classified rejection", &client.APIError{StatusCode: 400, Message: "This video is private"}, exitFailure, "Only public videos"},
		{"no session", client.ErrNotAuthenticated, exitFailure, "yts login"},
		{"validation", &session.ValidationError{Message: "username is required"}, exitFailure, "username is required"},
		{"connectivity", &client.TransportError{Message: "cannot connect to backend at http://x"}, exitError, "cannot connect"},
		{"unexpected", errors.New("boom"), exitError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if code := report(&buf, tt.err); code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			if !strings.HasPrefix(buf.String(), "Error: ") || !strings.Contains(buf.String(), tt.wantText) {
				t.Errorf("unexpected output %q", buf.String())
			}
		})
	}
}

func TestConfirmRequiresYesWithoutTerminal(t *testing.T) {
	resetFlags()
	defer resetFlags()

	if ok, err := confirm("Delete?", true); !ok || err != nil {
		t.Errorf("--yes should skip the prompt, got %v %v", ok, err)
	}
	if _, err := confirm("Delete?", false); !errors.Is(err, errNeedsYes) {
		t.Errorf("expected errNeedsYes, got %v", err)
	}
}
