// ABOUTME: Shared wiring for every command: config, logging, session store and API client
// ABOUTME: Also maps errors to exit codes and handles prompts and confirmations

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/markalston/yt-summarizer/internal/client"
	"github.com/markalston/yt-summarizer/internal/config"
	"github.com/markalston/yt-summarizer/internal/friendly"
	"github.com/markalston/yt-summarizer/internal/logger"
	"github.com/markalston/yt-summarizer/internal/session"
	"github.com/markalston/yt-summarizer/internal/store"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1 // backend rejected the request or input was invalid
	exitError   = 2 // backend unreachable or unexpected failure
)

// deps holds the process-wide objects a command works with
type deps struct {
	cfg   *config.Config
	store store.Store
	api   *client.Client
	ctrl  *session.Controller

	closeLog func() error
}

// newDeps loads configuration and builds the store and client. The TUI logs
// to a file in the config directory; commands log to stderr.
func newDeps(tui bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(config.Overrides{
		APIURL:         apiURL,
		ConfigDir:      configDir,
		SessionBackend: sessionBackend,
		Ephemeral:      ephemeral,
	}); err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, closeLog: func() error { return nil }}
	if tui {
		closeLog, err := logger.InitFile(cfg.ConfigDir, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to open debug log: %w", err)
		}
		d.closeLog = closeLog
	} else {
		logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	}

	d.store, err = store.Open(cfg.SessionBackend, cfg.ConfigDir)
	if err != nil {
		d.closeLog()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	d.api = client.New(cfg.APIURL,
		client.WithStore(d.store),
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithCacheTTL(cfg.CacheTTL),
	)
	slog.Debug("configured", "api", cfg.APIURL, "backend", cfg.SessionBackend, "dir", cfg.ConfigDir)
	return d, nil
}

// Session returns the session controller, creating it on first use. Until
// then the client reads the token straight from the store.
func (d *deps) Session() *session.Controller {
	if d.ctrl == nil {
		d.ctrl = session.NewController(d.api, d.store)
		d.api.SetTokenSource(d.ctrl)
		d.api.OnUnauthorized(func(token string) { d.ctrl.Invalidate(token) })
	}
	return d.ctrl
}

// Close releases the client, store and log file
func (d *deps) Close() {
	d.api.Close()
	if c, ok := d.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close session store", "error", err)
		}
	}
	d.closeLog()
}

// execute runs a command body with signal handling and exits with its code
func execute(run func(ctx context.Context, d *deps, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := newDeps(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}
	code := run(ctx, d, os.Stdout)
	d.Close()
	if code != exitOK {
		os.Exit(code)
	}
}

// report prints err and returns the matching exit code
func report(w io.Writer, err error) int {
	text, code := describe(err)
	fmt.Fprintf(w, "Error: %s\n", text)
	return code
}

// describe returns the user-facing text and exit code for err
func describe(err error) (string, int) {
	var apiErr *client.APIError
	var validationErr *session.ValidationError
	switch {
	case errors.As(err, &apiErr):
		return friendly.Classify(apiErr.Error()).String(), exitFailure
	case errors.Is(err, client.ErrNotAuthenticated), errors.As(err, &validationErr):
		return err.Error(), exitFailure
	default:
		return err.Error(), exitError
	}
}

// invalid prints a local validation failure
func invalid(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitFailure
}

func writeJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return report(w, err)
	}
	fmt.Fprintln(w, string(data))
	return exitOK
}

// stdin is read for prompts
var stdin io.Reader = os.Stdin

func stdinIsTerminal() bool {
	f, ok := stdin.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var lineReader *bufio.Reader

func readLine() (string, error) {
	if lineReader == nil {
		lineReader = bufio.NewReader(stdin)
	}
	line, err := lineReader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt asks for a visible value on stderr
func prompt(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	return readLine()
}

// promptPassword reads a password without echo when stdin is a terminal
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	if !stdinIsTerminal() {
		return readLine()
	}
	data, err := term.ReadPassword(int(stdin.(*os.File).Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

// errNeedsYes is returned when a destructive command cannot ask for confirmation
var errNeedsYes = errors.New("refusing to continue without confirmation: pass --yes")

// confirm asks a yes/no question; skip answers yes without asking
func confirm(title string, skip bool) (bool, error) {
	if skip {
		return true, nil
	}
	if !stdinIsTerminal() {
		return false, errNeedsYes
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
