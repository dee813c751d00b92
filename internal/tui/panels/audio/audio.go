// ABOUTME: Dashboard panel that downloads a video's audio track to disk
// ABOUTME: Streams the backend response into the download directory atomically

package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/client"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
	"github.com/markalston/yt-summarizer/internal/tui/progress"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
	"github.com/markalston/yt-summarizer/internal/youtube"
)

// API is the backend surface the panel needs
type API interface {
	DownloadAudio(ctx context.Context, videoURL string) (*client.AudioDownload, error)
}

type savedMsg struct {
	run   int
	path  string
	bytes int64
	err   error
}

// Model is the audio download panel
type Model struct {
	ctx    context.Context
	api    API
	dir    string
	url    textinput.Model
	ticker *progress.Ticker

	run      int
	inFlight bool
	err      string
	success  string
}

// New creates the panel writing files into dir
func New(ctx context.Context, api API, dir string) *Model {
	ti := textinput.New()
	ti.Placeholder = "https://youtu.be/..."
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = 60

	return &Model{
		ctx:    ctx,
		api:    api,
		dir:    dir,
		url:    ti,
		ticker: progress.NewLabeled("Fetching audio..."),
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Focus puts the cursor in the URL input
func (m *Model) Focus() tea.Cmd {
	return m.url.Focus()
}

// Blur releases keyboard focus
func (m *Model) Blur() {
	m.url.Blur()
}

// Capturing reports whether typed characters belong to the URL input
func (m *Model) Capturing() bool {
	return m.url.Focused()
}

// InFlight reports whether a download is outstanding
func (m *Model) InFlight() bool {
	return m.inFlight
}

// Err returns the current error text
func (m *Model) Err() string {
	return m.err
}

// Success returns the saved-file notice
func (m *Model) Success() string {
	return m.success
}

// SetURL replaces the URL input value
func (m *Model) SetURL(s string) {
	m.url.SetValue(s)
	m.err = ""
}

// SetWidth sets the input width
func (m *Model) SetWidth(width int) {
	m.url.Width = max(20, min(80, width-12))
}

// Reset returns the panel to its initial state
func (m *Model) Reset() {
	m.ticker.Stop()
	m.url.Reset()
	m.url.Blur()
	m.run++
	m.inFlight = false
	m.err = ""
	m.success = ""
}

// Submit validates the URL and starts the download
func (m *Model) Submit() tea.Cmd {
	if m.inFlight {
		return nil
	}
	url := strings.TrimSpace(m.url.Value())
	if err := youtube.ValidateURL(url); err != nil {
		m.err = err.Error()
		return nil
	}

	m.err = ""
	m.success = ""
	m.inFlight = true
	m.run++

	ctx, api, dir, run := m.ctx, m.api, m.dir, m.run
	download := func() tea.Msg {
		path, n, err := Save(ctx, api, url, dir)
		return savedMsg{run: run, path: path, bytes: n, err: err}
	}
	return tea.Batch(m.ticker.Start(), download)
}

// Save downloads the audio for url into dir and returns the written path and size.
// The file appears under its final name only once fully written.
func Save(ctx context.Context, api API, url, dir string) (string, int64, error) {
	dl, err := api.DownloadAudio(ctx, url)
	if err != nil {
		return "", 0, err
	}
	defer dl.Body.Close()

	if !safeFileName(dl.FileName) {
		return "", 0, fmt.Errorf("refusing to save audio as %q", dl.FileName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating download directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".audio-*.part")
	if err != nil {
		return "", 0, fmt.Errorf("creating download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, dl.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", 0, fmt.Errorf("writing audio: %w", err)
	}

	path := filepath.Join(dir, dl.FileName)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("saving audio: %w", err)
	}
	return path, n, nil
}

// safeFileName reports whether name stays inside the directory it is joined to
func safeFileName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name && !strings.ContainsRune(name, '\\')
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.inFlight = false
		m.ticker.Stop()
		if msg.err != nil {
			m.err = panels.ErrorText(msg.err)
			return m, nil
		}
		m.success = fmt.Sprintf("Saved %s (%s)", msg.path, format.Bytes(msg.bytes))
		m.url.Reset()
		return m, panels.QuotaChanged

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return m, m.Submit()
		case "esc":
			m.Blur()
			return m, nil
		}
		if !m.url.Focused() {
			if msg.String() == "i" {
				return m, m.Focus()
			}
			return m, nil
		}
		before := m.url.Value()
		var cmd tea.Cmd
		m.url, cmd = m.url.Update(msg)
		if m.url.Value() != before {
			m.err = ""
			m.success = ""
		}
		return m, cmd
	}

	return m, m.ticker.Update(msg)
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Download audio", icons.Audio.String())))
	sb.WriteString("\n")
	sb.WriteString(styles.MutedText.Render("URL: "))
	sb.WriteString(m.url.View())
	sb.WriteString("\n")
	sb.WriteString(styles.MutedText.Render(fmt.Sprintf("Saving to %s", m.dir)))
	sb.WriteString("\n\n")

	switch {
	case m.inFlight:
		sb.WriteString(m.ticker.View())
		sb.WriteString("\n")
	case m.err != "":
		sb.WriteString(styles.ErrorText.Render(m.err))
		sb.WriteString("\n")
	case m.success != "":
		sb.WriteString(styles.SuccessText.Render(fmt.Sprintf("%s %s", icons.CheckOK.String(), m.success)))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Help.Render("enter download • esc leave input"))
	return sb.String()
}
