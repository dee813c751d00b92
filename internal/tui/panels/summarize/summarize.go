// ABOUTME: Dashboard panel that generates a summary for a YouTube URL
// ABOUTME: Validates locally, then shows staged progress until the backend answers

package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/lang"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
	"github.com/markalston/yt-summarizer/internal/tui/progress"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
	"github.com/markalston/yt-summarizer/internal/youtube"
)

// previewLines caps the summary preview; the full text opens in the viewer
const previewLines = 8

// API is the backend surface the panel needs
type API interface {
	GenerateSummary(ctx context.Context, req models.SummaryRequest) (*models.GeneratedSummary, error)
}

type field int

const (
	fieldNone field = iota
	fieldURL
	fieldLanguage
	fieldWords
)

type generatedMsg struct {
	run     int
	summary *models.GeneratedSummary
	err     error
}

// Model is the summarize panel
type Model struct {
	ctx      context.Context
	api      API
	url      textinput.Model
	langs    []lang.Language
	langIdx  int
	wordsIdx int
	focus    field

	// run tags each request; results from an older run are dropped
	run      int
	inFlight bool
	err      string
	success  *models.GeneratedSummary

	ticker *progress.Ticker
	width  int
}

// New creates the panel with the default language and word range selected
func New(ctx context.Context, api API) *Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=..."
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = 60

	m := &Model{
		ctx:    ctx,
		api:    api,
		url:    ti,
		langs:  lang.All(),
		ticker: progress.New(),
		width:  80,
	}
	for i, l := range m.langs {
		if l.Code == lang.Default {
			m.langIdx = i
		}
	}
	for i, r := range lang.WordCountRanges {
		if r == lang.DefaultWordCountRange {
			m.wordsIdx = i
		}
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Focus puts the cursor in the URL input
func (m *Model) Focus() tea.Cmd {
	m.focus = fieldURL
	return m.url.Focus()
}

// Blur releases keyboard focus back to the dashboard
func (m *Model) Blur() {
	m.focus = fieldNone
	m.url.Blur()
}

// Capturing reports whether typed characters belong to the URL input
func (m *Model) Capturing() bool {
	return m.focus == fieldURL
}

// InFlight reports whether a generate request is outstanding
func (m *Model) InFlight() bool {
	return m.inFlight
}

// Err returns the current error text
func (m *Model) Err() string {
	return m.err
}

// Result returns the last generated summary, if any
func (m *Model) Result() *models.GeneratedSummary {
	return m.success
}

// SetWidth sets the render width
func (m *Model) SetWidth(width int) {
	m.width = width
	m.url.Width = max(20, min(80, width-12))
}

// Reset returns the panel to its initial state, dropping any in-flight run
func (m *Model) Reset() {
	m.ticker.Stop()
	m.url.Reset()
	m.Blur()
	m.run++
	m.inFlight = false
	m.err = ""
	m.success = nil
}

// SetURL replaces the URL input value
func (m *Model) SetURL(s string) {
	m.url.SetValue(s)
	m.err = ""
}

// Language returns the selected language code
func (m *Model) Language() string {
	return m.langs[m.langIdx].Code
}

// WordCountRange returns the selected word-count range
func (m *Model) WordCountRange() string {
	return lang.WordCountRanges[m.wordsIdx]
}

// Submit validates the URL and starts generation. Nothing is sent while a
// request is outstanding or when validation fails.
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
	m.success = nil
	m.inFlight = true
	m.run++

	req := models.SummaryRequest{
		VideoURL:       url,
		Language:       m.Language(),
		WordCountRange: m.WordCountRange(),
	}
	ctx, api, run := m.ctx, m.api, m.run
	generate := func() tea.Msg {
		summary, err := api.GenerateSummary(ctx, req)
		return generatedMsg{run: run, summary: summary, err: err}
	}
	return tea.Batch(m.ticker.Start(), generate)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		if msg.run != m.run {
			return m, nil
		}
		m.inFlight = false
		m.ticker.Stop()
		if msg.err != nil {
			m.err = panels.ErrorText(msg.err)
			return m, nil
		}
		m.success = msg.summary
		m.url.Reset()
		rec := msg.summary.SummaryRecord
		return m, tea.Batch(
			panels.QuotaChanged,
			func() tea.Msg { return panels.SummaryCreatedMsg{Record: rec} },
		)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, m.ticker.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return m.Submit()
	case "tab":
		return m.cycleFocus(1)
	case "shift+tab":
		return m.cycleFocus(-1)
	case "esc":
		m.Blur()
		return nil
	case "ctrl+o":
		if m.success == nil {
			return nil
		}
		rec := m.success.SummaryRecord
		return func() tea.Msg { return panels.ViewSummaryMsg{Record: rec} }
	}

	switch m.focus {
	case fieldURL:
		before := m.url.Value()
		var cmd tea.Cmd
		m.url, cmd = m.url.Update(msg)
		if m.url.Value() != before {
			m.err = ""
		}
		return cmd
	case fieldLanguage:
		m.langIdx = step(m.langIdx, len(m.langs), msg.String())
	case fieldWords:
		m.wordsIdx = step(m.wordsIdx, len(lang.WordCountRanges), msg.String())
	case fieldNone:
		if msg.String() == "i" {
			return m.Focus()
		}
	}
	return nil
}

// step moves an option index with left/right (or h/l), wrapping around
func step(idx, n int, key string) int {
	switch key {
	case "left", "h":
		return (idx - 1 + n) % n
	case "right", "l":
		return (idx + 1) % n
	}
	return idx
}

func (m *Model) cycleFocus(dir int) tea.Cmd {
	next := field((int(m.focus)-1+dir+3)%3 + 1)
	if m.focus == fieldNone {
		next = fieldURL
	}
	m.focus = next
	if next == fieldURL {
		return m.url.Focus()
	}
	m.url.Blur()
	return nil
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s Summarize a video", icons.Video.String())))
	sb.WriteString("\n")

	sb.WriteString(m.label("URL", fieldURL))
	sb.WriteString(m.url.View())
	sb.WriteString("\n\n")

	sb.WriteString(m.label("Language", fieldLanguage))
	sb.WriteString(m.selector(m.langs[m.langIdx].Name, fieldLanguage))
	sb.WriteString("    ")
	sb.WriteString(m.label("Words", fieldWords))
	sb.WriteString(m.selector(m.WordCountRange(), fieldWords))
	sb.WriteString("\n\n")

	switch {
	case m.inFlight:
		sb.WriteString(m.ticker.View())
		sb.WriteString("\n")
	case m.err != "":
		sb.WriteString(styles.ErrorText.Render(m.err))
		sb.WriteString("\n")
	case m.success != nil:
		sb.WriteString(m.renderResult())
	}

	sb.WriteString(styles.Help.Render("enter generate • tab next field • ←/→ change option • ctrl+o open result • esc leave input"))
	return sb.String()
}

func (m *Model) label(text string, f field) string {
	style := styles.MutedText
	if m.focus == f {
		style = styles.KeyStyle
	}
	return style.Render(text+":") + " "
}

func (m *Model) selector(value string, f field) string {
	if m.focus != f {
		return styles.ValueStyle.Render(value)
	}
	return styles.KeyStyle.Render("◀ ") + styles.ValueStyle.Render(value) + styles.KeyStyle.Render(" ▶")
}

func (m *Model) renderResult() string {
	s := m.success
	var sb strings.Builder

	title := s.VideoTitle
	if title == "" {
		title = s.VideoURL
	}
	sb.WriteString(styles.SuccessText.Render(fmt.Sprintf("%s %s", icons.CheckOK.String(), title)))
	sb.WriteString("\n")
	sb.WriteString(styles.MutedText.Render(fmt.Sprintf("%s · %s words · %d requests left today",
		lang.Name(s.Language), format.Count(int64(s.WordCount)), s.RemainingRequests)))
	sb.WriteString("\n\n")

	wrapped := lipgloss.NewStyle().Width(max(20, m.width-8)).Render(s.SummaryText)
	lines := strings.Split(wrapped, "\n")
	if len(lines) > previewLines {
		lines = append(lines[:previewLines], styles.MutedText.Render("…"))
	}
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	return sb.String()
}
