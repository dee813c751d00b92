// ABOUTME: Dashboard panel listing past summaries with view and delete actions
// ABOUTME: Deletion is requested through the confirmation modal and refreshes the list

package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
)

// API is the backend surface the panel needs
type API interface {
	SummaryHistory(ctx context.Context) ([]models.SummaryRecord, error)
	GetSummary(ctx context.Context, id int64) (*models.SummaryRecord, error)
	DeleteSummary(ctx context.Context, id int64) (*models.Ack, error)
}

type loadedMsg struct {
	gen     int
	records []models.SummaryRecord
	err     error
}

type openedMsg struct {
	gen    int
	record *models.SummaryRecord
	err    error
}

type deletedMsg struct {
	gen int
	id  int64
	err error
}

// Model is the history panel
type Model struct {
	ctx     context.Context
	api     API
	records []models.SummaryRecord
	table   table.Model
	loaded  bool

	// gen changes on Reset; replies from an earlier generation are dropped
	gen      int
	inFlight bool
	err      string
	success  string

	width  int
	height int
}

// New creates an empty history panel; call Refresh to load it
func New(ctx context.Context, api API) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(s)

	return &Model{ctx: ctx, api: api, table: t, width: 80, height: 20}
}

// columns sizes the table for the frame width; the title takes what is left
func columns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 0},
		{Title: "Lang", Width: 5},
		{Title: "Words", Width: 6},
		{Title: "Length", Width: 8},
		{Title: "Created", Width: 16},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 2
	}
	fixed[1].Width = max(12, width-used-6)
	return fixed
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.Refresh()
}

// Records returns the currently listed summaries
func (m *Model) Records() []models.SummaryRecord {
	return m.records
}

// Loaded reports whether the list has been fetched at least once
func (m *Model) Loaded() bool {
	return m.loaded
}

// InFlight reports whether a request is outstanding
func (m *Model) InFlight() bool {
	return m.inFlight
}

// Err returns the current error text
func (m *Model) Err() string {
	return m.err
}

// Success returns the last success notice
func (m *Model) Success() string {
	return m.success
}

// Capturing is always false; the table has no text input
func (m *Model) Capturing() bool {
	return false
}

// SetSize fits the table into the frame
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(3, height-8))
	m.table.SetRows(m.rows())
}

// Reset drops the listed records
func (m *Model) Reset() {
	m.gen++
	m.records = nil
	m.loaded = false
	m.inFlight = false
	m.err = ""
	m.success = ""
	m.table.SetRows(nil)
	m.table.SetCursor(0)
}

// Refresh reloads the list
func (m *Model) Refresh() tea.Cmd {
	m.inFlight = true
	ctx, api, gen := m.ctx, m.api, m.gen
	return func() tea.Msg {
		records, err := api.SummaryHistory(ctx)
		return loadedMsg{gen: gen, records: records, err: err}
	}
}

// Delete removes a summary. Callers confirm first.
func (m *Model) Delete(id int64) tea.Cmd {
	m.inFlight = true
	m.success = ""
	ctx, api, gen := m.ctx, m.api, m.gen
	return func() tea.Msg {
		_, err := api.DeleteSummary(ctx, id)
		return deletedMsg{gen: gen, id: id, err: err}
	}
}

func (m *Model) selected() (models.SummaryRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return models.SummaryRecord{}, false
	}
	return m.records[i], true
}

func (m *Model) open(id int64) tea.Cmd {
	m.inFlight = true
	ctx, api, gen := m.ctx, m.api, m.gen
	return func() tea.Msg {
		rec, err := api.GetSummary(ctx, id)
		return openedMsg{gen: gen, record: rec, err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.inFlight = false
		if msg.err != nil {
			m.err = panels.ErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.loaded = true
		m.records = msg.records
		m.table.SetRows(m.rows())
		if m.table.Cursor() >= len(m.records) {
			m.table.SetCursor(max(0, len(m.records)-1))
		}
		return m, nil

	case openedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.inFlight = false
		if msg.err != nil {
			m.err = panels.ErrorText(msg.err)
			return m, nil
		}
		rec := *msg.record
		return m, func() tea.Msg { return panels.ViewSummaryMsg{Record: rec} }

	case deletedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.inFlight = false
		if msg.err != nil {
			m.err = panels.ErrorText(msg.err)
			return m, nil
		}
		m.err = ""
		m.success = "Summary deleted"
		m.remove(msg.id)
		id := msg.id
		return m, tea.Batch(
			m.Refresh(),
			func() tea.Msg { return panels.SummaryDeletedMsg{ID: id} },
			panels.QuotaChanged,
		)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "v":
			if rec, ok := m.selected(); ok {
				return m, m.open(rec.ID)
			}
			return m, nil
		case "d", "delete":
			if rec, ok := m.selected(); ok {
				id, title := rec.ID, rec.VideoTitle
				return m, func() tea.Msg { return panels.ConfirmDeleteMsg{ID: id, Title: title} }
			}
			return m, nil
		case "r":
			m.success = ""
			return m, m.Refresh()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) remove(id int64) {
	kept := m.records[:0]
	for _, r := range m.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.records = kept
	m.table.SetRows(m.rows())
	if m.table.Cursor() >= len(m.records) {
		m.table.SetCursor(max(0, len(m.records)-1))
	}
}

func (m *Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		title := r.VideoTitle
		if title == "" {
			title = r.VideoURL
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(r.ID, 10),
			title,
			r.Language,
			strconv.Itoa(r.WordCount),
			format.VideoLength(r.VideoDurationSeconds),
			format.Ago(r.CreatedAt.Time),
		})
	}
	return rows
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(fmt.Sprintf("%s History", icons.History.String())))
	sb.WriteString("\n")

	switch {
	case !m.loaded && m.inFlight:
		sb.WriteString(styles.MutedText.Render("Loading history..."))
		sb.WriteString("\n")
	case m.loaded && len(m.records) == 0:
		sb.WriteString(styles.MutedText.Render("No summaries yet. Generate one from the Summarize tab."))
		sb.WriteString("\n")
	case m.loaded:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
	}

	if m.err != "" {
		sb.WriteString(styles.ErrorText.Render(m.err))
		sb.WriteString("\n")
	} else if m.success != "" {
		sb.WriteString(styles.SuccessText.Render(fmt.Sprintf("%s %s", icons.CheckOK.String(), m.success)))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Help.Render("↑/↓ select • enter view • d delete • r refresh"))
	return sb.String()
}
