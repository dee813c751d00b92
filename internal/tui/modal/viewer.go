// ABOUTME: Full-screen viewer for a single stored summary
// ABOUTME: Metadata header plus a scrollable, word-wrapped summary body

package modal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/lang"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
)

// chrome is the vertical space taken by the header, footer and modal border
const chrome = 9

// Viewer shows one SummaryRecord. The zero value is not usable; call NewViewer.
type Viewer struct {
	open   bool
	record models.SummaryRecord
	vp     viewport.Model
	width  int
	height int
}

// NewViewer creates a closed viewer
func NewViewer() *Viewer {
	return &Viewer{vp: viewport.New(76, 12), width: 80, height: 24}
}

// Open shows rec, replacing whatever was open
func (v *Viewer) Open(rec models.SummaryRecord) {
	v.open = true
	v.record = rec
	v.layout()
	v.vp.GotoTop()
}

// Close hides the viewer
func (v *Viewer) Close() {
	v.open = false
	v.record = models.SummaryRecord{}
}

// IsOpen reports whether a record is shown
func (v *Viewer) IsOpen() bool {
	return v.open
}

// RecordID returns the id of the open record, or 0
func (v *Viewer) RecordID() int64 {
	if !v.open {
		return 0
	}
	return v.record.ID
}

// SetSize fits the viewer into the available frame
func (v *Viewer) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.layout()
}

func (v *Viewer) layout() {
	v.vp.Width = max(20, v.width-6)
	v.vp.Height = max(3, v.height-chrome)
	if v.open {
		v.vp.SetContent(lipgloss.NewStyle().Width(v.vp.Width).Render(v.record.SummaryText))
	}
}

// Update scrolls the body; esc or q closes, d requests deletion
func (v *Viewer) Update(msg tea.Msg) tea.Cmd {
	if !v.open {
		return nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			v.Close()
			return nil
		case "d":
			id, title := v.record.ID, v.record.VideoTitle
			return func() tea.Msg { return panels.ConfirmDeleteMsg{ID: id, Title: title} }
		}
	}
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	return cmd
}

// View renders the record; empty when closed
func (v *Viewer) View() string {
	if !v.open {
		return ""
	}
	rec := v.record

	title := rec.VideoTitle
	if title == "" {
		title = rec.VideoURL
	}

	meta := strings.Join([]string{
		fmt.Sprintf("%s %s", icons.Globe.String(), lang.Name(rec.Language)),
		fmt.Sprintf("%s words", format.Count(int64(rec.WordCount))),
		fmt.Sprintf("%s %s", icons.Video.String(), format.VideoLength(rec.VideoDurationSeconds)),
		fmt.Sprintf("created %s", format.Ago(rec.CreatedAt.Time)),
	}, "  ·  ")

	scroll := styles.MutedText.Render(fmt.Sprintf("%3.0f%%", v.vp.ScrollPercent()*100))
	help := styles.MutedText.Render("↑/↓ scroll • d delete • esc close")

	return styles.Modal.Render(strings.Join([]string{
		styles.ValueStyle.Render(fmt.Sprintf("%s %s", icons.Summary.String(), title)),
		styles.MutedText.Render(meta),
		"",
		v.vp.View(),
		"",
		help + "  " + scroll,
	}, "\n"))
}
