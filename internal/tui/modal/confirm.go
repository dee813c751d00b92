// ABOUTME: Confirmation modal guarding destructive actions
// ABOUTME: Holds at most one pending confirmation and emits the decision as a message

package modal

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
)

// Kind is the destructive action awaiting confirmation
type Kind int

const (
	KindDelete Kind = iota
	KindLogout
)

func (k Kind) String() string {
	if k == KindLogout {
		return "logout"
	}
	return "delete"
}

// ConfirmedMsg is emitted when the user accepts the pending action
type ConfirmedMsg struct {
	Kind     Kind
	TargetID int64
}

// CancelledMsg is emitted when the user declines
type CancelledMsg struct {
	Kind Kind
}

// Confirm is the pending-confirmation state. The zero value is closed.
type Confirm struct {
	open   bool
	kind   Kind
	target int64
	label  string
}

// NewConfirm creates a closed confirmation modal
func NewConfirm() *Confirm {
	return &Confirm{}
}

// Request opens the modal for kind on target. label names the target for display.
// A new request replaces any pending one.
func (c *Confirm) Request(kind Kind, target int64, label string) {
	c.open = true
	c.kind = kind
	c.target = target
	c.label = label
}

// IsOpen reports whether a confirmation is pending
func (c *Confirm) IsOpen() bool {
	return c.open
}

// Pending returns the pending action, if any
func (c *Confirm) Pending() (Kind, int64, bool) {
	return c.kind, c.target, c.open
}

func (c *Confirm) close() {
	c.open = false
	c.target = 0
	c.label = ""
}

// Update handles the decision keys while open
func (c *Confirm) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !c.open {
		return nil
	}
	kind, target := c.kind, c.target
	switch key.String() {
	case "y", "Y", "enter":
		c.close()
		return func() tea.Msg { return ConfirmedMsg{Kind: kind, TargetID: target} }
	case "n", "N", "esc":
		c.close()
		return func() tea.Msg { return CancelledMsg{Kind: kind} }
	}
	return nil
}

// View renders the modal box; empty when closed
func (c *Confirm) View() string {
	if !c.open {
		return ""
	}

	var title, body string
	style := styles.Modal
	switch c.kind {
	case KindDelete:
		style = styles.DangerModal
		title = fmt.Sprintf("%s Delete summary", icons.Trash.String())
		body = "This summary will be permanently removed."
		if c.label != "" {
			body = fmt.Sprintf("%q will be permanently removed.", c.label)
		}
	case KindLogout:
		title = fmt.Sprintf("%s Log out", icons.Logout.String())
		body = "End this session on this machine?"
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(title))
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(styles.KeyStyle.Render("[y]"))
	sb.WriteString(" confirm   ")
	sb.WriteString(styles.KeyStyle.Render("[n]"))
	sb.WriteString(" cancel")
	return style.Render(sb.String())
}
