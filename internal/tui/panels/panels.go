// ABOUTME: Messages and error rendering shared by the dashboard panels
// ABOUTME: Panels talk to the root model only through these messages

package panels

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/client"
	"github.com/markalston/yt-summarizer/internal/friendly"
	"github.com/markalston/yt-summarizer/internal/models"
)

// QuotaChangedMsg asks the root model to refetch usage stats
type QuotaChangedMsg struct{}

// ViewSummaryMsg opens a record in the summary viewer
type ViewSummaryMsg struct {
	Record models.SummaryRecord
}

// ConfirmDeleteMsg asks for confirmation before deleting a summary
type ConfirmDeleteMsg struct {
	ID    int64
	Title string
}

// SummaryDeletedMsg reports a completed delete
type SummaryDeletedMsg struct {
	ID int64
}

// SummaryCreatedMsg reports a freshly generated summary
type SummaryCreatedMsg struct {
	Record models.SummaryRecord
}

// QuotaChanged is the command form of QuotaChangedMsg
func QuotaChanged() tea.Msg {
	return QuotaChangedMsg{}
}

// ErrorText renders a failure for display inside a panel. Session failures
// render as empty text since the router takes the user back to login.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrNotAuthenticated) {
		return ""
	}
	if msg, ok := client.BackendMessage(err); ok {
		return friendly.Classify(msg).String()
	}
	return err.Error()
}
