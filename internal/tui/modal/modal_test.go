// ABOUTME: Tests for the confirmation modal and summary viewer
// ABOUTME: Drives both with key messages and inspects emitted commands

package modal

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/panels"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmAccepts(t *testing.T) {
	for _, k := range []string{"y", "Y", "enter"} {
		c := NewConfirm()
		c.Request(KindDelete, 42, "My video")

		cmd := c.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%s: expected a command", k)
		}
		msg, ok := cmd().(ConfirmedMsg)
		if !ok {
			t.Fatalf("%s: expected ConfirmedMsg", k)
		}
		if msg.Kind != KindDelete || msg.TargetID != 42 {
			t.Errorf("%s: got %+v", k, msg)
		}
		if c.IsOpen() {
			t.Errorf("%s: modal should close after confirming", k)
		}
	}
}

func TestConfirmCancels(t *testing.T) {
	for _, k := range []string{"n", "esc"} {
		c := NewConfirm()
		c.Request(KindLogout, 0, "")

		cmd := c.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%s: expected a command", k)
		}
		if _, ok := cmd().(CancelledMsg); !ok {
			t.Errorf("%s: expected CancelledMsg", k)
		}
		if _, _, open := c.Pending(); open {
			t.Errorf("%s: nothing should be pending after cancel", k)
		}
	}
}

func TestConfirmIgnoresOtherKeysAndClosedState(t *testing.T) {
	c := NewConfirm()
	if cmd := c.Update(keyMsg("y")); cmd != nil {
		t.Error("closed modal should not emit")
	}

	c.Request(KindDelete, 7, "")
	if cmd := c.Update(keyMsg("x")); cmd != nil {
		t.Error("unrelated key should not emit")
	}
	if !c.IsOpen() {
		t.Error("unrelated key should keep the modal open")
	}
	if !strings.Contains(c.View(), "permanently removed") {
		t.Errorf("unexpected view: %q", c.View())
	}
}

func TestViewerLifecycle(t *testing.T) {
	v := NewViewer()
	v.SetSize(100, 30)
	if v.View() != "" || v.RecordID() != 0 {
		t.Fatal("closed viewer should be empty")
	}

	v.Open(models.SummaryRecord{
		ID:          9,
		VideoTitle:  "Go concurrency patterns",
		SummaryText: strings.Repeat("channels and goroutines ", 200),
		Language:    "en",
		WordCount:   1200,
	})
	if v.RecordID() != 9 {
		t.Fatalf("RecordID = %d", v.RecordID())
	}
	view := v.View()
	for _, want := range []string{"Go concurrency patterns", "English", "1,200 words"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	cmd := v.Update(keyMsg("d"))
	if cmd == nil {
		t.Fatal("d should request deletion")
	}
	req, ok := cmd().(panels.ConfirmDeleteMsg)
	if !ok || req.ID != 9 {
		t.Errorf("unexpected delete request %+v", req)
	}

	v.Update(keyMsg("esc"))
	if v.IsOpen() {
		t.Error("esc should close the viewer")
	}
}
