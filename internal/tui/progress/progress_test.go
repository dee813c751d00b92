// ABOUTME: Tests for the progress ticker
// ABOUTME: Verifies stage thresholds and that stale run ids are dropped

package progress

import (
	"strings"
	"testing"
	"time"
)

func TestStageText(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "Downloading video..."},
		{14 * time.Second, "Downloading video..."},
		{15 * time.Second, "Transcribing audio..."},
		{44 * time.Second, "Transcribing audio..."},
		{45 * time.Second, "Generating summary..."},
		{119 * time.Second, "Generating summary..."},
		{120 * time.Second, "Almost there, long videos take a few minutes..."},
		{10 * time.Minute, "Almost there, long videos take a few minutes..."},
	}
	for _, tt := range tests {
		if got := StageText(tt.elapsed); got != tt.want {
			t.Errorf("StageText(%v) = %q, want %q", tt.elapsed, got, tt.want)
		}
	}
}

func newTestTicker(start time.Time) *Ticker {
	tk := New()
	tk.now = func() time.Time { return start }
	return tk
}

func TestTickerAdvancesOnCurrentRun(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := newTestTicker(start)

	if cmd := tk.Start(); cmd == nil {
		t.Fatal("Start should return commands")
	}
	if !tk.Running() {
		t.Fatal("expected running after Start")
	}

	cmd := tk.Update(TickMsg{ID: tk.id, At: start.Add(20 * time.Second)})
	if cmd == nil {
		t.Error("current tick should schedule the next one")
	}
	if tk.Elapsed() != 20*time.Second {
		t.Errorf("elapsed = %v, want 20s", tk.Elapsed())
	}
	if !strings.Contains(tk.View(), "Transcribing audio...") {
		t.Errorf("view missing stage text: %q", tk.View())
	}
}

func TestTickerDropsStaleTicks(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := newTestTicker(start)

	tk.Start()
	firstRun := tk.id
	tk.Stop()

	if cmd := tk.Update(TickMsg{ID: firstRun, At: start.Add(time.Minute)}); cmd != nil {
		t.Error("tick after Stop should not reschedule")
	}
	if tk.View() != "" {
		t.Errorf("stopped ticker should render nothing, got %q", tk.View())
	}

	tk.Start()
	if tk.id == firstRun {
		t.Fatal("new run should get a new id")
	}
	if cmd := tk.Update(TickMsg{ID: firstRun, At: start.Add(time.Minute)}); cmd != nil {
		t.Error("tick from a previous run should be dropped")
	}
	if tk.Elapsed() != 0 {
		t.Errorf("stale tick changed elapsed to %v", tk.Elapsed())
	}
}

func TestTickersDoNotShareRunIDs(t *testing.T) {
	a, b := New(), New()
	a.Start()
	b.Start()
	if a.id == b.id {
		t.Error("independent tickers must not share run ids")
	}
}

func TestLabeledTickerIgnoresStages(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := NewLabeled("Fetching audio...")
	tk.now = func() time.Time { return start }
	tk.Start()
	tk.Update(TickMsg{ID: tk.id, At: start.Add(50 * time.Second)})

	view := tk.View()
	if !strings.Contains(view, "Fetching audio...") || strings.Contains(view, "Generating summary") {
		t.Errorf("unexpected view %q", view)
	}
}
