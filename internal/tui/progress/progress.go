// ABOUTME: Cosmetic elapsed-time status for long-running backend calls
// ABOUTME: Ticks are tagged with a run id so stopped runs drop their stale ticks

package progress

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
)

// Interval between status refreshes
const Interval = time.Second

type stage struct {
	after time.Duration
	text  string
}

// stages are ordered by threshold; the last one reached wins
var stages = []stage{
	{0, "Downloading video..."},
	{15 * time.Second, "Transcribing audio..."},
	{45 * time.Second, "Generating summary..."},
	{120 * time.Second, "Almost there, long videos take a few minutes..."},
}

// StageText returns the status line for the given elapsed time
func StageText(elapsed time.Duration) string {
	text := stages[0].text
	for _, s := range stages {
		if elapsed >= s.after {
			text = s.text
		}
	}
	return text
}

// run ids are process-wide so tickers in different panels never match each other's ticks
var lastRunID atomic.Int64

// TickMsg advances the ticker whose run id matches
type TickMsg struct {
	ID int64
	At time.Time
}

// Ticker shows a spinner and staged status text while a request is running
type Ticker struct {
	id      int64
	running bool
	started time.Time
	elapsed time.Duration
	spinner spinner.Model
	label   string
	now     func() time.Time
}

// New creates a stopped ticker showing the summary generation stages
func New() *Ticker {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = s.Style.Foreground(styles.Accent)
	return &Ticker{spinner: s, now: time.Now}
}

// NewLabeled creates a stopped ticker that shows a fixed label instead of stages
func NewLabeled(label string) *Ticker {
	t := New()
	t.label = label
	return t
}

// Start begins a new run and returns the commands driving it
func (t *Ticker) Start() tea.Cmd {
	t.id = lastRunID.Add(1)
	t.running = true
	t.started = t.now()
	t.elapsed = 0
	return tea.Batch(t.tick(), t.spinner.Tick)
}

// Stop ends the current run; ticks already scheduled are dropped on arrival
func (t *Ticker) Stop() {
	t.id = 0
	t.running = false
}

// Running reports whether a run is active
func (t *Ticker) Running() bool {
	return t.running
}

// Elapsed returns the time since Start as of the last tick
func (t *Ticker) Elapsed() time.Duration {
	return t.elapsed
}

func (t *Ticker) tick() tea.Cmd {
	id := t.id
	return tea.Tick(Interval, func(at time.Time) tea.Msg {
		return TickMsg{ID: id, At: at}
	})
}

// Update handles tick and spinner messages. Messages for other runs are ignored.
func (t *Ticker) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case TickMsg:
		if !t.running || msg.ID != t.id {
			return nil
		}
		t.elapsed = msg.At.Sub(t.started)
		return t.tick()
	case spinner.TickMsg:
		if !t.running {
			return nil
		}
		var cmd tea.Cmd
		t.spinner, cmd = t.spinner.Update(msg)
		return cmd
	}
	return nil
}

// View renders the spinner, stage text and elapsed seconds; empty when stopped
func (t *Ticker) View() string {
	if !t.running {
		return ""
	}
	text := t.label
	if text == "" {
		text = StageText(t.elapsed)
	}
	elapsed := styles.MutedText.Render(fmt.Sprintf("(%ds)", int(t.elapsed.Seconds())))
	return fmt.Sprintf("%s %s %s", t.spinner.View(), text, elapsed)
}
