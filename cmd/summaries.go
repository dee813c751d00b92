// ABOUTME: Summary commands: summarize, history, show and delete
// ABOUTME: Validates input locally before any request reaches the backend

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/lang"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/progress"
	"github.com/markalston/yt-summarizer/internal/youtube"
)

var (
	summaryLanguage string
	summaryWords    string
	historyRecent   int
	deleteYes       bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize URL",
	Short: "Summarize a YouTube video",
	Long:  `Summarize a YouTube video. Generation runs on the backend and can take a few minutes for long videos.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			var stop func()
			if term.IsTerminal(int(os.Stderr.Fd())) && !IsJSONOutput() {
				stop = reportStages(os.Stderr)
			}
			code := runSummarize(ctx, d, w, args[0], summaryLanguage, summaryWords)
			if stop != nil {
				stop()
			}
			return code
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your summaries",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			return runHistory(ctx, d, w, historyRecent)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a summary",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			return runShow(ctx, d, w, args[0])
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a summary",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			return runDelete(ctx, d, w, args[0], deleteYes)
		})
	},
}

func init() {
	summarizeCmd.Flags().StringVarP(&summaryLanguage, "lang", "l", lang.Default, "Summary language: "+strings.Join(languageCodes(), ", "))
	summarizeCmd.Flags().StringVarP(&summaryWords, "words", "w", lang.DefaultWordCountRange, "Word count range: "+strings.Join(lang.WordCountRanges, ", "))
	historyCmd.Flags().IntVar(&historyRecent, "recent", 0, "Only the N most recent summaries")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(summarizeCmd, historyCmd, showCmd, deleteCmd)
}

func languageCodes() []string {
	var codes []string
	for _, l := range lang.All() {
		codes = append(codes, l.Code)
	}
	return codes
}

// reportStages prints the current generation stage to w until stop is called
func reportStages(w io.Writer) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	start := time.Now()

	go func() {
		defer close(finished)
		ticker := time.NewTicker(progress.Interval)
		defer ticker.Stop()
		last := ""
		for {
			if text := progress.StageText(time.Since(start)); text != last {
				fmt.Fprintf(w, "%s\n", text)
				last = text
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// runSummarize validates input and generates a summary
func runSummarize(ctx context.Context, d *deps, w io.Writer, url, language, words string) int {
	url = strings.TrimSpace(url)
	language = strings.ToLower(strings.TrimSpace(language))
	if err := youtube.ValidateURL(url); err != nil {
		return invalid(w, err)
	}
	if err := lang.Validate(language); err != nil {
		return invalid(w, err)
	}
	if err := lang.ValidateWordCountRange(words); err != nil {
		return invalid(w, err)
	}

	res, err := d.api.GenerateSummary(ctx, models.SummaryRequest{
		VideoURL:       url,
		Language:       language,
		WordCountRange: words,
	})
	if err != nil {
		return report(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, res)
	}
	fmt.Fprintln(w, formatSummary(&res.SummaryRecord))
	fmt.Fprintf(w, "\n%d summaries left today\n", res.RemainingRequests)
	return exitOK
}

func formatSummary(rec *models.SummaryRecord) string {
	title := lipgloss.NewStyle().Bold(true).Render(rec.VideoTitle)
	meta := fmt.Sprintf("#%d · %s · %d words · %s · %s",
		rec.ID, lang.Name(rec.Language), rec.WordCount,
		format.VideoLength(rec.VideoDurationSeconds), format.Ago(rec.CreatedAt.Time))
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, meta, rec.VideoURL, rec.SummaryText)
}

// runHistory lists all summaries, or the most recent when recent > 0
func runHistory(ctx context.Context, d *deps, w io.Writer, recent int) int {
	var (
		records []models.SummaryRecord
		err     error
	)
	if recent > 0 {
		records, err = d.api.RecentSummaries(ctx, recent)
	} else {
		records, err = d.api.SummaryHistory(ctx)
	}
	if err != nil {
		return report(w, err)
	}

	if IsJSONOutput() {
		if records == nil {
			records = []models.SummaryRecord{}
		}
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No summaries yet. Try 'yts summarize URL'.")
		return exitOK
	}
	fmt.Fprintln(w, formatHistory(records))
	return exitOK
}

func formatHistory(records []models.SummaryRecord) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "TITLE", "LANG", "WORDS", "LENGTH", "CREATED")
	for _, r := range records {
		t.Row(
			strconv.FormatInt(r.ID, 10),
			clip(r.VideoTitle, 48),
			r.Language,
			strconv.Itoa(r.WordCount),
			format.VideoLength(r.VideoDurationSeconds),
			format.Ago(r.CreatedAt.Time),
		)
	}
	return t.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid summary id %q", s)
	}
	return id, nil
}

// runShow prints one summary
func runShow(ctx context.Context, d *deps, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return invalid(w, err)
	}
	rec, err := d.api.GetSummary(ctx, id)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, rec)
	}
	fmt.Fprintln(w, formatSummary(rec))
	return exitOK
}

// runDelete removes a summary after confirmation
func runDelete(ctx context.Context, d *deps, w io.Writer, arg string, yes bool) int {
	id, err := parseID(arg)
	if err != nil {
		return invalid(w, err)
	}
	ok, err := confirm(fmt.Sprintf("Delete summary #%d?", id), yes)
	if err != nil {
		return invalid(w, err)
	}
	if !ok {
		fmt.Fprintln(w, "Cancelled")
		return exitOK
	}

	ack, err := d.api.DeleteSummary(ctx, id)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, ack)
	}
	fmt.Fprintf(w, "Deleted summary #%d\n", id)
	return exitOK
}
