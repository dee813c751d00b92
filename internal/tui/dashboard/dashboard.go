// ABOUTME: Account overview shown above the dashboard panels
// ABOUTME: Renders daily quota usage, total summaries and the account tier

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
	"github.com/markalston/yt-summarizer/internal/tui/styles"
	"github.com/markalston/yt-summarizer/internal/tui/widgets"
)

// wideLayout is the width from which metric blocks are drawn side by side
const wideLayout = 100

// Overview displays usage stats for the signed-in user
type Overview struct {
	user  *models.UserProfile
	stats *models.UsageStats
	err   string
	width int
}

// New creates an overview for user; stats arrive later via SetStats
func New(user *models.UserProfile, width int) *Overview {
	return &Overview{user: user, width: width}
}

// SetUser replaces the profile shown
func (o *Overview) SetUser(user *models.UserProfile) {
	o.user = user
}

// SetStats replaces the usage figures and clears any fetch error
func (o *Overview) SetStats(stats *models.UsageStats) {
	o.stats = stats
	o.err = ""
}

// SetError records a failed stats fetch; the last good figures stay visible
func (o *Overview) SetError(text string) {
	o.err = text
}

// Stats returns the figures currently shown
func (o *Overview) Stats() *models.UsageStats {
	return o.stats
}

// SetWidth updates the available width
func (o *Overview) SetWidth(width int) {
	o.width = width
}

// Reset forgets user and stats
func (o *Overview) Reset() {
	o.user = nil
	o.stats = nil
	o.err = ""
}

func (o *Overview) tier() models.UserType {
	if o.stats != nil && o.stats.UserType != "" {
		return o.stats.UserType
	}
	if o.user != nil {
		return o.user.UserType
	}
	return ""
}

// View renders the overview
func (o *Overview) View() string {
	if o.stats == nil {
		line := styles.MutedText.Render("Loading usage...")
		if o.err != "" {
			line = styles.ErrorText.Render(o.err)
		}
		return o.identity() + "\n" + line
	}

	var body string
	if o.width >= wideLayout {
		body = o.blocks()
	} else {
		body = o.compact()
	}

	out := o.identity() + "\n" + body
	if o.err != "" {
		out += "\n" + styles.ErrorText.Render(o.err)
	}
	return out
}

func (o *Overview) identity() string {
	name := "-"
	if o.user != nil {
		name = o.user.Username
	}
	return fmt.Sprintf("%s %s  %s", icons.User.String(), styles.ValueStyle.Render(name), widgets.TierBadge(o.tier()))
}

func (o *Overview) blocks() string {
	s := o.stats
	config := widgets.DefaultMetricBlockConfig()
	config.Width = 30

	today := widgets.MetricBlockWithBar(icons.Quota, "Today", s.UsagePercent(),
		fmt.Sprintf("%d of %d used, %d left", s.TodayUsage, s.DailyLimit, s.RemainingRequests), config)

	total := widgets.MetricBlock(icons.Summary, "Summaries", format.Count(s.TotalSummaries), "all time", config)

	maxLen := "-"
	if o.user != nil {
		maxLen = format.MaxLength(o.user.MaxVideoDurationSeconds)
	}
	limits := widgets.MetricBlock(icons.Video, "Max length", maxLen, "per video", config)

	return lipgloss.JoinHorizontal(lipgloss.Top, today, " ", total, " ", limits)
}

func (o *Overview) compact() string {
	s := o.stats
	parts := []string{
		widgets.QuotaBar(s.TodayUsage, s.DailyLimit, 16),
		widgets.StatusText(fmt.Sprintf("%d left today", s.RemainingRequests),
			widgets.QuotaStatus(s.RemainingRequests, s.DailyLimit)),
		styles.MutedText.Render(fmt.Sprintf("%s summaries", format.Count(s.TotalSummaries))),
	}
	return strings.Join(parts, "  ")
}
