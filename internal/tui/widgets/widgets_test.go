// ABOUTME: Tests for dashboard widgets
// ABOUTME: Covers quota grading, tier badges and block alignment

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
)

func TestQuotaStatus(t *testing.T) {
	tests := []struct {
		remaining, limit int
		want             StatusLevel
	}{
		{5, 5, StatusOK},
		{2, 5, StatusOK},
		{1, 5, StatusWarning},
		{0, 5, StatusCritical},
		{9, 50, StatusWarning},
		{10, 50, StatusOK},
		{-1, 0, StatusCritical},
	}
	for _, tt := range tests {
		if got := QuotaStatus(tt.remaining, tt.limit); got != tt.want {
			t.Errorf("QuotaStatus(%d, %d) = %v, want %v", tt.remaining, tt.limit, got, tt.want)
		}
	}
}

func TestTierBadgeText(t *testing.T) {
	for _, tier := range []models.UserType{models.UserTypeFree, models.UserTypePremium} {
		if !strings.Contains(TierBadge(tier), string(tier)) {
			t.Errorf("badge for %s missing tier name", tier)
		}
	}
	if !strings.Contains(TierBadge(models.UserTypeVIP), "VIP") {
		t.Error("VIP badge missing tier name")
	}
	if !strings.Contains(TierBadge(""), "--") {
		t.Error("empty tier should render placeholder")
	}
}

func TestMetricBlockLinesShareWidth(t *testing.T) {
	config := DefaultMetricBlockConfig()
	config.Width = 30

	blocks := []string{
		MetricBlock(icons.Summary, "Summaries", "12", "all time", config),
		MetricBlockWithBar(icons.Quota, "Today", 60, "3 of 5 requests", config),
	}
	for _, block := range blocks {
		for i, line := range strings.Split(block, "\n") {
			if w := lipgloss.Width(line); w != config.Width {
				t.Errorf("line %d width = %d, want %d: %q", i, w, config.Width, line)
			}
		}
	}
}

func TestQuotaBarLabel(t *testing.T) {
	bar := QuotaBar(2, 5, 10)
	if !strings.Contains(bar, "2/5 used") {
		t.Errorf("expected usage label, got %q", bar)
	}
	if !strings.Contains(QuotaBar(0, 0, 10), "0/0 used") {
		t.Error("zero limit should still render a label")
	}
}

func TestQuotaBarMarksWarningBand(t *testing.T) {
	if got := strings.Count(QuotaBar(2, 5, 10), "│"); got != 1 {
		t.Errorf("expected one band marker with room left, got %d", got)
	}
	if strings.Contains(QuotaBar(5, 5, 10), "│") {
		t.Error("a spent quota fills the bar, so no marker should show")
	}
	if strings.Contains(QuotaBar(0, 0, 10), "│") {
		t.Error("no limit means no bands")
	}
	if cfg := quotaBands(50); cfg.WarnThreshold != 80 || cfg.CritThreshold != 100 {
		t.Errorf("unexpected bands for a large limit: %+v", cfg)
	}
	if cfg := quotaBands(2); cfg.WarnThreshold != 50 {
		t.Errorf("last request of two should start at 50%%, got %v", cfg.WarnThreshold)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("summarize", 6); got != "sum..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ok", 6); got != "ok" {
		t.Errorf("truncate = %q", got)
	}
}
