// ABOUTME: Tests for the account overview
// ABOUTME: Validates usage figures in both wide and compact layouts

package dashboard

import (
	"strings"
	"testing"

	"github.com/markalston/yt-summarizer/internal/models"
)

func sampleUser() *models.UserProfile {
	return &models.UserProfile{
		ID: 1, Username: "alice", UserType: models.UserTypeFree,
		DailyLimit: 5, MaxVideoDurationSeconds: 600,
	}
}

func sampleStats() *models.UsageStats {
	return &models.UsageStats{RemainingRequests: 3, TotalSummaries: 1234, DailyLimit: 5, TodayUsage: 2}
}

func TestOverviewWide(t *testing.T) {
	o := New(sampleUser(), 120)
	o.SetStats(sampleStats())
	view := o.View()

	for _, expected := range []string{"alice", "FREE", "Today", "2 of 5 used, 3 left", "1,234", "10min"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestOverviewCompact(t *testing.T) {
	o := New(sampleUser(), 80)
	o.SetStats(sampleStats())
	view := o.View()

	for _, expected := range []string{"2/5 used", "3 left today", "1,234 summaries"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestOverviewLoading(t *testing.T) {
	o := New(sampleUser(), 80)
	if !strings.Contains(o.View(), "Loading usage") {
		t.Error("expected loading message before stats arrive")
	}

	o.SetError("cannot connect to backend at http://localhost:8080/api")
	if !strings.Contains(o.View(), "cannot connect") {
		t.Error("expected fetch error")
	}
}

func TestOverviewTierFromStats(t *testing.T) {
	o := New(sampleUser(), 80)
	stats := sampleStats()
	stats.UserType = models.UserTypePremium
	o.SetStats(stats)

	if !strings.Contains(o.View(), "PREMIUM") {
		t.Error("stats tier should win over the cached profile")
	}
}

func TestOverviewKeepsStatsOnError(t *testing.T) {
	o := New(sampleUser(), 80)
	o.SetStats(sampleStats())
	o.SetError("request timed out")

	view := o.View()
	if !strings.Contains(view, "2/5 used") || !strings.Contains(view, "request timed out") {
		t.Errorf("expected stale stats plus error, got:\n%s", view)
	}
}
