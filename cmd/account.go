// ABOUTME: Account commands: stats, limits, profile and upgrade
// ABOUTME: Prints daily quota usage and changes the account tier

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/yt-summarizer/internal/format"
	"github.com/markalston/yt-summarizer/internal/models"
	"github.com/markalston/yt-summarizer/internal/tui/widgets"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show today's usage and total summaries",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runStats)
	},
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show the limits of your plan",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runLimits)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your account profile as the backend stores it",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runProfile)
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade TYPE",
	Short: "Change your plan (FREE, PREMIUM or VIP)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, d *deps, w io.Writer) int {
			return runUpgrade(ctx, d, w, args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, limitsCmd, profileCmd, upgradeCmd)
}

// runStats prints usage figures
func runStats(ctx context.Context, d *deps, w io.Writer) int {
	stats, err := d.api.UserStats(ctx)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, stats)
	}
	fmt.Fprintln(w, formatStats(stats))
	return exitOK
}

func formatStats(s *models.UsageStats) string {
	lines := []string{
		fmt.Sprintf("Today:      %s", widgets.QuotaBar(s.TodayUsage, s.DailyLimit, 20)),
		fmt.Sprintf("Remaining:  %d", s.RemainingRequests),
		fmt.Sprintf("Summaries:  %s all time", format.Count(s.TotalSummaries)),
	}
	if s.UserType != "" {
		lines = append(lines, fmt.Sprintf("Plan:       %s", s.UserType))
	}
	return strings.Join(lines, "\n")
}

// runLimits prints the plan limits
func runLimits(ctx context.Context, d *deps, w io.Writer) int {
	limits, err := d.api.UserLimits(ctx)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, limits)
	}
	fmt.Fprintln(w, formatLimits(limits))
	return exitOK
}

func formatLimits(l *models.UserLimits) string {
	reached := ""
	if l.HasReachedLimit {
		reached = " (limit reached)"
	}
	return strings.Join([]string{
		fmt.Sprintf("Plan:        %s", l.UserType),
		fmt.Sprintf("Daily limit: %d summaries", l.DailyLimit),
		fmt.Sprintf("Used today:  %d, %d left%s", l.TodayUsage, l.RemainingRequests, reached),
		fmt.Sprintf("Max length:  %s per video", format.MaxLength(l.MaxVideoDurationSeconds)),
	}, "\n")
}

// runProfile prints the stored account
func runProfile(ctx context.Context, d *deps, w io.Writer) int {
	p, err := d.api.UserProfile(ctx)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, p)
	}
	lines := []string{
		fmt.Sprintf("Username:    %s", p.Username),
		fmt.Sprintf("Email:       %s", p.Email),
		fmt.Sprintf("Plan:        %s", p.UserType),
		fmt.Sprintf("Used today:  %d of %d", p.TodayUsage, p.DailyLimit),
	}
	if !p.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Created:     %s", format.Ago(p.CreatedAt.Time)))
	}
	if !p.UpdatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Updated:     %s", format.Ago(p.UpdatedAt.Time)))
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
	return exitOK
}

// runUpgrade changes the tier and refreshes the stored profile
func runUpgrade(ctx context.Context, d *deps, w io.Writer, arg string) int {
	tier, err := models.ParseUserType(arg)
	if err != nil {
		return invalid(w, err)
	}
	res, err := d.api.UpgradeUser(ctx, tier)
	if err != nil {
		return report(w, err)
	}

	// the stored profile still carries the old tier and limits
	ctrl := d.Session()
	if snap := ctrl.Restore(ctx); snap.IsAuthenticated() {
		limit, maxLen := res.DailyLimit, res.MaxVideoDuration
		newType := res.NewType
		ctrl.UpdateUser(models.ProfilePatch{UserType: &newType, DailyLimit: &limit, MaxVideoDurationSeconds: &maxLen})
	}

	if IsJSONOutput() {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "%s\nPlan: %s, %d summaries a day, videos up to %s\n",
		res.Message, res.NewType, res.DailyLimit, format.MaxLength(res.MaxVideoDuration))
	return exitOK
}
