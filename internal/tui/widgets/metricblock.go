// ABOUTME: Compact metric block widget for dashboard displays
// ABOUTME: Combines icon, value, optional bar and subtitle in a bordered panel

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/yt-summarizer/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       22,
		BorderColor: lipgloss.Color("#6B7280"), // Muted gray
		TitleColor:  lipgloss.Color("#7C3AED"), // Purple
		ValueColor:  lipgloss.Color("#F9FAFB"), // Light
	}
}

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title string, value string, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return joinBlock(config, topBorder(icon, title, innerWidth, config),
		padLine(valueStyle.Render(truncate(value, innerWidth)), innerWidth),
		padLine(subtitleStyle.Render(truncate(subtitle, innerWidth)), innerWidth),
	)
}

// MetricBlockWithBar renders a metric block whose value line is a usage bar
func MetricBlockWithBar(icon icons.Icon, title string, percent float64, details string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 22
	}
	innerWidth := config.Width - 4
	barWidth := max(1, innerWidth-6)

	level := StatusFromPercent(percent, 80, 95)
	bg, _ := levelColors(level)

	percentStr := lipgloss.NewStyle().Foreground(bg).Bold(true).Render(fmt.Sprintf("%3.0f%%", percent))
	valueLine := percentStr + " " + StatusIcon(level)
	barLine := CompactProgressBar(percent, barWidth, bg)

	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	return joinBlock(config, topBorder(icon, title, innerWidth, config),
		padLine(valueLine, innerWidth),
		padLine(barLine, innerWidth),
		padLine(detailStyle.Render(truncate(details, innerWidth)), innerWidth),
	)
}

func topBorder(icon icons.Icon, title string, innerWidth int, config MetricBlockConfig) string {
	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), innerWidth)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)
	return fmt.Sprintf("┌─ %s %s┐",
		titleStyle.Render(titleStr),
		strings.Repeat("─", max(0, innerWidth-lipgloss.Width(titleStr)-1)))
}

// padLine wraps already-styled content in side borders, padding by display width
func padLine(content string, innerWidth int) string {
	pad := max(0, innerWidth-lipgloss.Width(content))
	return "│  " + content + strings.Repeat(" ", pad) + "│"
}

func joinBlock(config MetricBlockConfig, top string, lines ...string) string {
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)
	out := []string{borderStyle.Render(top)}
	for _, l := range lines {
		out = append(out, borderStyle.Render(l))
	}
	out = append(out, borderStyle.Render(fmt.Sprintf("└%s┘", strings.Repeat("─", config.Width-2))))
	return strings.Join(out, "\n")
}

// truncate shortens a string to maxLen runes with ellipsis if needed
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}
