// ABOUTME: Progress bars with visual threshold zones
// ABOUTME: Renders daily quota usage with a marker where the warning band begins

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width         int
	WarnThreshold float64 // Percentage where warning zone starts (default 80)
	CritThreshold float64 // Percentage where critical zone starts (default 95)
	OKColor       lipgloss.Color
	WarnColor     lipgloss.Color
	CritColor     lipgloss.Color
	EmptyColor    lipgloss.Color
	ShowZones     bool // Show threshold markers in the bar
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:         20,
		WarnThreshold: 80,
		CritThreshold: 95,
		OKColor:       lipgloss.Color("#10B981"), // Green
		WarnColor:     lipgloss.Color("#F59E0B"), // Amber
		CritColor:     lipgloss.Color("#EF4444"), // Red
		EmptyColor:    lipgloss.Color("#374151"), // Dark gray
		ShowZones:     true,
	}
}

// ProgressBar renders an enhanced progress bar with threshold zones
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}

	// Clamp percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(config.Width))
	if filled > config.Width {
		filled = config.Width
	}

	// Calculate zone boundaries (positions in the bar)
	warnPos := int(config.WarnThreshold / 100.0 * float64(config.Width))
	critPos := int(config.CritThreshold / 100.0 * float64(config.Width))

	var bar strings.Builder
	bar.WriteString("[")

	for i := 0; i < config.Width; i++ {
		var char string
		var color lipgloss.Color

		if i < filled {
			char = "█"
			// Color based on which zone this position is in
			if i >= critPos || percent >= config.CritThreshold {
				color = config.CritColor
			} else if i >= warnPos {
				color = config.WarnColor
			} else {
				color = config.OKColor
			}
		} else {
			// Empty portion
			if config.ShowZones && (i == warnPos || i == critPos) {
				char = "│"
				color = config.EmptyColor
			} else {
				char = "░"
				color = config.EmptyColor
			}
		}

		bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(char))
	}

	bar.WriteString("]")
	return bar.String()
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	empty := width - filled

	filledStr := strings.Repeat("▓", filled)
	emptyStr := strings.Repeat("░", empty)

	return lipgloss.NewStyle().Foreground(color).Render(filledStr) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(emptyStr)
}

// QuotaBar renders today's usage against the daily limit, e.g.
// "[███│░] 3/5 used". The marker shows where the warning band starts.
// A non-positive limit renders an empty bar.
func QuotaBar(used, limit, width int) string {
	var percent float64
	if limit > 0 {
		percent = float64(used) / float64(limit) * 100
	}
	config := quotaBands(limit)
	config.Width = width
	label := lipgloss.NewStyle().Foreground(statusColor(QuotaStatus(limit-used, limit), config)).
		Render(fmt.Sprintf("%d/%d used", used, limit))
	return ProgressBar(percent, config) + " " + label
}

// quotaBands places the warning zone where QuotaStatus starts warning: the
// last request or the final fifth of the limit, whichever comes first.
// Critical is a spent quota.
func quotaBands(limit int) ProgressBarConfig {
	config := DefaultProgressBarConfig()
	config.CritThreshold = 100
	if limit <= 0 {
		config.ShowZones = false
		return config
	}
	config.WarnThreshold = min(80, float64(limit-1)/float64(limit)*100)
	return config
}

func statusColor(level StatusLevel, config ProgressBarConfig) lipgloss.Color {
	switch level {
	case StatusCritical:
		return config.CritColor
	case StatusWarning:
		return config.WarnColor
	default:
		return config.OKColor
	}
}
