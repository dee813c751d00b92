// ABOUTME: Human-readable rendering of sizes, durations and timestamps
// ABOUTME: Shared by the TUI panels and the command output

package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// VideoLength renders seconds as m:ss or h:mm:ss; non-positive is "-"
func VideoLength(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Ago renders t relative to now, e.g. "3 hours ago"; the zero time is "unknown"
func Ago(t time.Time) string {
	return AgoFrom(t, time.Now())
}

// AgoFrom renders t relative to now
func AgoFrom(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Bytes renders a byte count in SI units, e.g. "4.2 MB"
func Bytes(n int64) string {
	if n < 0 {
		return "unknown size"
	}
	return humanize.Bytes(uint64(n))
}

// Count renders an integer with thousands separators
func Count(n int64) string {
	return humanize.Comma(n)
}

// MaxLength renders a maximum video duration in whole minutes or hours
func MaxLength(seconds int) string {
	switch {
	case seconds <= 0:
		return "-"
	case seconds%3600 == 0:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dmin", seconds/60)
	}
}
