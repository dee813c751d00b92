// ABOUTME: YouTube URL validation and video identifier extraction
// ABOUTME: Shared by the summary and audio panels before any backend call

package youtube

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyURL is returned when no URL was entered
	ErrEmptyURL = errors.New("enter a YouTube URL")
	// ErrInvalidURL is returned when the URL is not a recognised YouTube video link
	ErrInvalidURL = errors.New("not a valid YouTube URL")
)

// urlPattern matches watch, embed, v and short links with an 11 character id.
// Query parameters or a fragment may follow the id.
var urlPattern = regexp.MustCompile(
	`^(?:https?://)?(?:www\.)?(?:youtu\.be/|youtube\.com/(?:embed/|v/|watch\?v=|watch\?.+&v=))([A-Za-z0-9_-]{11})(?:[?&#]\S*)?$`,
)

// IsValidURL reports whether s is a YouTube video link
func IsValidURL(s string) bool {
	return urlPattern.MatchString(strings.TrimSpace(s))
}

// ValidateURL returns a validation error for empty or non-YouTube input
func ValidateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrEmptyURL
	}
	if !urlPattern.MatchString(s) {
		return ErrInvalidURL
	}
	return nil
}

// VideoID returns the 11 character id of a valid YouTube URL
func VideoID(s string) (string, bool) {
	m := urlPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractVideoID derives a file-name friendly identifier from youtu.be/
// or watch?v= links, falling back to "audio" for any other shape or for an
// identifier that could name a path
func ExtractVideoID(url string) string {
	var id string
	if _, rest, ok := strings.Cut(url, "youtu.be/"); ok {
		id, _, _ = strings.Cut(rest, "?")
	} else if _, rest, ok := strings.Cut(url, "watch?v="); ok {
		id, _, _ = strings.Cut(rest, "&")
	}
	id, _, _ = strings.Cut(id, "#")
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "audio"
	}
	return id
}

// AudioFileName returns the deterministic download name for a video's audio track
func AudioFileName(url string) string {
	if id, ok := VideoID(url); ok {
		return "youtube_audio_" + id + ".mp3"
	}
	return "youtube_audio_" + ExtractVideoID(url) + ".mp3"
}
