// ABOUTME: Tests for YouTube URL validation
// ABOUTME: Verifies accepted link shapes and deterministic audio file names

package youtube

import (
	"errors"
	"testing"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", true},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"youtu.be/dQw4w9WgXcQ?si=abc", true},
		{"", false},
		{"   ", false},
		{"hello world", false},
		{"https://vimeo.com/123456789", false},
		{"https://www.youtube.com/watch?v=short", false},
		{"https://www.youtube.com/channel/UC1234567890", false},
		{"https://youtu.be/", false},
		{"ftp://youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"https://evil.com/youtube.com/watch?v=dQw4w9WgXcQ", false},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			if got := IsValidURL(tc.url); got != tc.want {
				t.Errorf("IsValidURL(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL(""); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
	if err := ValidateURL("not a url"); !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
	if err := ValidateURL("https://youtu.be/dQw4w9WgXcQ"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestVideoID(t *testing.T) {
	id, ok := VideoID("https://www.youtube.com/embed/dQw4w9WgXcQ")
	if !ok || id != "dQw4w9WgXcQ" {
		t.Errorf("expected dQw4w9WgXcQ, got %q (ok=%v)", id, ok)
	}
	if _, ok := VideoID("https://example.com"); ok {
		t.Error("expected no id for non-YouTube URL")
	}
}

func TestAudioFileName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "youtube_audio_dQw4w9WgXcQ.mp3"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", "youtube_audio_dQw4w9WgXcQ.mp3"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "youtube_audio_dQw4w9WgXcQ.mp3"},
		{"https://youtu.be/dQw4w9WgXcQ#/../../../tmp/evil", "youtube_audio_dQw4w9WgXcQ.mp3"},
		{"youtu.be/../../etc/passwd", "youtube_audio_audio.mp3"},
		{"https://youtu.be/abc#frag", "youtube_audio_abc.mp3"},
		{"something else", "youtube_audio_audio.mp3"},
	}

	for _, tc := range tests {
		if got := AudioFileName(tc.url); got != tc.want {
			t.Errorf("AudioFileName(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
