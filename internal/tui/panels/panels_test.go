// ABOUTME: Tests for shared panel error rendering
// ABOUTME: Backend messages are classified, session errors are hidden

package panels

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/markalston/yt-summarizer/internal/client"
)

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"unauthorized", &client.APIError{StatusCode: 401, Message: "Unauthorized"}, ""},
		{"no session", fmt.Errorf("stats: %w", client.ErrNotAuthenticated), ""},
		{"age restricted", &client.APIError{StatusCode: 400, Message: "Sign in to confirm your age"}, "age verification"},
		{"unmatched backend text", &client.APIError{StatusCode: 400, Message: "Something odd"}, "Something odd"},
		{"transport", &client.TransportError{Message: "cannot connect to backend at http://x/api"}, "cannot connect to backend"},
		{"plain", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorText(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("ErrorText() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ErrorText() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
