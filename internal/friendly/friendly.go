// ABOUTME: Maps backend error messages to friendlier user-facing text
// ABOUTME: Substring heuristics only; unmatched messages pass through unchanged

package friendly

import "strings"

// Kind identifies the category of a classified backend error
type Kind int

const (
	KindUnknown Kind = iota
	KindAgeRestricted
	KindPrivate
	KindRegionBlocked
	KindUnavailable
	KindTooLong
	KindQuota
)

// Message is a classified, presentation-ready error
type Message struct {
	Kind    Kind
	Icon    string
	Text    string
	Matched bool
}

// String renders the message with its icon
func (m Message) String() string {
	if m.Icon == "" {
		return m.Text
	}
	return m.Icon + " " + m.Text
}

type rule struct {
	kind     Kind
	icon     string
	text     string
	patterns [][]string // any group matches when all of its substrings are present
}

// rules are evaluated in order; the first match wins. Region checks come
// before the generic unavailable patterns because "not available in your
// country" contains both.
var rules = []rule{
	{
		kind:     KindAgeRestricted,
		icon:     "🔞",
		text:     "This video requires age verification and cannot be processed.",
		patterns: [][]string{{"confirm your age"}, {"age-restricted"}, {"age restricted"}},
	},
	{
		kind:     KindPrivate,
		icon:     "🔒",
		text:     "This video is private. Only public videos can be processed.",
		patterns: [][]string{{"private"}},
	},
	{
		kind:     KindRegionBlocked,
		icon:     "🌍",
		text:     "This video is blocked in the server's region.",
		patterns: [][]string{{"region"}, {"country"}, {"not available in your"}},
	},
	{
		kind:     KindUnavailable,
		icon:     "🚫",
		text:     "This video is unavailable or has been removed.",
		patterns: [][]string{{"unavailable"}, {"removed"}, {"not available"}, {"deleted"}},
	},
	{
		kind:     KindTooLong,
		icon:     "⏱",
		text:     "The video is too long or processing timed out. Try a shorter video.",
		patterns: [][]string{{"timeout"}, {"timed out"}, {"too long"}, {"exceeds"}, {"duration"}},
	},
	{
		kind:     KindQuota,
		icon:     "📊",
		text:     "You have reached your daily limit. Upgrade your plan or try again tomorrow.",
		patterns: [][]string{{"limit", "daily"}, {"limit", "reached"}},
	},
}

// Classify maps a raw backend error message to a friendly message.
// Unknown messages are returned verbatim with Matched=false.
func Classify(raw string) Message {
	lower := strings.ToLower(raw)
	for _, r := range rules {
		if r.matches(lower) {
			return Message{Kind: r.kind, Icon: r.icon, Text: r.text, Matched: true}
		}
	}
	return Message{Kind: KindUnknown, Text: raw}
}

func (r rule) matches(lower string) bool {
	for _, group := range r.patterns {
		all := true
		for _, p := range group {
			if !strings.Contains(lower, p) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
