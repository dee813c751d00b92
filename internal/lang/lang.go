// ABOUTME: Summary output languages offered to the user
// ABOUTME: Display names are rendered from CLDR data via golang.org/x/text

package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is the language preselected for new summaries
const Default = "es"

// codes lists the languages the summarizer backend accepts, in menu order
var codes = []string{
	"es", "en", "fr", "de", "it", "pt", "ru", "zh",
	"ja", "ko", "ar", "hi", "tr", "vi", "pl",
}

// Language is a selectable summary language
type Language struct {
	Code string
	Name string
}

// All returns the supported languages with English display names
func All() []Language {
	namer := display.English.Languages()
	out := make([]Language, 0, len(codes))
	for _, c := range codes {
		out = append(out, Language{Code: c, Name: namer.Name(language.MustParse(c))})
	}
	return out
}

// Name returns the English display name for a supported code
func Name(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return display.English.Languages().Name(tag)
}

// Validate reports whether code is one of the supported languages
func Validate(code string) error {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, c := range codes {
		if c == code {
			return nil
		}
	}
	return fmt.Errorf("unsupported language %q: choose one of %s", code, strings.Join(codes, ", "))
}

// WordCountRanges are the summary lengths offered by the backend
var WordCountRanges = []string{"100-200", "200-400", "400-600"}

// DefaultWordCountRange is the length preselected for new summaries
const DefaultWordCountRange = "100-200"

// ValidateWordCountRange reports whether r is one of the offered ranges
func ValidateWordCountRange(r string) error {
	for _, w := range WordCountRanges {
		if w == r {
			return nil
		}
	}
	return fmt.Errorf("unsupported word count range %q: choose one of %s", r, strings.Join(WordCountRanges, ", "))
}
