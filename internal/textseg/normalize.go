// Package textseg normalizes plain text and chunks it into threshold-bounded
// sentences for batched synthesis.
package textseg

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	punctReplacer = strings.NewReplacer(
		"—", "-",
		"–", "-",
		"‒", "-",
		"…", "...",
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	)
)

// Normalize collapses whitespace and unifies typographic punctuation so the
// splitter and the synthesizer see one consistent form.
func Normalize(text string) string {
	text = punctReplacer.Replace(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
