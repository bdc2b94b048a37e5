package optimizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// questionMarker matches a leading "1.", "2)", "3:", "4" or bullet glyphs,
// including stacked forms like "1. -" and "- 2.". A number after a bullet
// only counts as a marker when punctuated, so "- 10 tips" keeps its number.
var questionMarker = regexp.MustCompile(`^(?:\d+\s*[.):]?\s*|(?:[-–•*·◦‣▪]\s*)+(?:\d+\s*[.):]\s*)?)(?:[-–•*·◦‣▪]\s*)*`)

const bulletGlyphs = "-–•*·◦‣▪"

// ParseQuestions extracts question lines from generated text.
//
// A line counts as a question when it starts with a digit, a hyphen or a
// bullet glyph. The marker and surrounding whitespace are stripped and empty
// remainders dropped. Other lines (preambles, closing remarks) are ignored.
// At most limit questions are returned; limit <= 0 returns all of them.
// ParseQuestions never fails: degenerate input yields a short or empty slice.
func ParseQuestions(raw string, limit int) []string {
	questions := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !startsWithMarker(line) {
			continue
		}

		text := strings.TrimSpace(questionMarker.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		questions = append(questions, text)

		if limit > 0 && len(questions) == limit {
			break
		}
	}
	return questions
}

func startsWithMarker(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return (r >= '0' && r <= '9') || strings.ContainsRune(bulletGlyphs, r)
}
