package ollama

import (
	"regexp"
	"strings"
)

var (
	reasoningTagRegex = regexp.MustCompile(`(?i)<(/?)think(?:ing)?\s*>`)
	fenceRegex        = regexp.MustCompile("`{3,}[A-Za-z0-9_+#.-]*")
	boldRegex         = regexp.MustCompile(`\*{2,}`)
)

// Sanitize turns raw model output into SonarQube markup:
//   - <think>/<thinking> blocks are removed together with their content, nesting included;
//     a closing tag without an opener drops everything before it, an opener that is never
//     closed drops everything after it
//   - code fences become the double backtick code span, language hints included
//   - runs of asterisks become a single one
//   - surrounding whitespace is trimmed
//
// Sanitize is pure and Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) string {
	text := raw
	// Removing a block can splice a new tag together ("<thi<think>x</think>nk>"), and a fence
	// followed by another fence collapses into a new run of backticks, so both steps run to a
	// fixpoint. Each pass strictly shortens the text.
	for reasoningTagRegex.MatchString(text) {
		text = stripReasoning(text)
	}
	for fenceRegex.MatchString(text) {
		text = fenceRegex.ReplaceAllString(text, "``")
	}
	text = boldRegex.ReplaceAllString(text, "*")
	return strings.TrimSpace(text)
}

// stripReasoning removes the reasoning blocks delimited by the tags present in text.
func stripReasoning(text string) string {
	tags := reasoningTagRegex.FindAllStringSubmatchIndex(text, -1)
	if len(tags) == 0 {
		return text
	}

	var b strings.Builder
	depth := 0
	last := 0
	for _, m := range tags {
		start, end := m[0], m[1]
		closing := m[3] > m[2]

		if depth == 0 {
			b.WriteString(text[last:start])
		}
		switch {
		case !closing:
			depth++
		case depth > 0:
			depth--
		default:
			// Stray closer: the model started reasoning without an opening tag.
			b.Reset()
		}
		last = end
	}
	if depth == 0 {
		b.WriteString(text[last:])
	}
	return b.String()
}
