// Package extract holds the bounded, best-effort text utilities used to
// pull structured intent out of specialist prose: labeled prompt lines,
// nicknames, markdown stripping, and line splitting. Outputs are
// advisory; callers must guard with their own success checks.
package extract

import (
	"regexp"
	"strings"
)

// promptLabelRegex matches a "suggested future image prompt" label line
// and captures the text after the separator.
var promptLabelRegex = regexp.MustCompile(`(?i)suggested\s+future\s+image\s+prompt\s*[:\-–]\s*(.+)`)

// nicknameRegex matches a "nickname" label and captures its value.
var nicknameRegex = regexp.MustCompile(`(?i)\bnickname\b\s*[:\-–]\s*(.+)`)

// imageURLLineRegex recognizes a concrete generated-media URL line.
var imageURLLineRegex = regexp.MustCompile(`(?im)^\s*image\s+url\s*:\s*https?://\S+`)

// markdownImageRegex recognizes a markdown image embed with an absolute URL.
var markdownImageRegex = regexp.MustCompile(`!\[[^\]]*\]\(https?://[^)]+\)`)

// promptLineRegex matches lines the binder must discard before
// reassembly: prior prompt or URL lines from an earlier draft.
var promptOrURLLineRegex = regexp.MustCompile(`(?i)^\s*(suggested\s+future\s+image\s+prompt|prompt\s+used|image\s+url)\s*[:\-–]`)

// markdownMarkerRegex strips leading bullet/heading markers and
// blockquote arrows from a line.
var markdownMarkerRegex = regexp.MustCompile(`^\s*(?:[-*+]\s+|#{1,6}\s+|>\s+|\d+[.)]\s+)+`)

// emphasisRegex strips inline emphasis and code markers.
var emphasisRegex = regexp.MustCompile("[*_`]+")

// SplitLines splits a block on line boundaries, trims each line, and
// drops lines that are empty after trimming.
func SplitLines(block string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// StripMarkdown removes bullet/heading/blockquote markers and inline
// emphasis from a single line. Best-effort; link syntax is left intact.
func StripMarkdown(line string) string {
	line = markdownMarkerRegex.ReplaceAllString(line, "")
	line = emphasisRegex.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// Truncate caps s near max runes, appending an ellipsis when trimmed.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// PromptLine looks for a labeled "suggested future image prompt" line
// and returns its value.
func PromptLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if m := promptLabelRegex.FindStringSubmatch(line); m != nil {
			prompt := StripMarkdown(m[1])
			if prompt != "" {
				return prompt, true
			}
		}
	}
	return "", false
}

// Nickname looks for a labeled nickname in the text, e.g. a visual
// option's friendly name, for use as image alt text.
func Nickname(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if m := nicknameRegex.FindStringSubmatch(line); m != nil {
			name := StripMarkdown(m[1])
			// A label line can carry trailing punctuation from prose.
			name = strings.Trim(name, ".,;:!?\"'")
			if name != "" {
				return name, true
			}
		}
	}
	return "", false
}

// FirstContentLine returns the first non-empty prose line of text with
// markdown markers stripped, or "" if the text has no content. Prompt
// and URL artifact lines from earlier formatting passes are skipped.
func FirstContentLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if IsPromptOrURLLine(line) {
			continue
		}
		if stripped := StripMarkdown(line); stripped != "" {
			return stripped
		}
	}
	return ""
}

// HasImageURL reports whether text already carries a concrete
// generated-media URL: an "Image URL:" line or a markdown image embed.
func HasImageURL(text string) bool {
	return imageURLLineRegex.MatchString(text) || markdownImageRegex.MatchString(text)
}

// IsPromptOrURLLine reports whether a line is a prompt/URL artifact
// from an earlier formatting pass and should be discarded on rewrite.
func IsPromptOrURLLine(line string) bool {
	return promptOrURLLineRegex.MatchString(line) || markdownImageRegex.MatchString(line)
}
