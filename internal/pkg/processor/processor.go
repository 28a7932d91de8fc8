// Package processor cleans generated commit messages before they are
// shown to the user or handed to git.
package processor

import (
	"strings"

	apperrors "github.com/draftcommit/draftcommit/internal/pkg/errors"
)

// Section headers the models emit for function lists. A header is only
// stripped when its entire section is a lone placeholder; real bullet
// lists pass through untouched.
const (
	functionsAddedHeader   = "functions added:"
	functionsRemovedHeader = "functions removed:"
)

// MessageProcessor defines the interface for cleaning generated messages.
type MessageProcessor interface {
	Process(raw string) (string, error)
}

// DefaultProcessor implements the MessageProcessor interface.
type DefaultProcessor struct{}

// NewProcessor creates a new DefaultProcessor.
func NewProcessor() *DefaultProcessor {
	return &DefaultProcessor{}
}

// Process normalizes a raw model response into a commit message.
//
// Steps, in order: strip code fences, drop placeholder function-list
// sections, trim trailing blank lines. A result with no content left is
// an extraction failure, not an empty commit message.
func (p *DefaultProcessor) Process(raw string) (string, error) {
	text := stripCodeFences(raw)

	lines := strings.Split(text, "\n")
	lines = removePlaceholderSections(lines)
	lines = trimTrailingBlank(lines)

	result := strings.Join(lines, "\n")
	if strings.TrimSpace(result) == "" {
		return "", apperrors.NewExtractionError("processor")
	}

	return result, nil
}

// stripCodeFences removes a surrounding markdown code fence, which some
// models add despite instructions.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return text
	}

	// Opening fence may carry a language tag; drop the whole line.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

// removePlaceholderSections drops a function-list header whose only
// content is a placeholder bullet. Both the header line and the
// placeholder line go; any further content in the section keeps it.
func removePlaceholderSections(lines []string) []string {
	result := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		if isFunctionListHeader(lines[i]) {
			next, ok := nextNonBlank(lines, i+1)
			if ok && isPlaceholder(lines[next]) && placeholderAlone(lines, next+1) {
				i = next
				continue
			}
		}
		result = append(result, lines[i])
	}

	return result
}

// placeholderAlone reports whether the placeholder is the last thing in
// its section: the line after it is blank, another header, or the end of
// the message. Anything else means the section has real content.
func placeholderAlone(lines []string, start int) bool {
	if start >= len(lines) {
		return true
	}
	return strings.TrimSpace(lines[start]) == "" || isFunctionListHeader(lines[start])
}

// isFunctionListHeader matches the two section headers, ignoring case
// and surrounding whitespace.
func isFunctionListHeader(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return l == functionsAddedHeader || l == functionsRemovedHeader
}

// isPlaceholder matches the empty-section markers models produce:
// "- None", "* None", or a bare "None", case-insensitive.
func isPlaceholder(line string) bool {
	l := strings.TrimSpace(line)
	l = strings.TrimPrefix(l, "- ")
	l = strings.TrimPrefix(l, "* ")
	return strings.EqualFold(strings.TrimSpace(l), "none")
}

// nextNonBlank returns the index of the next non-blank line at or after
// start.
func nextNonBlank(lines []string, start int) (int, bool) {
	for i := start; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i, true
		}
	}
	return 0, false
}

// trimTrailingBlank removes blank lines from the end of the message.
// Interior blank lines separate subject and body and must survive.
func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[:end]
}
