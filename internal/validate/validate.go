// Package validate implements the deterministic structural validators for
// formatted study content. Each content type has its own line grammar; the
// validators scan with a single forward cursor and report every deviation
// with a best-effort 1-based line number.
package validate

import (
	"fmt"
	"strings"
)

// ContentType selects which structural grammar applies.
type ContentType string

const (
	MCQ     ContentType = "MCQ"
	NMCQ    ContentType = "NMCQ"
	Summary ContentType = "SUMMARY"
)

// ParseContentType normalizes a caller-supplied content type string.
// The second return is false for unrecognized values.
func ParseContentType(s string) (ContentType, bool) {
	switch ContentType(strings.ToUpper(strings.TrimSpace(s))) {
	case MCQ:
		return MCQ, true
	case NMCQ:
		return NMCQ, true
	case Summary:
		return Summary, true
	}
	return ContentType(strings.ToUpper(strings.TrimSpace(s))), false
}

// Error describes a single structural defect.
type Error struct {
	// Line is 1-based where the grammar allows locating the defect,
	// nil when the defect has no usable position.
	Line    *int   `json:"line"`
	Message string `json:"message"`
	Section string `json:"section"`
}

func (e Error) String() string {
	if e.Line != nil {
		return fmt.Sprintf("line %d [%s]: %s", *e.Line, e.Section, e.Message)
	}
	return fmt.Sprintf("[%s]: %s", e.Section, e.Message)
}

func lineNo(n int) *int { return &n }

// Content validates formatted text against the grammar for the given
// content type. It never panics on malformed input: empty or
// whitespace-only text yields a single EmptyContent-style error, an
// unknown content type a single error naming it.
func Content(text string, ct ContentType) (bool, []Error) {
	if strings.TrimSpace(text) == "" {
		return false, []Error{{Message: "Empty content", Section: "Content"}}
	}

	switch ct {
	case MCQ:
		return validateMCQ(text)
	case NMCQ:
		return validateNMCQ(text)
	case Summary:
		return validateSummary(text)
	}
	return false, []Error{{Message: fmt.Sprintf("Invalid content type: %s", ct), Section: "Structure"}}
}

// splitLines prepares the line array every validator scans over.
func splitLines(text string) []string {
	return strings.Split(strings.TrimSpace(text), "\n")
}
