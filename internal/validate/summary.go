package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var summaryNumberedRe = regexp.MustCompile(`^\s*\d+\.`)

// validateSummary is deliberately looser than the MCQ/NMCQ grammars: the
// generator output for summary bytes is prose-like and a strict block
// grammar proved too brittle. A document is accepted when it contains the
// phrases "high yield" and "key insight" anywhere; numbered top-level
// blocks, when present, are additionally checked for both phrases and a
// non-trivial Key Insights payload. A document with the right phrases but
// no numbered blocks passes — that asymmetry is intentional leniency for
// model drift, not an oversight.
func validateSummary(content string) (bool, []Error) {
	var errs []Error
	lines := splitLines(content)

	contentLower := strings.ToLower(content)
	hasNumbered := false
	summaryCount := 0
	for _, line := range lines {
		if summaryNumberedRe.MatchString(line) {
			hasNumbered = true
		}
	}

	hasHighYield := strings.Contains(contentLower, "high yield")
	hasKeyInsights := strings.Contains(contentLower, "key insight")

	if hasHighYield && hasKeyInsights {
		for _, line := range lines {
			if summaryNumberedRe.MatchString(line) {
				summaryCount++
			}
		}
		if summaryCount == 0 {
			summaryCount = 1
		}

		// Per-block check: each numbered item spans up to the next
		// numbered item and must carry both sections.
		currentBlock := 0
		for i := 0; i < len(lines); i++ {
			if !summaryNumberedRe.MatchString(strings.TrimSpace(lines[i])) {
				continue
			}
			currentBlock++
			headerLine := i

			blockEnd := len(lines)
			for j := i + 1; j < len(lines); j++ {
				if summaryNumberedRe.MatchString(lines[j]) {
					blockEnd = j
					break
				}
			}

			blockText := strings.Join(lines[i:blockEnd], "\n")
			blockLower := strings.ToLower(blockText)

			if !strings.Contains(blockLower, "high yield") {
				errs = append(errs, Error{
					Line:    lineNo(headerLine),
					Message: fmt.Sprintf("Summary Block %d: Missing High Yield Points section", currentBlock),
					Section: "High Yield Points",
				})
			}
			if !strings.Contains(blockLower, "key insight") {
				errs = append(errs, Error{
					Line:    lineNo(headerLine),
					Message: fmt.Sprintf("Summary Block %d: Missing Key Insights section", currentBlock),
					Section: "Key Insights",
				})
			}

			// The Key Insights payload must be more than a bare header.
			if idx := strings.Index(blockLower, "key insight"); idx != -1 {
				remaining := strings.TrimSpace(blockText[idx+len("key insight"):])
				remaining = strings.TrimSpace(strings.TrimPrefix(remaining, ":"))
				if len(remaining) < 20 {
					errs = append(errs, Error{
						Line:    lineNo(headerLine),
						Message: fmt.Sprintf("Summary Block %d: Key Insights appears empty or too short", currentBlock),
						Section: "Key Insights",
					})
				}
			}
		}
	} else {
		// Required phrases globally absent: report Structure-level errors
		// instead of per-block ones.
		if !hasHighYield {
			errs = append(errs, Error{
				Line:    lineNo(0),
				Message: "No 'High Yield Points' sections found in content",
				Section: "Structure",
			})
		}
		if !hasKeyInsights {
			errs = append(errs, Error{
				Line:    lineNo(0),
				Message: "No 'Key Insights' sections found in content",
				Section: "Structure",
			})
		}
		if !hasNumbered && !hasHighYield {
			errs = append(errs, Error{
				Line:    lineNo(0),
				Message: "No Summary Blocks found in content (looking for numbered sections or High Yield Points)",
				Section: "Structure",
			})
		}
	}

	if summaryCount == 0 && len(errs) == 0 && !(hasHighYield && hasKeyInsights) {
		errs = append(errs, Error{
			Line:    lineNo(0),
			Message: "No properly formatted Summary Blocks found in content",
			Section: "Structure",
		})
	}

	return len(errs) == 0, errs
}
