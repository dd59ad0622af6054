package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Line-anchored patterns for the MCQ grammar. Section boundaries are
// context-sensitive, so these are only ever applied to single lines at the
// cursor position, never to the whole document.
var (
	mcqTitleRe      = regexp.MustCompile(`(?i)^Question\s+\d+(?:\s*[-–—]{1,2}\s*.+)?$`)
	mcqOptionRe     = regexp.MustCompile(`^[A-E][).]\s+.+$`)
	mcqAnswerRe     = regexp.MustCompile(`(?i)^(?:Correct Answer|Answer):\s*[A-E]$`)
	mcqExplHeaderRe = regexp.MustCompile(`(?i)^(?:Explanation of the Correct Answer|Explanation):?\s*$`)
	// Accepted spellings of the distractor-analysis header, optionally
	// parenthesized, e.g. "Analysis of Other Options (Distractors):".
	mcqAnalysisRe    = regexp.MustCompile(`(?i)^(?:Analysis of (?:the )?Other Options(?:\s*\([^)]*\))?|Distractors):?\s*$`)
	mcqKeyInsightsRe = regexp.MustCompile(`(?i)^Key Insights:?\s*`)
)

// validateMCQ checks repeating Question blocks: title, vignette, 4-5
// consecutively lettered options, an answer among those letters, an
// explanation, a distractor analysis, and a Key Insights section. Errors
// are reported per question ordinal and the scan continues with the next
// block, so one document can surface defects in several questions.
func validateMCQ(content string) (bool, []Error) {
	var errs []Error
	lines := splitLines(content)

	i := 0
	questionCount := 0

	for i < len(lines) {
		// Skip blank lines between questions.
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		if !mcqTitleRe.MatchString(strings.TrimSpace(lines[i])) {
			if questionCount == 0 {
				// Cannot even locate Question 1; the document is rejected outright.
				errs = append(errs, Error{
					Line:    lineNo(i + 1),
					Message: "Invalid format: Content must start with a question title",
					Section: "Format",
				})
				return false, errs
			}
			// Trailing non-question material after the last block.
			break
		}

		questionStart := i
		questionCount++
		i++

		// Vignette: everything before the first option line.
		vignetteFound := false
		for i < len(lines) {
			line := strings.TrimSpace(lines[i])
			if mcqOptionRe.MatchString(line) {
				break
			}
			if line != "" {
				vignetteFound = true
			}
			i++
		}
		if !vignetteFound {
			errs = append(errs, Error{
				Line:    lineNo(questionStart + 2),
				Message: fmt.Sprintf("Question %d: Missing vignette/stem", questionCount),
				Section: "Vignette",
			})
		}

		// Options: 4-5 required, strictly consecutive from A.
		var optionsFound []string
		optionStart := i
		for i < len(lines) && mcqOptionRe.MatchString(strings.TrimSpace(lines[i])) {
			optionsFound = append(optionsFound, strings.TrimSpace(lines[i])[:1])
			i++
		}
		if len(optionsFound) < 4 || len(optionsFound) > 5 {
			errs = append(errs, Error{
				Line:    lineNo(optionStart + 1),
				Message: fmt.Sprintf("Question %d: Found %d options, expected 4-5", questionCount, len(optionsFound)),
				Section: "Options",
			})
		}
		expected := []string{"A", "B", "C", "D", "E"}[:min(len(optionsFound), 5)]
		if !equalStrings(optionsFound, expected) {
			errs = append(errs, Error{
				Line:    lineNo(optionStart + 1),
				Message: fmt.Sprintf("Question %d: Options not in sequence. Found %v", questionCount, optionsFound),
				Section: "Options",
			})
		}

		i = skipBlank(lines, i)

		// Correct answer line. The letter must be one of the options seen;
		// when no options were recognized at all the cross-check is skipped
		// (the Options error above already covers the defect).
		if i < len(lines) && mcqAnswerRe.MatchString(strings.TrimSpace(lines[i])) {
			line := strings.TrimSpace(lines[i])
			answerLetter := line[len(line)-1:]
			if len(optionsFound) > 0 && !containsString(optionsFound, answerLetter) {
				errs = append(errs, Error{
					Line:    lineNo(i + 1),
					Message: fmt.Sprintf("Question %d: Correct answer '%s' not in options", questionCount, answerLetter),
					Section: "Answer",
				})
			}
			i++
		} else {
			errs = append(errs, Error{
				Line:    lineAt(lines, i),
				Message: fmt.Sprintf("Question %d: Missing or invalid 'Correct Answer:' line", questionCount),
				Section: "Answer",
			})
		}

		i = skipBlank(lines, i)

		// Explanation: header line, then one or more non-empty paragraph
		// lines (multi-paragraph allowed) up to the analysis or key
		// insights header.
		explanationFound := false
		if i < len(lines) && mcqExplHeaderRe.MatchString(strings.TrimSpace(lines[i])) {
			i++
			i = skipBlank(lines, i)
			if i < len(lines) && strings.TrimSpace(lines[i]) != "" {
				explanationFound = true
				for i < len(lines) {
					line := strings.TrimSpace(lines[i])
					if line != "" && (mcqAnalysisRe.MatchString(line) || mcqKeyInsightsRe.MatchString(line)) {
						break
					}
					i++
				}
			}
		}
		if !explanationFound {
			errs = append(errs, Error{
				Line:    lineAt(lines, i),
				Message: fmt.Sprintf("Question %d: Missing explanation section", questionCount),
				Section: "Explanation",
			})
		}

		i = skipBlank(lines, i)

		// Analysis of other options.
		analysisFound := false
		if i < len(lines) && mcqAnalysisRe.MatchString(strings.TrimSpace(lines[i])) {
			i++
			analysisFound = true
			for i < len(lines) {
				line := strings.TrimSpace(lines[i])
				if line != "" && (mcqKeyInsightsRe.MatchString(line) || mcqTitleRe.MatchString(line)) {
					break
				}
				i++
			}
		}
		if !analysisFound {
			errs = append(errs, Error{
				Line:    lineAt(lines, i),
				Message: fmt.Sprintf("Question %d: Missing 'Analysis of Other Options' section", questionCount),
				Section: "Analysis",
			})
		}

		i = skipBlank(lines, i)

		// Key insights closes the block. The header may carry inline text.
		keyInsightsFound := false
		if i < len(lines) && mcqKeyInsightsRe.MatchString(strings.TrimSpace(lines[i])) {
			keyInsightsFound = true
			i++
			for i < len(lines) {
				line := strings.TrimSpace(lines[i])
				if line != "" && mcqTitleRe.MatchString(line) {
					break
				}
				i++
			}
		}
		if !keyInsightsFound {
			errs = append(errs, Error{
				Line:    lineAt(lines, i),
				Message: fmt.Sprintf("Question %d: Missing 'Key Insights' section", questionCount),
				Section: "Key Insights",
			})
		}
	}

	return len(errs) == 0, errs
}

// skipBlank advances the cursor past blank lines.
func skipBlank(lines []string, i int) int {
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	return i
}

// lineAt returns a 1-based line pointer for position i, or nil past EOF.
func lineAt(lines []string, i int) *int {
	if i < len(lines) {
		return lineNo(i + 1)
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
