package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	nmcqTitleRe    = regexp.MustCompile(`(?i)^Clinical Vignette\s+\d+:\s+.+$`)
	nmcqQAHeaderRe = regexp.MustCompile(`(?i)^Questions and Answers:\s*$`)
	// Numbered sub-question: "1. True/False: ...", "2. Yes/No: ...",
	// "3. Drop Down Question: ..." with the usual spelling variants.
	nmcqQuestionRe    = regexp.MustCompile(`(?i)^(\d+)\.\s*(True/False|Yes/No|Drop Down Question[s]?|Drop-?Down(?: Question[s]?)?)\s*:\s*(.+)$`)
	nmcqAnswerRe      = regexp.MustCompile(`(?i)^Answer:\s*(.+)$`)
	nmcqExplanationRe = regexp.MustCompile(`(?i)^Explanation:\s*(.+)$`)
	nmcqOptionSplitRe = regexp.MustCompile(`[,|]`)
)

// validateNMCQ checks repeating clinical-vignette blocks: a title line, a
// vignette body, an optional "Questions and Answers:" header, then numbered
// sub-questions typed True/False, Yes/No, or Drop Down. Numbering must
// match the running count within the vignette; a mismatch is reported and
// parsing continues.
func validateNMCQ(content string) (bool, []Error) {
	var errs []Error
	lines := splitLines(content)

	i := 0
	vignetteCount := 0

	for i < len(lines) {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		vignetteStart := i
		vignetteCount++

		if !nmcqTitleRe.MatchString(strings.TrimSpace(lines[i])) {
			errs = append(errs, Error{
				Line:    lineNo(i + 1),
				Message: fmt.Sprintf("Vignette %d: Invalid title format. Expected 'Clinical Vignette N: Title'", vignetteCount),
				Section: "Title",
			})
		}
		i++

		// Vignette body: at least one non-empty line before the questions.
		bodyFound := false
		for i < len(lines) {
			line := strings.TrimSpace(lines[i])
			if nmcqQAHeaderRe.MatchString(line) || nmcqQuestionRe.MatchString(line) {
				break
			}
			if line != "" {
				bodyFound = true
			}
			i++
		}
		if !bodyFound {
			errs = append(errs, Error{
				Line:    lineNo(vignetteStart + 2),
				Message: fmt.Sprintf("Vignette %d: Missing vignette body", vignetteCount),
				Section: "Body",
			})
		}

		if i < len(lines) && nmcqQAHeaderRe.MatchString(strings.TrimSpace(lines[i])) {
			i++
		}
		i = skipBlank(lines, i)

		questionCount := 0
		for i < len(lines) {
			if nmcqTitleRe.MatchString(strings.TrimSpace(lines[i])) {
				break
			}
			i = skipBlank(lines, i)
			if i >= len(lines) || nmcqTitleRe.MatchString(strings.TrimSpace(lines[i])) {
				break
			}

			m := nmcqQuestionRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
			if m == nil {
				// Not a sub-question and not a new vignette: skip the line.
				if !nmcqTitleRe.MatchString(strings.TrimSpace(lines[i])) {
					i++
					continue
				}
				break
			}

			questionCount++
			qNum, _ := strconv.Atoi(m[1])
			qType := strings.ToLower(m[2])

			if qNum != questionCount {
				errs = append(errs, Error{
					Line:    lineNo(i + 1),
					Message: fmt.Sprintf("Vignette %d, Question numbering error: expected %d, got %d", vignetteCount, questionCount, qNum),
					Section: "Question",
				})
			}
			i++

			// Drop Down sub-questions list their options either one per
			// line or as a single "Options: a, b, c" line.
			if strings.Contains(qType, "drop") {
				var optionsFound []string
				for i < len(lines) {
					line := strings.TrimSpace(lines[i])
					if nmcqAnswerRe.MatchString(line) || nmcqQuestionRe.MatchString(line) {
						break
					}
					if line != "" && !strings.HasPrefix(line, "Options:") {
						optionsFound = append(optionsFound, line)
					} else if strings.HasPrefix(line, "Options:") {
						for _, o := range nmcqOptionSplitRe.Split(strings.TrimSpace(line[len("Options:"):]), -1) {
							optionsFound = append(optionsFound, strings.TrimSpace(o))
						}
						i++
						break
					}
					i++
					if line == "" {
						break
					}
				}
				if len(optionsFound) < 2 {
					errs = append(errs, Error{
						Line:    lineNo(i),
						Message: fmt.Sprintf("Vignette %d, Question %d: Drop Down requires at least 2 options", vignetteCount, questionCount),
						Section: "Options",
					})
				}
			}

			// Answer line, constrained by the sub-question type. Drop Down
			// answers are unconstrained text.
			answerFound := false
			if i < len(lines) {
				if am := nmcqAnswerRe.FindStringSubmatch(strings.TrimSpace(lines[i])); am != nil {
					answerFound = true
					answerValue := strings.TrimSpace(am[1])
					if strings.Contains(qType, "true/false") {
						if answerValue != "True" && answerValue != "False" {
							errs = append(errs, Error{
								Line:    lineNo(i + 1),
								Message: fmt.Sprintf("Vignette %d, Question %d: True/False answer must be 'True' or 'False'", vignetteCount, questionCount),
								Section: "Answer",
							})
						}
					} else if strings.Contains(qType, "yes/no") {
						if answerValue != "Yes" && answerValue != "No" {
							errs = append(errs, Error{
								Line:    lineNo(i + 1),
								Message: fmt.Sprintf("Vignette %d, Question %d: Yes/No answer must be 'Yes' or 'No'", vignetteCount, questionCount),
								Section: "Answer",
							})
						}
					}
					i++
				}
			}
			if !answerFound {
				errs = append(errs, Error{
					Line:    lineNo(i),
					Message: fmt.Sprintf("Vignette %d, Question %d: Missing Answer", vignetteCount, questionCount),
					Section: "Answer",
				})
			}

			// Explanation line with non-empty payload; continuation lines
			// are consumed up to the next sub-question or vignette.
			explanationFound := false
			if i < len(lines) {
				if em := nmcqExplanationRe.FindStringSubmatch(strings.TrimSpace(lines[i])); em != nil {
					if strings.TrimSpace(em[1]) != "" {
						explanationFound = true
					}
					i++
					for i < len(lines) && strings.TrimSpace(lines[i]) != "" &&
						!nmcqQuestionRe.MatchString(strings.TrimSpace(lines[i])) &&
						!nmcqTitleRe.MatchString(strings.TrimSpace(lines[i])) {
						i++
					}
				}
			}
			if !explanationFound {
				errs = append(errs, Error{
					Line:    lineNo(i),
					Message: fmt.Sprintf("Vignette %d, Question %d: Missing or empty Explanation", vignetteCount, questionCount),
					Section: "Explanation",
				})
			}
		}

		if questionCount == 0 {
			errs = append(errs, Error{
				Line:    lineNo(vignetteStart + 3),
				Message: fmt.Sprintf("Vignette %d: No questions found", vignetteCount),
				Section: "Questions",
			})
		}
	}

	return len(errs) == 0, errs
}
