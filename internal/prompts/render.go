package prompts

import (
	"strconv"
	"strings"
)

// Placeholder names recognized in generator templates. Substitution is
// verbatim string replacement; template syntax is owned by the external
// store and must not be reinterpreted here.
const (
	placeholderText   = "{{TEXT_TO_ANALYZE}}"
	placeholderCount  = "{{NUM_QUESTIONS}}"
	placeholderFocus  = "{{FOCUS_AREAS}}"
	focusNotSpecified = "Not specified"
)

// Vars holds the caller-supplied values substituted into a template.
type Vars struct {
	InputText    string
	NumQuestions int
	FocusAreas   string
}

// Render substitutes all placeholders in template with the given values.
// An empty focus hint renders as the literal "Not specified".
func Render(template string, v Vars) string {
	focus := v.FocusAreas
	if focus == "" {
		focus = focusNotSpecified
	}

	out := strings.ReplaceAll(template, placeholderText, v.InputText)
	out = strings.ReplaceAll(out, placeholderCount, strconv.Itoa(v.NumQuestions))
	out = strings.ReplaceAll(out, placeholderFocus, focus)
	return out
}
