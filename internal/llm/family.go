package llm

import "strings"

// Family identifies the backend provider serving a model id. It is
// resolved exactly once per request, before any provider is constructed,
// so the stringly-typed model id never leaks into call-site branching.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyAnthropic
	FamilyGemini
	FamilyOpenAI
	FamilyOpenRouter
	FamilyMock
)

func (f Family) String() string {
	switch f {
	case FamilyAnthropic:
		return "anthropic"
	case FamilyGemini:
		return "gemini"
	case FamilyOpenAI:
		return "openai"
	case FamilyOpenRouter:
		return "openrouter"
	case FamilyMock:
		return "mock"
	}
	return "unknown"
}

// ResolveFamily maps a model identifier to its provider family.
// OpenRouter ids carry a vendor prefix ("google/gemma-2-9b"), which takes
// precedence over vendor substrings in the model name itself.
func ResolveFamily(modelID string) Family {
	id := strings.ToLower(strings.TrimSpace(modelID))
	switch {
	case id == "":
		return FamilyUnknown
	case id == "mock" || strings.HasPrefix(id, "mock-"):
		return FamilyMock
	case strings.Contains(id, "/"):
		return FamilyOpenRouter
	case strings.Contains(id, "claude"):
		return FamilyAnthropic
	case strings.Contains(id, "gemini"):
		return FamilyGemini
	case strings.Contains(id, "gpt") || strings.HasPrefix(id, "o1") || strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4"):
		return FamilyOpenAI
	}
	return FamilyUnknown
}
