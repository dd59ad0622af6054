// Package models holds the catalog of generator models exposed to users
// and the admin-managed allowlist restricting which of them non-admin
// users may pick.
package models

import "github.com/medbyte/medbyte/internal/llm"

// Model describes one catalog entry.
type Model struct {
	ID          string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Category    string `json:"category" yaml:"category"`
	RequiresKey string `json:"requires_key" yaml:"requires_key"`
}

// catalog is the fixed set of models offered for the generator stage, in
// display order. The formatter model is pipeline configuration and is not
// listed here.
var catalog = []Model{
	{
		ID:          "claude-sonnet-4-5-20250929",
		DisplayName: "Claude Sonnet 4.5",
		Category:    "Anthropic Claude",
		RequiresKey: llm.EnvAnthropicKey,
	},
	{
		ID:          "claude-opus-4-1-20250805",
		DisplayName: "Claude Opus 4.1",
		Category:    "Anthropic Claude",
		RequiresKey: llm.EnvAnthropicKey,
	},
	{
		ID:          "gemini-2.5-pro",
		DisplayName: "Gemini 2.5 Pro",
		Category:    "Google Gemini",
		RequiresKey: llm.EnvGoogleKey,
	},
	{
		ID:          "gemini-2.5-flash",
		DisplayName: "Gemini 2.5 Flash",
		Category:    "Google Gemini",
		RequiresKey: llm.EnvGoogleKey,
	},
}

// All returns the full catalog.
func All() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a catalog entry by model id.
func Lookup(id string) (Model, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// InCatalog reports whether id names a catalog model.
func InCatalog(id string) bool {
	_, ok := Lookup(id)
	return ok
}
