package models

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// RoleAdmin bypasses the allowlist entirely.
const RoleAdmin = "admin"

// Restrictions is the admin-managed model allowlist. When disabled, or
// when the allowed list is empty, every catalog model is permitted.
type Restrictions struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	AllowedModels []string `json:"allowed_models" yaml:"allowed_models"`
}

// restrictionsSchema constrains the restrictions file shape. Unknown keys
// are rejected so a typoed field cannot silently disable the allowlist.
const restrictionsSchema = `{
	"type": "object",
	"properties": {
		"enabled": {"type": "boolean"},
		"allowed_models": {
			"type": "array",
			"items": {"type": "string"}
		}
	},
	"required": ["enabled"],
	"additionalProperties": false
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal([]byte(restrictionsSchema), &parsed); err != nil {
			schemaErr = fmt.Errorf("parse restrictions schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://restrictions.json", parsed); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile("schema://restrictions.json")
	})
	return compiledSchema, schemaErr
}

// LoadRestrictions reads the allowlist from a YAML file. A missing file is
// not an error: the allowlist starts out disabled. A malformed or
// schema-invalid file is an error; callers decide whether to fail open.
func LoadRestrictions(path string) (Restrictions, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Restrictions{}, nil
	}
	if err != nil {
		return Restrictions{}, fmt.Errorf("read restrictions: %w", err)
	}
	return ParseRestrictions(data)
}

// ParseRestrictions decodes and schema-validates restrictions YAML.
func ParseRestrictions(data []byte) (Restrictions, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Restrictions{}, fmt.Errorf("parse restrictions: %w", err)
	}

	// Normalize through JSON so the schema validator sees canonical types.
	buf, err := json.Marshal(raw)
	if err != nil {
		return Restrictions{}, fmt.Errorf("normalize restrictions: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(buf, &normalized); err != nil {
		return Restrictions{}, fmt.Errorf("normalize restrictions: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return Restrictions{}, err
	}
	if err := schema.Validate(normalized); err != nil {
		return Restrictions{}, fmt.Errorf("invalid restrictions file: %w", err)
	}

	var r Restrictions
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Restrictions{}, fmt.Errorf("parse restrictions: %w", err)
	}
	return r, nil
}

// SaveRestrictions writes the allowlist as YAML, dropping any ids not in
// the catalog.
func SaveRestrictions(path string, r Restrictions) error {
	var valid []string
	for _, id := range r.AllowedModels {
		if InCatalog(id) {
			valid = append(valid, id)
		}
	}
	r.AllowedModels = valid

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode restrictions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write restrictions: %w", err)
	}
	return nil
}

// IsAllowed reports whether role may use the model. Admins bypass the
// allowlist; a disabled or empty allowlist permits everything.
func (r Restrictions) IsAllowed(modelID, role string) bool {
	if role == RoleAdmin {
		return true
	}
	if !r.Enabled || len(r.AllowedModels) == 0 {
		return true
	}
	for _, id := range r.AllowedModels {
		if id == modelID {
			return true
		}
	}
	return false
}

// Available filters the catalog by credential presence and, for non-admin
// roles, by the allowlist. hasKey reports whether the given environment
// variable carries a credential; a nil hasKey skips the credential filter.
// When the allowlist excludes every credentialed model the filter falls
// back to the unrestricted set so users are never locked out entirely.
func (r Restrictions) Available(role string, hasKey func(envVar string) bool) []Model {
	var withKeys []Model
	for _, m := range All() {
		if hasKey != nil && m.RequiresKey != "" && !hasKey(m.RequiresKey) {
			continue
		}
		withKeys = append(withKeys, m)
	}

	if role == RoleAdmin || !r.Enabled || len(r.AllowedModels) == 0 {
		return withKeys
	}

	var allowed []Model
	for _, m := range withKeys {
		if r.IsAllowed(m.ID, role) {
			allowed = append(allowed, m)
		}
	}
	if len(allowed) == 0 {
		return withKeys
	}
	return allowed
}
