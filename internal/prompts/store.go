// Package prompts resolves generator/formatter prompt templates for a
// content type and substitutes caller-supplied values into them. Template
// text is owned by an external store; this package only defines the lookup
// contract and a file-backed implementation of it.
package prompts

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/medbyte/medbyte/internal/validate"
)

// Template store keys, one generator/formatter pair per content type.
const (
	KeyMCQGenerator     = "mcq_generator"
	KeyMCQFormatter     = "mcq_formatter"
	KeyNMCQGenerator    = "nmcq_generator"
	KeyNMCQFormatter    = "nmcq_formatter"
	KeySummaryGenerator = "summary_generator"
	KeySummaryFormatter = "summary_formatter"
)

// Keys lists all template keys in a stable order.
var Keys = []string{
	KeyMCQGenerator, KeyMCQFormatter,
	KeyNMCQGenerator, KeyNMCQFormatter,
	KeySummaryGenerator, KeySummaryFormatter,
}

// ErrNotFound is returned by a Store when no template exists for a key.
var ErrNotFound = errors.New("prompt template not found")

// Store is the boundary contract to the external template storage.
// Implementations return the current template text for a key.
type Store interface {
	Template(ctx context.Context, key string) (string, error)
}

// Dir is a Store reading templates from files in a directory, one file per
// key. File names follow the original prompt layout.
type Dir struct {
	Path string
}

var dirFiles = map[string]string{
	KeyMCQGenerator:     "mcq.generator.txt",
	KeyMCQFormatter:     "mcq.formatter.txt",
	KeyNMCQGenerator:    "nonmcq.generator.txt",
	KeyNMCQFormatter:    "nonmcq.formatter.txt",
	KeySummaryGenerator: "summarybytes.generator.txt",
	KeySummaryFormatter: "summarybytes.formatter.txt",
}

func (d Dir) Template(_ context.Context, key string) (string, error) {
	name, ok := dirFiles[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown key %q", ErrNotFound, key)
	}
	b, err := os.ReadFile(filepath.Join(d.Path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("read template %s: %w", name, err)
	}
	return string(b), nil
}

// Pair is the resolved generator/formatter template pair for one run. The
// pipeline captures it once at LoadPrompts and never re-reads mid-run.
type Pair struct {
	Generator string
	Formatter string
}

// keysFor maps a content type to its template key pair.
func keysFor(ct validate.ContentType) (string, string) {
	switch ct {
	case validate.MCQ:
		return KeyMCQGenerator, KeyMCQFormatter
	case validate.Summary:
		return KeySummaryGenerator, KeySummaryFormatter
	default:
		return KeyNMCQGenerator, KeyNMCQFormatter
	}
}

// Resolve fetches the template pair for a content type. A missing template
// degrades to an empty string rather than failing the run; downstream
// validation will reject whatever the models produce from it.
func Resolve(ctx context.Context, s Store, ct validate.ContentType) Pair {
	genKey, fmtKey := keysFor(ct)

	var p Pair
	if text, err := s.Template(ctx, genKey); err == nil {
		p.Generator = text
	}
	if text, err := s.Template(ctx, fmtKey); err == nil {
		p.Formatter = text
	}
	return p
}

// Hashes returns a short content hash per template key, for prompt
// versioning. Missing templates hash as empty strings.
func Hashes(ctx context.Context, s Store) map[string]string {
	out := make(map[string]string, len(Keys))
	for _, key := range Keys {
		text, err := s.Template(ctx, key)
		if err != nil {
			text = ""
		}
		sum := md5.Sum([]byte(text))
		out[key] = fmt.Sprintf("%x", sum)[:8]
	}
	return out
}
