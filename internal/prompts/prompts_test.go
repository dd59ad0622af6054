package prompts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/medbyte/medbyte/internal/validate"
)

func TestRender(t *testing.T) {
	template := "Generate {{NUM_QUESTIONS}} questions from:\n{{TEXT_TO_ANALYZE}}\nFocus: {{FOCUS_AREAS}}"

	got := Render(template, Vars{
		InputText:    "renal physiology notes",
		NumQuestions: 5,
		FocusAreas:   "acid-base",
	})
	want := "Generate 5 questions from:\nrenal physiology notes\nFocus: acid-base"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderEmptyFocus(t *testing.T) {
	got := Render("Focus: {{FOCUS_AREAS}}", Vars{NumQuestions: 1})
	if got != "Focus: Not specified" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderRepeatedPlaceholders(t *testing.T) {
	got := Render("{{NUM_QUESTIONS}} and again {{NUM_QUESTIONS}}", Vars{NumQuestions: 3})
	if got != "3 and again 3" {
		t.Errorf("Render = %q", got)
	}
}

func writeTemplates(t *testing.T, files map[string]string) Dir {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return Dir{Path: dir}
}

func TestDirTemplate(t *testing.T) {
	d := writeTemplates(t, map[string]string{
		"mcq.generator.txt": "generator body",
	})

	text, err := d.Template(context.Background(), KeyMCQGenerator)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if text != "generator body" {
		t.Errorf("text = %q", text)
	}

	_, err = d.Template(context.Background(), KeyMCQFormatter)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}

	_, err = d.Template(context.Background(), "bogus_key")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown key error = %v, want ErrNotFound", err)
	}
}

func TestResolve(t *testing.T) {
	d := writeTemplates(t, map[string]string{
		"mcq.generator.txt":          "mcq gen",
		"mcq.formatter.txt":          "mcq fmt",
		"summarybytes.generator.txt": "sum gen",
	})

	p := Resolve(context.Background(), d, validate.MCQ)
	if p.Generator != "mcq gen" || p.Formatter != "mcq fmt" {
		t.Errorf("MCQ pair = %+v", p)
	}

	// Missing formatter degrades to an empty template.
	p = Resolve(context.Background(), d, validate.Summary)
	if p.Generator != "sum gen" || p.Formatter != "" {
		t.Errorf("Summary pair = %+v", p)
	}

	p = Resolve(context.Background(), d, validate.NMCQ)
	if p.Generator != "" || p.Formatter != "" {
		t.Errorf("NMCQ pair = %+v", p)
	}
}

func TestHashes(t *testing.T) {
	d := writeTemplates(t, map[string]string{
		"mcq.generator.txt": "some template text",
	})

	hashes := Hashes(context.Background(), d)
	if len(hashes) != len(Keys) {
		t.Fatalf("hashes = %v, want one per key", hashes)
	}
	for key, h := range hashes {
		if len(h) != 8 {
			t.Errorf("hash for %s = %q, want 8 hex chars", key, h)
		}
		if strings.ToLower(h) != h {
			t.Errorf("hash for %s not lowercase hex: %q", key, h)
		}
	}
	// Missing templates hash the empty string, identically.
	if hashes[KeyNMCQGenerator] != hashes[KeyNMCQFormatter] {
		t.Errorf("missing templates should share the empty hash: %v", hashes)
	}
	if hashes[KeyMCQGenerator] == hashes[KeyNMCQGenerator] {
		t.Error("present template hashed like a missing one")
	}
}
