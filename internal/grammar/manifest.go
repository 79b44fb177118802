// Package grammar loads and validates the YAML manifests that describe a
// language: identity, file extensions, keywords, operators, comment
// markers, string rules, and snippets. The manifest is the single input
// to a generation run.
package grammar

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// languageIDPattern constrains language IDs to what VS Code accepts as a
// language identifier.
var languageIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Manifest is the parsed grammar manifest.
type Manifest struct {
	// Language describes the language's identity.
	Language Language `yaml:"language"`
	// Keywords are the reserved words highlighted as keywords.
	Keywords []string `yaml:"keywords"`
	// Operators are the operator tokens of the language.
	Operators []string `yaml:"operators"`
	// Strings configures string literal recognition.
	Strings StringRules `yaml:"strings"`
	// Snippets are editor snippets shipped with the extension.
	Snippets []Snippet `yaml:"snippets"`
}

// Language holds the identity block of a manifest.
type Language struct {
	// ID is the language identifier (lowercase, e.g. "mylang").
	ID string `yaml:"id"`
	// Name is the human-readable display name.
	Name string `yaml:"name"`
	// Extensions lists file extensions, each starting with a dot.
	Extensions []string `yaml:"extensions"`
	// LineComment is the line comment marker, if the language has one.
	LineComment string `yaml:"line_comment"`
	// BlockComment is the [open, close] pair, if the language has one.
	BlockComment []string `yaml:"block_comment"`
}

// StringRules configures string literal recognition.
type StringRules struct {
	// Delimiters lists string delimiters (e.g. `"` and `'`).
	Delimiters []string `yaml:"delimiters"`
	// Escape is the escape character inside strings.
	Escape string `yaml:"escape"`
}

// Snippet is one editor snippet.
type Snippet struct {
	// Name is the snippet's display name.
	Name string `yaml:"name"`
	// Prefix triggers the snippet in the editor.
	Prefix string `yaml:"prefix"`
	// Body is the snippet body, one entry per line.
	Body []string `yaml:"body"`
	// Description is an optional longer description.
	Description string `yaml:"description"`
}

// Parse parses and validates a manifest from YAML bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks the manifest for structural problems.
func (m *Manifest) Validate() error {
	if m.Language.ID == "" {
		return fmt.Errorf("language.id is required")
	}
	if !languageIDPattern.MatchString(m.Language.ID) {
		return fmt.Errorf("language.id %q must match %s", m.Language.ID, languageIDPattern)
	}
	if m.Language.Name == "" {
		return fmt.Errorf("language.name is required")
	}
	if len(m.Language.Extensions) == 0 {
		return fmt.Errorf("language.extensions must list at least one extension")
	}
	for _, ext := range m.Language.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if n := len(m.Language.BlockComment); n != 0 && n != 2 {
		return fmt.Errorf("language.block_comment must be an [open, close] pair, got %d entries", n)
	}

	seen := make(map[string]bool, len(m.Keywords))
	for _, kw := range m.Keywords {
		if kw == "" {
			return fmt.Errorf("keywords must not contain empty entries")
		}
		if seen[kw] {
			return fmt.Errorf("duplicate keyword %q", kw)
		}
		seen[kw] = true
	}

	for i, s := range m.Snippets {
		if s.Prefix == "" {
			return fmt.Errorf("snippets[%d]: prefix is required", i)
		}
		if s.Name == "" {
			return fmt.Errorf("snippets[%d]: name is required", i)
		}
		if len(s.Body) == 0 {
			return fmt.Errorf("snippets[%d] (%s): body is required", i, s.Name)
		}
	}

	return nil
}

// HasBlockComment reports whether the language declares a block comment
// pair.
func (l Language) HasBlockComment() bool {
	return len(l.BlockComment) == 2
}
