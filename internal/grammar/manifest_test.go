package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validManifest = `
language:
  id: zealot
  name: Zealot
  extensions: [".zl", ".zealot"]
  line_comment: "//"
  block_comment: ["/*", "*/"]
keywords: [let, fn, if, else, return]
operators: ["+", "-", "*", "==", "->"]
strings:
  delimiters: ['"']
  escape: "\\"
snippets:
  - name: Function
    prefix: fn
    body:
      - "fn ${1:name}($2) {"
      - "\t$0"
      - "}"
`

func TestParse_Valid(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if m.Language.ID != "zealot" {
		t.Errorf("ID = %q, want zealot", m.Language.ID)
	}
	if m.Language.Name != "Zealot" {
		t.Errorf("Name = %q, want Zealot", m.Language.Name)
	}
	if len(m.Language.Extensions) != 2 {
		t.Errorf("Extensions = %v, want 2 entries", m.Language.Extensions)
	}
	if !m.Language.HasBlockComment() {
		t.Error("HasBlockComment() = false, want true")
	}
	if len(m.Keywords) != 5 {
		t.Errorf("Keywords = %v, want 5 entries", m.Keywords)
	}
	if len(m.Snippets) != 1 || m.Snippets[0].Prefix != "fn" {
		t.Errorf("Snippets = %+v, want one snippet with prefix fn", m.Snippets)
	}
}

func TestParse_InvalidManifests(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing id",
			yaml:    "language:\n  name: X\n  extensions: ['.x']",
			wantErr: "language.id is required",
		},
		{
			name:    "uppercase id",
			yaml:    "language:\n  id: MyLang\n  name: X\n  extensions: ['.x']",
			wantErr: "must match",
		},
		{
			name:    "missing name",
			yaml:    "language:\n  id: x\n  extensions: ['.x']",
			wantErr: "language.name is required",
		},
		{
			name:    "no extensions",
			yaml:    "language:\n  id: x\n  name: X",
			wantErr: "at least one extension",
		},
		{
			name:    "extension without dot",
			yaml:    "language:\n  id: x\n  name: X\n  extensions: ['x']",
			wantErr: "must start with a dot",
		},
		{
			name:    "half block comment",
			yaml:    "language:\n  id: x\n  name: X\n  extensions: ['.x']\n  block_comment: ['/*']",
			wantErr: "block_comment",
		},
		{
			name:    "duplicate keyword",
			yaml:    "language:\n  id: x\n  name: X\n  extensions: ['.x']\nkeywords: [if, if]",
			wantErr: "duplicate keyword",
		},
		{
			name:    "snippet without prefix",
			yaml:    "language:\n  id: x\n  name: X\n  extensions: ['.x']\nsnippets:\n  - name: A\n    body: ['a']",
			wantErr: "prefix is required",
		},
		{
			name:    "snippet without body",
			yaml:    "language:\n  id: x\n  name: X\n  extensions: ['.x']\nsnippets:\n  - name: A\n    prefix: a",
			wantErr: "body is required",
		},
		{
			name:    "malformed yaml",
			yaml:    "language: [",
			wantErr: "parse manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lang.yaml")
	if err := os.WriteFile(path, []byte(validManifest), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Language.ID != "zealot" {
		t.Errorf("ID = %q, want zealot", m.Language.ID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load should fail on a missing file")
	}
}
