package render

import (
	"fmt"

	"github.com/tbeckett/grammarsmith/internal/grammar"
	"github.com/tbeckett/grammarsmith/pkg/models"
)

// languageConfiguration models VS Code's language-configuration.json.
type languageConfiguration struct {
	Comments         commentConfig `json:"comments"`
	Brackets         [][2]string   `json:"brackets"`
	AutoClosingPairs []closingPair `json:"autoClosingPairs"`
	SurroundingPairs [][2]string   `json:"surroundingPairs"`
}

type commentConfig struct {
	LineComment  string   `json:"lineComment,omitempty"`
	BlockComment []string `json:"blockComment,omitempty"`
}

type closingPair struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// renderLanguageConfig emits language-configuration.json.
func (r *Renderer) renderLanguageConfig(m *grammar.Manifest) (*models.Artifact, error) {
	cfg := languageConfiguration{
		Comments: commentConfig{
			LineComment: m.Language.LineComment,
		},
		Brackets: [][2]string{
			{"{", "}"},
			{"[", "]"},
			{"(", ")"},
		},
		AutoClosingPairs: []closingPair{
			{Open: "{", Close: "}"},
			{Open: "[", Close: "]"},
			{Open: "(", Close: ")"},
		},
		SurroundingPairs: [][2]string{
			{"{", "}"},
			{"[", "]"},
			{"(", ")"},
		},
	}
	if m.Language.HasBlockComment() {
		cfg.Comments.BlockComment = m.Language.BlockComment
	}
	for _, delim := range m.Strings.Delimiters {
		cfg.AutoClosingPairs = append(cfg.AutoClosingPairs, closingPair{Open: delim, Close: delim})
		cfg.SurroundingPairs = append(cfg.SurroundingPairs, [2]string{delim, delim})
	}

	content, err := marshalJSON(cfg)
	if err != nil {
		return nil, fmt.Errorf("render language config: %w", err)
	}

	return &models.Artifact{
		Kind:    models.ArtifactLanguageConfig,
		Path:    "language-configuration.json",
		Content: content,
	}, nil
}

// extensionManifest models the VS Code extension package.json the
// generator emits.
type extensionManifest struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"displayName"`
	Description string               `json:"description"`
	Version     string               `json:"version"`
	Engines     map[string]string    `json:"engines"`
	Categories  []string             `json:"categories"`
	Contributes extensionContributes `json:"contributes"`
}

type extensionContributes struct {
	Languages []languageContribution `json:"languages"`
	Grammars  []grammarContribution  `json:"grammars"`
	Snippets  []snippetContribution  `json:"snippets,omitempty"`
}

type languageContribution struct {
	ID            string   `json:"id"`
	Aliases       []string `json:"aliases"`
	Extensions    []string `json:"extensions"`
	Configuration string   `json:"configuration"`
}

type grammarContribution struct {
	Language  string `json:"language"`
	ScopeName string `json:"scopeName"`
	Path      string `json:"path"`
}

type snippetContribution struct {
	Language string `json:"language"`
	Path     string `json:"path"`
}

// renderExtensionManifest emits the extension's package.json.
func (r *Renderer) renderExtensionManifest(m *grammar.Manifest) (*models.Artifact, error) {
	lang := m.Language

	manifest := extensionManifest{
		Name:        lang.ID + "-language",
		DisplayName: lang.Name,
		Description: fmt.Sprintf("%s language support", lang.Name),
		Version:     "0.1.0",
		Engines:     map[string]string{"vscode": "^1.75.0"},
		Categories:  []string{"Programming Languages"},
		Contributes: extensionContributes{
			Languages: []languageContribution{{
				ID:            lang.ID,
				Aliases:       []string{lang.Name, lang.ID},
				Extensions:    lang.Extensions,
				Configuration: "./language-configuration.json",
			}},
			Grammars: []grammarContribution{{
				Language:  lang.ID,
				ScopeName: "source." + lang.ID,
				Path:      fmt.Sprintf("./syntaxes/%s.tmLanguage.json", lang.ID),
			}},
		},
	}
	if len(m.Snippets) > 0 {
		manifest.Contributes.Snippets = []snippetContribution{{
			Language: lang.ID,
			Path:     fmt.Sprintf("./snippets/%s.json", lang.ID),
		}}
	}

	content, err := marshalJSON(manifest)
	if err != nil {
		return nil, fmt.Errorf("render extension manifest: %w", err)
	}

	return &models.Artifact{
		Kind:    models.ArtifactExtensionManifest,
		Path:    "package.json",
		Content: content,
	}, nil
}

// snippetEntry is one snippet in the VS Code snippet file format.
type snippetEntry struct {
	Prefix      string   `json:"prefix"`
	Body        []string `json:"body"`
	Description string   `json:"description,omitempty"`
}

// renderSnippets emits snippets/<id>.json.
func (r *Renderer) renderSnippets(m *grammar.Manifest) (*models.Artifact, error) {
	entries := make(map[string]snippetEntry, len(m.Snippets))
	for _, s := range m.Snippets {
		entries[s.Name] = snippetEntry{
			Prefix:      s.Prefix,
			Body:        s.Body,
			Description: s.Description,
		}
	}

	content, err := marshalJSON(entries)
	if err != nil {
		return nil, fmt.Errorf("render snippets: %w", err)
	}

	return &models.Artifact{
		Kind:    models.ArtifactSnippets,
		Path:    fmt.Sprintf("snippets/%s.json", m.Language.ID),
		Content: content,
	}, nil
}
