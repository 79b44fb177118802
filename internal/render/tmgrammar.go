package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tbeckett/grammarsmith/internal/grammar"
	"github.com/tbeckett/grammarsmith/pkg/models"
)

// tmGrammar models the subset of the TextMate grammar format the
// generator emits.
type tmGrammar struct {
	Schema     string               `json:"$schema"`
	Name       string               `json:"name"`
	ScopeName  string               `json:"scopeName"`
	Patterns   []tmInclude          `json:"patterns"`
	Repository map[string]tmPattern `json:"repository"`
}

type tmInclude struct {
	Include string `json:"include"`
}

type tmPattern struct {
	Name     string       `json:"name,omitempty"`
	Match    string       `json:"match,omitempty"`
	Begin    string       `json:"begin,omitempty"`
	End      string       `json:"end,omitempty"`
	Patterns []tmPattern  `json:"patterns,omitempty"`
	Captures tmCaptureMap `json:"captures,omitempty"`
}

type tmCaptureMap map[string]tmCapture

type tmCapture struct {
	Name string `json:"name"`
}

const tmSchemaURL = "https://raw.githubusercontent.com/martinring/tmlanguage/master/tmlanguage.json"

// renderTMGrammar emits syntaxes/<id>.tmLanguage.json.
func (r *Renderer) renderTMGrammar(m *grammar.Manifest) (*models.Artifact, error) {
	lang := m.Language
	scope := "source." + lang.ID

	repo := make(map[string]tmPattern)
	var includes []tmInclude

	if comments := commentPatterns(lang); len(comments) > 0 {
		repo["comments"] = tmPattern{Patterns: comments}
		includes = append(includes, tmInclude{Include: "#comments"})
	}

	if len(m.Keywords) > 0 {
		repo["keywords"] = tmPattern{
			Name:  "keyword.control." + lang.ID,
			Match: `\b(` + strings.Join(quoteAll(m.Keywords), "|") + `)\b`,
		}
		includes = append(includes, tmInclude{Include: "#keywords"})
	}

	if strs := stringPatterns(m.Strings, lang.ID); len(strs) > 0 {
		repo["strings"] = tmPattern{Patterns: strs}
		includes = append(includes, tmInclude{Include: "#strings"})
	}

	repo["numbers"] = tmPattern{
		Name:  "constant.numeric." + lang.ID,
		Match: `\b\d+(\.\d+)?\b`,
	}
	includes = append(includes, tmInclude{Include: "#numbers"})

	if len(m.Operators) > 0 {
		repo["operators"] = tmPattern{
			Name:  "keyword.operator." + lang.ID,
			Match: strings.Join(quoteAll(m.Operators), "|"),
		}
		includes = append(includes, tmInclude{Include: "#operators"})
	}

	g := tmGrammar{
		Schema:     tmSchemaURL,
		Name:       lang.Name,
		ScopeName:  scope,
		Patterns:   includes,
		Repository: repo,
	}

	content, err := marshalJSON(g)
	if err != nil {
		return nil, fmt.Errorf("render tm grammar: %w", err)
	}

	return &models.Artifact{
		Kind:    models.ArtifactTMGrammar,
		Path:    fmt.Sprintf("syntaxes/%s.tmLanguage.json", lang.ID),
		Content: content,
	}, nil
}

// commentPatterns builds the comment repository entry from the manifest's
// comment markers.
func commentPatterns(lang grammar.Language) []tmPattern {
	var patterns []tmPattern
	if lang.LineComment != "" {
		patterns = append(patterns, tmPattern{
			Name:  "comment.line." + lang.ID,
			Match: regexp.QuoteMeta(lang.LineComment) + `.*$`,
		})
	}
	if lang.HasBlockComment() {
		patterns = append(patterns, tmPattern{
			Name:  "comment.block." + lang.ID,
			Begin: regexp.QuoteMeta(lang.BlockComment[0]),
			End:   regexp.QuoteMeta(lang.BlockComment[1]),
		})
	}
	return patterns
}

// stringPatterns builds string literal patterns for each delimiter.
func stringPatterns(rules grammar.StringRules, langID string) []tmPattern {
	var patterns []tmPattern
	for _, delim := range rules.Delimiters {
		p := tmPattern{
			Name:  "string.quoted." + langID,
			Begin: regexp.QuoteMeta(delim),
			End:   regexp.QuoteMeta(delim),
		}
		if rules.Escape != "" {
			p.Patterns = []tmPattern{{
				Name:  "constant.character.escape." + langID,
				Match: regexp.QuoteMeta(rules.Escape) + ".",
			}}
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// quoteAll regex-escapes every entry.
func quoteAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}

// marshalJSON renders indented JSON with a trailing newline, without
// escaping HTML characters (TextMate patterns contain < and >).
func marshalJSON(v interface{}) ([]byte, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
