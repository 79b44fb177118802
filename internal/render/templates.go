package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/tbeckett/grammarsmith/internal/grammar"
	"github.com/tbeckett/grammarsmith/pkg/models"
)

// serverStubTemplate is the skeleton language server shipped with the
// extension. It answers initialize and shuts down cleanly; everything
// else is left for the language author.
var serverStubTemplate = template.Must(template.New("server").Parse(`#!/usr/bin/env node
// Minimal language server stub for {{.Language.Name}}.
// Extend this with real language intelligence (hover, completion,
// diagnostics) as the language grows.

const {
  createConnection,
  TextDocuments,
  ProposedFeatures,
  TextDocumentSyncKind,
} = require('vscode-languageserver/node');
const { TextDocument } = require('vscode-languageserver-textdocument');

const connection = createConnection(ProposedFeatures.all);
const documents = new TextDocuments(TextDocument);

connection.onInitialize(() => ({
  capabilities: {
    textDocumentSync: TextDocumentSyncKind.Incremental,
  },
}));

connection.onInitialized(() => {
  connection.console.log('{{.Language.ID}} language server started');
});

documents.listen(connection);
connection.listen();
`))

var readmeTemplate = template.Must(template.New("readme").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`# {{.Language.Name}}

Editor support for the {{.Language.Name}} language.

## Features

- Syntax highlighting for {{join .Language.Extensions ", "}} files
{{- if .Snippets}}
- {{len .Snippets}} editor snippet{{if gt (len .Snippets) 1}}s{{end}}
{{- end}}
{{- if .Language.LineComment}}
- Comment toggling ({{.Language.LineComment}})
{{- end}}
- Language server stub ready to extend

## Development

Open this folder in VS Code and press F5 to launch an Extension
Development Host with the extension loaded.

## Structure

| File | Purpose |
|------|---------|
| package.json | Extension manifest |
| syntaxes/{{.Language.ID}}.tmLanguage.json | TextMate grammar |
| language-configuration.json | Brackets, comments, auto-closing pairs |
{{- if .Snippets}}
| snippets/{{.Language.ID}}.json | Editor snippets |
{{- end}}
| server/server.js | Language server stub |
`))

// renderServerStub emits server/server.js.
func (r *Renderer) renderServerStub(m *grammar.Manifest) (*models.Artifact, error) {
	content, err := execTemplate(serverStubTemplate, m)
	if err != nil {
		return nil, fmt.Errorf("render server stub: %w", err)
	}
	return &models.Artifact{
		Kind:    models.ArtifactServerStub,
		Path:    "server/server.js",
		Content: content,
	}, nil
}

// renderReadme emits the extension's README.md.
func (r *Renderer) renderReadme(m *grammar.Manifest) (*models.Artifact, error) {
	content, err := execTemplate(readmeTemplate, m)
	if err != nil {
		return nil, fmt.Errorf("render readme: %w", err)
	}
	return &models.Artifact{
		Kind:    models.ArtifactReadme,
		Path:    "README.md",
		Content: content,
	}, nil
}

func execTemplate(t *template.Template, m *grammar.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
