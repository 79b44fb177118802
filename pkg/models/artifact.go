package models

// ArtifactKind identifies the scaffolding file a task generates.
type ArtifactKind string

const (
	// ArtifactTMGrammar is the TextMate grammar (syntaxes/<id>.tmLanguage.json).
	ArtifactTMGrammar ArtifactKind = "tm-grammar"
	// ArtifactLanguageConfig is the editor language-configuration.json.
	ArtifactLanguageConfig ArtifactKind = "language-config"
	// ArtifactExtensionManifest is the VS Code extension package.json.
	ArtifactExtensionManifest ArtifactKind = "extension-manifest"
	// ArtifactSnippets is the snippet collection (snippets/<id>.json).
	ArtifactSnippets ArtifactKind = "snippets"
	// ArtifactServerStub is the language server entry-point stub.
	ArtifactServerStub ArtifactKind = "server-stub"
	// ArtifactReadme is the generated extension README.
	ArtifactReadme ArtifactKind = "readme"
)

// Valid returns true if the kind is a known artifact kind.
func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactTMGrammar, ArtifactLanguageConfig, ArtifactExtensionManifest,
		ArtifactSnippets, ArtifactServerStub, ArtifactReadme:
		return true
	default:
		return false
	}
}

// Artifact is one generated scaffolding file, produced by a worker and
// written to disk by the scaffold writer after the batch completes.
type Artifact struct {
	// Kind identifies what the artifact is.
	Kind ArtifactKind `json:"kind"`
	// Path is the output path relative to the extension root.
	Path string `json:"path"`
	// Content is the rendered file content.
	Content []byte `json:"-"`
}
