// Package render turns a grammar manifest into scaffolding artifacts.
// It is the worker-side execution unit of the engine: one render request
// in, one artifact (or error) out.
package render

import (
	"fmt"

	"github.com/tbeckett/grammarsmith/internal/grammar"
	"github.com/tbeckett/grammarsmith/pkg/models"
)

// Request is the opaque task payload the engine dispatches to workers.
type Request struct {
	// Kind selects the artifact to render.
	Kind models.ArtifactKind
	// Manifest is the language description driving the render.
	Manifest *grammar.Manifest
}

// Renderer produces artifacts from render requests.
type Renderer struct{}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render produces the artifact for one request.
func (r *Renderer) Render(req Request) (*models.Artifact, error) {
	if req.Manifest == nil {
		return nil, fmt.Errorf("render %s: manifest is required", req.Kind)
	}

	switch req.Kind {
	case models.ArtifactTMGrammar:
		return r.renderTMGrammar(req.Manifest)
	case models.ArtifactLanguageConfig:
		return r.renderLanguageConfig(req.Manifest)
	case models.ArtifactExtensionManifest:
		return r.renderExtensionManifest(req.Manifest)
	case models.ArtifactSnippets:
		return r.renderSnippets(req.Manifest)
	case models.ArtifactServerStub:
		return r.renderServerStub(req.Manifest)
	case models.ArtifactReadme:
		return r.renderReadme(req.Manifest)
	default:
		return nil, fmt.Errorf("render: unknown artifact kind %q", req.Kind)
	}
}

// Runner adapts the renderer to the engine's worker entry point. The
// returned function asserts the task payload is a Request and renders it.
func (r *Renderer) Runner() func(task *models.Task) (interface{}, error) {
	return func(task *models.Task) (interface{}, error) {
		req, ok := task.Payload.(Request)
		if !ok {
			return nil, fmt.Errorf("task %s: payload is %T, want render.Request", task.ID, task.Payload)
		}
		artifact, err := r.Render(req)
		if err != nil {
			return nil, err
		}
		return artifact, nil
	}
}
