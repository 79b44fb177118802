// Package scaffold plans a generation run and writes its artifacts. The
// plan is a batch of render tasks wired with the dependencies that keep
// summary artifacts behind the files they summarize.
package scaffold

import (
	"github.com/tbeckett/grammarsmith/internal/grammar"
	"github.com/tbeckett/grammarsmith/internal/render"
	"github.com/tbeckett/grammarsmith/pkg/models"
)

// Task IDs double as artifact kind names so run ledgers and logs read
// naturally.
const (
	taskTMGrammar         = string(models.ArtifactTMGrammar)
	taskLanguageConfig    = string(models.ArtifactLanguageConfig)
	taskExtensionManifest = string(models.ArtifactExtensionManifest)
	taskSnippets          = string(models.ArtifactSnippets)
	taskServerStub        = string(models.ArtifactServerStub)
	taskReadme            = string(models.ArtifactReadme)
)

// Plan builds the render batch for one manifest. Leaf artifacts carry
// higher priority so they are admitted first within their wave; the
// extension manifest waits for everything it references, and the readme
// waits for the extension manifest it documents.
func Plan(m *grammar.Manifest) []*models.Task {
	task := func(id string, kind models.ArtifactKind, priority int, deps ...string) *models.Task {
		return &models.Task{
			ID:        id,
			Kind:      string(kind),
			Payload:   render.Request{Kind: kind, Manifest: m},
			DependsOn: deps,
			Priority:  priority,
		}
	}

	manifestDeps := []string{taskTMGrammar, taskLanguageConfig}
	tasks := []*models.Task{
		task(taskTMGrammar, models.ArtifactTMGrammar, 10),
		task(taskLanguageConfig, models.ArtifactLanguageConfig, 10),
		task(taskServerStub, models.ArtifactServerStub, 5),
	}
	if len(m.Snippets) > 0 {
		tasks = append(tasks, task(taskSnippets, models.ArtifactSnippets, 10))
		manifestDeps = append(manifestDeps, taskSnippets)
	}
	tasks = append(tasks,
		task(taskExtensionManifest, models.ArtifactExtensionManifest, 5, manifestDeps...),
		task(taskReadme, models.ArtifactReadme, 0, taskExtensionManifest),
	)
	return tasks
}
