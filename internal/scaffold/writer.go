package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

// Writer places rendered artifacts under an output directory.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Write persists one artifact, creating parent directories as needed.
// Server stubs are written executable.
func (w *Writer) Write(a *models.Artifact) (string, error) {
	dest := filepath.Join(w.root, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}

	mode := os.FileMode(0644)
	if a.Kind == models.ArtifactServerStub {
		mode = 0755
	}
	if err := os.WriteFile(dest, a.Content, mode); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// WriteAll persists every successful artifact in results and returns the
// written paths. Results without an artifact payload are skipped.
func (w *Writer) WriteAll(results []*models.TaskResult) ([]string, error) {
	var paths []string
	for _, res := range results {
		if !res.OK() {
			continue
		}
		artifact, ok := res.Result.(*models.Artifact)
		if !ok {
			continue
		}
		path, err := w.Write(artifact)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
