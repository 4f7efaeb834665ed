package gitlocal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// DeclarationSource reads pipeline declarations from a local directory.
type DeclarationSource struct {
	dir string
}

// NewDeclarationSource creates a DeclarationSource reading dir.
func NewDeclarationSource(dir string) repositories.DeclarationSource {
	return &DeclarationSource{dir: dir}
}

func (p *DeclarationSource) Location() string {
	return "file:" + p.dir
}

func (p *DeclarationSource) ListDeclarations(ctx context.Context) ([]entities.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration directory %q: %w", p.dir, err)
	}

	files := make([]entities.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entities.File{Path: filepath.Join(p.dir, entry.Name())})
	}
	return files, nil
}

func (p *DeclarationSource) GetDeclaration(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read declaration %q: %w", path, err)
	}
	return string(data), nil
}
