//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// SpyDeclarationSource implements repositories.DeclarationSource as a
// configurable spy.
type SpyDeclarationSource struct {
	Files    []entities.File
	ListErr  error
	Contents map[string]string // path -> content

	// spy: paths that were fetched
	FetchedPaths []string
}

var _ repositories.DeclarationSource = (*SpyDeclarationSource)(nil)

func (p *SpyDeclarationSource) Location() string { return "spy" }

func (p *SpyDeclarationSource) ListDeclarations(_ context.Context) ([]entities.File, error) {
	return p.Files, p.ListErr
}

func (p *SpyDeclarationSource) GetDeclaration(_ context.Context, path string) (string, error) {
	p.FetchedPaths = append(p.FetchedPaths, path)
	content, ok := p.Contents[path]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path)
	}
	return content, nil
}
