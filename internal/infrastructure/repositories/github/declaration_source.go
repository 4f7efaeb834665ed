package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// DeclarationSource reads pipeline declarations from a directory of a
// GitHub repository.
type DeclarationSource struct {
	client *gh.Client
	repo   entities.Repository
	dir    string
}

// NewDeclarationSource creates a DeclarationSource reading dir of the
// "owner/repo" repository pipelineRepo.
func NewDeclarationSource(client *gh.Client, pipelineRepo, dir string) (repositories.DeclarationSource, error) {
	owner, name, err := splitRepoID(pipelineRepo)
	if err != nil {
		return nil, err
	}
	return &DeclarationSource{
		client: client,
		repo: entities.Repository{
			Name:         name,
			Organization: owner,
			ProviderName: "github",
		},
		dir: dir,
	}, nil
}

func (p *DeclarationSource) Location() string {
	return fmt.Sprintf("github:%s/%s/%s", p.repo.Organization, p.repo.Name, p.dir)
}

func (p *DeclarationSource) ListDeclarations(ctx context.Context) ([]entities.File, error) {
	_, entries, resp, err := p.client.Repositories.GetContents(
		ctx, p.repo.Organization, p.repo.Name, p.dir,
		&gh.RepositoryContentGetOptions{},
	)
	if err != nil {
		return nil, classifyError("list declarations in "+p.Location(), resp, err)
	}
	if entries == nil {
		return nil, fmt.Errorf("path %q is a file, not a directory", p.dir)
	}

	files := make([]entities.File, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() == "dir" {
			continue
		}
		files = append(files, entities.File{
			Path:     entry.GetPath(),
			ObjectID: entry.GetSHA(),
		})
	}

	return files, nil
}

func (p *DeclarationSource) GetDeclaration(ctx context.Context, path string) (string, error) {
	fileContent, _, resp, err := p.client.Repositories.GetContents(
		ctx, p.repo.Organization, p.repo.Name, path,
		&gh.RepositoryContentGetOptions{},
	)
	if err != nil {
		return "", classifyError(fmt.Sprintf("get file %q", path), resp, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("path %q is a directory, not a file", path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode file content: %w", err)
	}

	return content, nil
}
