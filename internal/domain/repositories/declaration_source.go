package repositories

import (
	"context"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// DeclarationSource lists and reads pipeline declaration files.
type DeclarationSource interface {
	// Location describes where declarations are read from, for logging.
	Location() string

	// ListDeclarations returns the declaration files, directories excluded.
	ListDeclarations(ctx context.Context) ([]entities.File, error)

	// GetDeclaration returns the raw content of one declaration file.
	GetDeclaration(ctx context.Context, path string) (string, error)
}
