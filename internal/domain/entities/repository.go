package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// Repository is re-exported from gitforge.
// It describes the repository that hosts the pipeline declarations.
type Repository = gitforgeEntities.Repository

// File is re-exported from gitforge.
// Declaration sources list their files with it.
type File = gitforgeEntities.File
