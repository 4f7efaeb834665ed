package repositories

import "github.com/rios0rios0/driftwatch/internal/domain/entities"

// DeclarationDecoder turns the content of a declaration file into a generic
// document.
type DeclarationDecoder interface {
	// Supports reports whether the file at path is a declaration this decoder reads.
	Supports(path string) bool

	Decode(path string, content []byte) (entities.RawDeclaration, error)
}
