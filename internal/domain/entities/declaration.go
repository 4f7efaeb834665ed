package entities

import "strings"

// Keys of a decoded pipeline declaration document.
const (
	DeclarationKeySCM          = "scm"
	DeclarationKeyEnvironments = "environments"
	DeclarationKeyEnvironment  = "environment"
	DeclarationKeyType         = "type"
	DeclarationKeyApp          = "app"
)

// RawDeclaration is a pipeline declaration decoded into a generic document,
// regardless of the file format it was written in.
type RawDeclaration map[string]any

// Declaration is one discovered pipeline declaration file.
type Declaration struct {
	SourceID string // file name or path, unique per run
	Raw      RawDeclaration

	// DecodeErr is set when the file could not be decoded at all.
	DecodeErr error
}

// PipelineConfig is the typed form of a declaration. Immutable once built.
type PipelineConfig struct {
	SourceID      string                   `json:"source_id"`
	SCMIdentifier string                   `json:"scm_identifier"`
	Environments  []EnvironmentDeclaration `json:"environments"`
}

// EnvironmentDeclaration is one entry of a pipeline's environment list.
type EnvironmentDeclaration struct {
	EnvironmentName string `json:"environment_name"`
	AppType         string `json:"app_type"`
	TargetPath      string `json:"target_path"` // expected shape "org/space/app"
}

// SCMOwner returns the owner segment of a normalized "owner/repo" identifier.
func SCMOwner(scmIdentifier string) string {
	owner, _, _ := strings.Cut(strings.TrimPrefix(scmIdentifier, "/"), "/")
	return owner
}

// SplitSCMIdentifier splits a normalized "owner/repo" identifier.
func SplitSCMIdentifier(scmIdentifier string) (string, string, bool) {
	owner, name, ok := strings.Cut(strings.Trim(scmIdentifier, "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}
