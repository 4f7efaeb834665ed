package commands

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// ConfigResolver turns decoded pipeline declarations into PipelineConfigs.
type ConfigResolver struct {
	cleanupTokens []string
}

// NewConfigResolver creates a ConfigResolver stripping cleanupTokens from
// declared scm values.
func NewConfigResolver(cleanupTokens []string) *ConfigResolver {
	tokens := make([]string, 0, len(cleanupTokens))
	for _, token := range cleanupTokens {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return &ConfigResolver{cleanupTokens: tokens}
}

// Normalize removes every cleanup token from raw, in configured order,
// anywhere in the string. Passes repeat until nothing changes, so a removal
// that joins the halves of another token cannot leave work for a second call.
func (it *ConfigResolver) Normalize(raw string) string {
	normalized := strings.TrimSpace(raw)
	for {
		previous := normalized
		for _, token := range it.cleanupTokens {
			normalized = strings.ReplaceAll(normalized, token, "")
		}
		if normalized == previous {
			return normalized
		}
	}
}

// Resolve builds the PipelineConfig of decl. It returns a
// *entities.MalformedConfigError when scm or environments are missing or
// have the wrong shape.
func (it *ConfigResolver) Resolve(decl entities.Declaration) (entities.PipelineConfig, error) {
	if decl.DecodeErr != nil {
		return entities.PipelineConfig{}, &entities.MalformedConfigError{
			SourceID: decl.SourceID,
			Reason:   "could not be read",
			Err:      decl.DecodeErr,
		}
	}

	malformed := func(field, reason string) error {
		return &entities.MalformedConfigError{SourceID: decl.SourceID, Field: field, Reason: reason}
	}

	scmValue, ok := decl.Raw[entities.DeclarationKeySCM]
	if !ok {
		return entities.PipelineConfig{}, malformed(entities.DeclarationKeySCM, "is missing")
	}
	scm, ok := scmValue.(string)
	if !ok || strings.TrimSpace(scm) == "" {
		return entities.PipelineConfig{}, malformed(entities.DeclarationKeySCM, "must be a non-empty string")
	}

	envValue, ok := decl.Raw[entities.DeclarationKeyEnvironments]
	if !ok {
		return entities.PipelineConfig{}, malformed(entities.DeclarationKeyEnvironments, "is missing")
	}
	items, ok := envValue.([]any)
	if !ok {
		return entities.PipelineConfig{}, malformed(entities.DeclarationKeyEnvironments, "must be a list")
	}

	environments := make([]entities.EnvironmentDeclaration, 0, len(items))
	for i, item := range items {
		fields, isMap := asStringMap(item)
		if !isMap {
			return entities.PipelineConfig{}, malformed(
				fmt.Sprintf("%s[%d]", entities.DeclarationKeyEnvironments, i), "must be a mapping",
			)
		}
		environments = append(environments, entities.EnvironmentDeclaration{
			EnvironmentName: stringField(fields, entities.DeclarationKeyEnvironment),
			AppType:         stringField(fields, entities.DeclarationKeyType),
			TargetPath:      stringField(fields, entities.DeclarationKeyApp),
		})
	}

	return entities.PipelineConfig{
		SourceID:      decl.SourceID,
		SCMIdentifier: it.Normalize(scm),
		Environments:  environments,
	}, nil
}

// asStringMap accepts both mapping shapes YAML decoders produce.
func asStringMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case entities.RawDeclaration:
		return typed, true
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, val := range typed {
			converted[fmt.Sprint(key)] = val
		}
		return converted, true
	default:
		return nil, false
	}
}

func stringField(fields map[string]any, key string) string {
	switch value := fields[key].(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
