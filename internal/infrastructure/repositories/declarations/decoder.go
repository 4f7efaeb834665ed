// Package declarations decodes pipeline declaration files. YAML files are
// the native format; HCL files are accepted for teams that keep their
// deployment manifests next to Terraform.
package declarations

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
	"github.com/rios0rios0/driftwatch/internal/domain/repositories"
)

// Decoder implements repositories.DeclarationDecoder for YAML and HCL.
type Decoder struct{}

// NewDecoder creates a Decoder.
func NewDecoder() repositories.DeclarationDecoder {
	return &Decoder{}
}

func (d *Decoder) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".hcl":
		return true
	default:
		return false
	}
}

func (d *Decoder) Decode(path string, content []byte) (entities.RawDeclaration, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(content)
	case ".hcl":
		return decodeHCL(path, content)
	default:
		return nil, fmt.Errorf("unsupported declaration format: %q", path)
	}
}

func decodeYAML(content []byte) (entities.RawDeclaration, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return entities.RawDeclaration{}, nil
	}
	if root := node.Content[0]; root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at the top level, got %s", kindName(root.Kind))
	}

	// Decoding into the named map type would make yaml.v3 use it for nested
	// mappings too; those stay plain map[string]any.
	raw := map[string]any{}
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return entities.RawDeclaration(raw), nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}
