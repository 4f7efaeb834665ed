//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// DeclarationBuilder helps create decoded pipeline declarations with a
// fluent interface. Environments are added in order.
type DeclarationBuilder struct {
	*testkit.BaseBuilder
	sourceID     string
	scm          any
	environments []any
	omitSCM      bool
	decodeErr    error
}

// NewDeclarationBuilder creates a new declaration builder with sensible defaults.
func NewDeclarationBuilder() *DeclarationBuilder {
	return &DeclarationBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		sourceID:    "great-cms.yaml",
		scm:         "https://github.com/uktrade/great-cms.git",
	}
}

// WithSourceID sets the declaration file name.
func (b *DeclarationBuilder) WithSourceID(sourceID string) *DeclarationBuilder {
	b.sourceID = sourceID
	return b
}

// WithSCM sets the raw scm value.
func (b *DeclarationBuilder) WithSCM(scm any) *DeclarationBuilder {
	b.scm = scm
	b.omitSCM = false
	return b
}

// WithoutSCM drops the scm key.
func (b *DeclarationBuilder) WithoutSCM() *DeclarationBuilder {
	b.omitSCM = true
	return b
}

// WithEnvironment appends an environment entry.
func (b *DeclarationBuilder) WithEnvironment(name, appType, app string) *DeclarationBuilder {
	b.environments = append(b.environments, map[string]any{
		entities.DeclarationKeyEnvironment: name,
		entities.DeclarationKeyType:        appType,
		entities.DeclarationKeyApp:         app,
	})
	return b
}

// WithDecodeErr marks the declaration file as undecodable.
func (b *DeclarationBuilder) WithDecodeErr(err error) *DeclarationBuilder {
	b.decodeErr = err
	return b
}

// Build creates the declaration (satisfies testkit.Builder interface).
func (b *DeclarationBuilder) Build() interface{} {
	return b.BuildDeclaration()
}

// BuildDeclaration creates the declaration with a concrete return type.
func (b *DeclarationBuilder) BuildDeclaration() entities.Declaration {
	raw := entities.RawDeclaration{
		entities.DeclarationKeyEnvironments: append([]any{}, b.environments...),
	}
	if !b.omitSCM {
		raw[entities.DeclarationKeySCM] = b.scm
	}
	return entities.Declaration{SourceID: b.sourceID, Raw: raw, DecodeErr: b.decodeErr}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DeclarationBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.sourceID = "great-cms.yaml"
	b.scm = "https://github.com/uktrade/great-cms.git"
	b.environments = nil
	b.omitSCM = false
	b.decodeErr = nil
	return b
}

// Clone creates a deep copy of the DeclarationBuilder.
func (b *DeclarationBuilder) Clone() testkit.Builder {
	return &DeclarationBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		sourceID:     b.sourceID,
		scm:          b.scm,
		environments: append([]any(nil), b.environments...),
		omitSCM:      b.omitSCM,
		decodeErr:    b.decodeErr,
	}
}
