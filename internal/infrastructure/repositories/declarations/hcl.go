package declarations

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

// decodeHCL reads a declaration written as
//
//	scm = "uktrade/great-cms"
//
//	environment "staging" {
//	  type = "gds"
//	  app  = "dit/staging/great-cms"
//	}
//
// An environments attribute holding a list of objects is accepted too and
// comes before the blocks.
func decodeHCL(path string, content []byte) (entities.RawDeclaration, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	bodyContent, diags := file.Body.Content(&hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: entities.DeclarationKeySCM},
			{Name: entities.DeclarationKeyEnvironments},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: entities.DeclarationKeyEnvironment, LabelNames: []string{"name"}},
		},
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid declaration: %w", diags)
	}

	raw := entities.RawDeclaration{}
	for name, attr := range bodyContent.Attributes {
		value, valueDiags := attr.Expr.Value(&hcl.EvalContext{})
		if valueDiags.HasErrors() {
			return nil, fmt.Errorf("invalid %s: %w", name, valueDiags)
		}
		converted, err := fromCty(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		raw[name] = converted
	}

	if len(bodyContent.Blocks) == 0 {
		return raw, nil
	}

	environments, isList := raw[entities.DeclarationKeyEnvironments].([]any)
	if _, present := raw[entities.DeclarationKeyEnvironments]; present && !isList {
		return nil, errors.New("environments must be a list when environment blocks are used")
	}
	for _, block := range bodyContent.Blocks {
		attrs, attrDiags := block.Body.JustAttributes()
		if attrDiags.HasErrors() {
			return nil, fmt.Errorf("invalid environment %q: %w", block.Labels[0], attrDiags)
		}

		environment := map[string]any{entities.DeclarationKeyEnvironment: block.Labels[0]}
		for name, attr := range attrs {
			value, valueDiags := attr.Expr.Value(&hcl.EvalContext{})
			if valueDiags.HasErrors() {
				return nil, fmt.Errorf("invalid environment %q: %w", block.Labels[0], valueDiags)
			}
			converted, err := fromCty(value)
			if err != nil {
				return nil, fmt.Errorf("invalid environment %q: %w", block.Labels[0], err)
			}
			environment[name] = converted
		}
		environments = append(environments, environment)
	}
	raw[entities.DeclarationKeyEnvironments] = environments

	return raw, nil
}

// fromCty converts a known cty value into the plain Go shapes a YAML decoder
// produces, so both formats reach the resolver identically.
func fromCty(value cty.Value) (any, error) {
	if value.IsNull() {
		return nil, nil
	}
	if !value.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	valueType := value.Type()
	switch {
	case valueType == cty.String:
		return value.AsString(), nil
	case valueType == cty.Bool:
		return value.True(), nil
	case valueType == cty.Number:
		number := value.AsBigFloat()
		if number.IsInt() {
			integer, _ := number.Int64()
			return int(integer), nil
		}
		float, _ := number.Float64()
		return float, nil
	case valueType.IsListType() || valueType.IsTupleType() || valueType.IsSetType():
		items := []any{}
		for it := value.ElementIterator(); it.Next(); {
			_, element := it.Element()
			converted, err := fromCty(element)
			if err != nil {
				return nil, err
			}
			items = append(items, converted)
		}
		return items, nil
	case valueType.IsMapType() || valueType.IsObjectType():
		fields := make(map[string]any)
		for it := value.ElementIterator(); it.Next(); {
			key, element := it.Element()
			converted, err := fromCty(element)
			if err != nil {
				return nil, err
			}
			fields[key.AsString()] = converted
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", valueType.FriendlyName())
	}
}
