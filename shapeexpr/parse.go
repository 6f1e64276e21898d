package shapeexpr

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/variantgo/ctybridge"
	"github.com/vk/variantgo/internal/ctxlog"
	"github.com/vk/variantgo/shape"
	"github.com/zclconf/go-cty/cty"
)

// Parse converts a textual type expression into its shape descriptor.
func Parse(ctx context.Context, src string) (*shape.Descriptor, error) {
	ty, err := ParseType(ctx, src)
	if err != nil {
		return nil, err
	}
	return ctybridge.ShapeOf(ty), nil
}

// ParseType converts a textual type expression into its cty.Type
// equivalent.
func ParseType(ctx context.Context, src string) (cty.Type, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<type>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.DynamicPseudoType, diags
	}
	return FromExpression(ctx, expr)
}

// FromExpression converts an HCL type expression into its cty.Type
// equivalent. A nil expression defaults to the dynamic pseudo-type.
func FromExpression(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Type expression is nil, defaulting to any.")
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a constructor call.", "call", v.Name)
		return constructorType(ctx, v)

	case *hclsyntax.ScopeTraversalExpr:
		// Primitive type keywords like `string` or `number`.
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
		switch rootName {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", rootName)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// constructorType handles the collection constructors. list, map, and set
// take exactly one element type; tuple takes any number.
func constructorType(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if call.Name == "tuple" {
		elems := make([]cty.Type, 0, len(call.Args))
		for _, arg := range call.Args {
			et, err := FromExpression(ctx, arg)
			if err != nil {
				return cty.DynamicPseudoType, err
			}
			elems = append(elems, et)
		}
		return cty.Tuple(elems), nil
	}

	if len(call.Args) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(call.Args))
	}
	elementType, err := FromExpression(ctx, call.Args[0])
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	if elementType == cty.DynamicPseudoType {
		return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
	}

	switch call.Name {
	case "list":
		return cty.List(elementType), nil
	case "map":
		return cty.Map(elementType), nil
	case "set":
		return cty.Set(elementType), nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", call.Name)
	}
}
