package ctybridge

import (
	"reflect"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
	"github.com/zclconf/go-cty/cty"
)

// ctyValueShape is the descriptor of a holder carrying a raw cty.Value.
var ctyValueShape = shape.For[cty.Value]()

// ValueShape returns the descriptor of holders carrying raw cty values.
func ValueShape() *shape.Descriptor { return ctyValueShape }

// ShapeOf maps a cty type to the descriptor its values convert to.
// Primitives map to their native Go shapes, lists and sets to slices,
// maps to string-keyed Go maps. Heterogeneous tuples and objects carry
// one holder per slot, as does the dynamic pseudo-type.
func ShapeOf(ty cty.Type) *shape.Descriptor {
	switch {
	case ty == cty.NilType:
		return shape.Void()
	case ty.Equals(cty.String):
		return shape.For[string]()
	case ty.Equals(cty.Bool):
		return shape.For[bool]()
	case ty.Equals(cty.Number):
		return shape.For[float64]()
	case ty.IsListType(), ty.IsSetType():
		return shape.SliceOf(ShapeOf(ty.ElementType()))
	case ty.IsMapType():
		return shape.MapOf(shape.For[string](), ShapeOf(ty.ElementType()))
	case ty.IsTupleType():
		return shape.For[[]holder.Holder]()
	case ty.IsObjectType():
		return shape.For[map[string]holder.Holder]()
	case ty.IsCapsuleType():
		// Capsule values carry a pointer to their encapsulated Go value.
		return shape.OfType(reflect.PointerTo(ty.EncapsulatedType()))
	}
	return shape.HolderShape()
}
