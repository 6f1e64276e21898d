package ctybridge

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
	"github.com/zclconf/go-cty/cty"
)

func init() {
	holder.RegisterConversionHook(castHook)
}

// castHook serves casts across the cty boundary: a holder of cty.Value
// casts to any Go-backed shape cty can convert to, and values with a cty
// representation cast to a cty.Value holder.
func castHook(from, to *shape.Descriptor) holder.ConversionFunc {
	switch {
	case from == ctyValueShape && to.GoType() != nil:
		return fromCtyConversion
	case to == ctyValueShape && from != ctyValueShape:
		return toCtyConversion
	}
	return nil
}

func fromCtyConversion(h holder.Holder, to *shape.Descriptor) (holder.Holder, error) {
	val, err := holder.CheckedGet[cty.Value](h)
	if err != nil {
		return holder.Empty(), err
	}
	p := reflect.New(to.GoType())
	if err := Decode(context.Background(), val, p.Interface()); err != nil {
		return holder.Empty(), fmt.Errorf("%v: %w", err, holder.ErrBadCast)
	}
	return holder.TryNew(p.Elem().Interface())
}

func toCtyConversion(h holder.Holder, _ *shape.Descriptor) (holder.Holder, error) {
	val, err := ToValue(context.Background(), h)
	if err != nil {
		return holder.Empty(), fmt.Errorf("%v: %w", err, holder.ErrBadCast)
	}
	return holder.New(val), nil
}
