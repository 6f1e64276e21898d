package ctybridge

import (
	"context"
	"fmt"
	"math/big"
	"reflect"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/internal/ctxlog"
	"github.com/vk/variantgo/shape"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FromValue converts a cty value into a holder over the equivalent native
// Go value, per the mapping of ShapeOf: lists and sets become typed Go
// slices, maps typed Go maps, while tuples and objects carry one holder
// per slot. Null values become empty holders; unknown values do not
// convert.
func FromValue(ctx context.Context, v cty.Value) (holder.Holder, error) {
	logger := ctxlog.FromContext(ctx)
	if v.IsNull() {
		return holder.Empty(), nil
	}
	if !v.IsKnown() {
		return holder.Empty(), fmt.Errorf("unknown %s value does not convert: %w",
			v.Type().FriendlyName(), holder.ErrBadCast)
	}
	logger.Debug("Converting cty value to holder.", "type", v.Type().FriendlyName())

	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return holder.New(v.AsString()), nil
	case ty.Equals(cty.Bool):
		return holder.New(v.True()), nil
	case ty.Equals(cty.Number):
		return numberHolder(v), nil
	case ty.IsListType(), ty.IsSetType():
		return sliceHolder(ctx, v)
	case ty.IsTupleType():
		out := make([]holder.Holder, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			eh, err := FromValue(ctx, ev)
			if err != nil {
				return holder.Empty(), err
			}
			out = append(out, eh)
		}
		return holder.New(out), nil
	case ty.IsMapType():
		return mapHolder(ctx, v)
	case ty.IsObjectType():
		out := make(map[string]holder.Holder, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			eh, err := FromValue(ctx, ev)
			if err != nil {
				return holder.Empty(), err
			}
			out[kv.AsString()] = eh
		}
		return holder.New(out), nil
	}
	return holder.Empty(), fmt.Errorf("no native representation for %s: %w",
		ty.FriendlyName(), holder.ErrBadCast)
}

// sliceHolder builds the typed Go slice ShapeOf names for a list or set
// value.
func sliceHolder(ctx context.Context, v cty.Value) (holder.Holder, error) {
	st := ShapeOf(v.Type()).GoType()
	out := reflect.MakeSlice(st, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		eh, err := FromValue(ctx, ev)
		if err != nil {
			return holder.Empty(), err
		}
		e, err := elementValue(eh, st.Elem())
		if err != nil {
			return holder.Empty(), err
		}
		out = reflect.Append(out, e)
	}
	return holder.TryNew(out.Interface())
}

// mapHolder builds the string-keyed Go map ShapeOf names for a map value.
func mapHolder(ctx context.Context, v cty.Value) (holder.Holder, error) {
	mt := ShapeOf(v.Type()).GoType()
	out := reflect.MakeMapWithSize(mt, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		kv, ev := it.Element()
		eh, err := FromValue(ctx, ev)
		if err != nil {
			return holder.Empty(), err
		}
		e, err := elementValue(eh, mt.Elem())
		if err != nil {
			return holder.Empty(), err
		}
		out.SetMapIndex(reflect.ValueOf(kv.AsString()), e)
	}
	return holder.TryNew(out.Interface())
}

// elementValue coerces a converted element holder into the container's Go
// element type. Null elements become the zero value.
func elementValue(eh holder.Holder, t reflect.Type) (reflect.Value, error) {
	if t == reflect.TypeOf((*holder.Holder)(nil)).Elem() {
		return reflect.ValueOf(eh), nil
	}
	if eh.IsEmpty() {
		return reflect.Zero(t), nil
	}
	raw := reflect.ValueOf(eh.Address().Load())
	switch {
	case raw.Type().AssignableTo(t):
		return raw, nil
	case raw.Type().ConvertibleTo(t):
		return raw.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%s element does not fit %s: %w",
		eh.Descriptor(), t, holder.ErrBadCast)
}

// numberHolder keeps whole cty numbers as int64 and everything else as
// float64.
func numberHolder(v cty.Value) holder.Holder {
	bf := v.AsBigFloat()
	if i, acc := bf.Int64(); acc == big.Exact {
		return holder.New(i)
	}
	f, _ := bf.Float64()
	return holder.New(f)
}

// ToValue converts the value held by h into a cty value. Typed Go
// collections regain their implied collection type, so lists survive a
// FromValue round trip; sets come back as lists. Holder-slot containers
// re-encode as tuples and objects. Empty holders become a null of the
// dynamic pseudo-type; holder-of-holder levels are unwrapped first.
func ToValue(ctx context.Context, h holder.Holder) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	if h.IsEmpty() {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if shape.Bare(h.Descriptor()).Kind() == shape.KindHolder {
		return ToValue(ctx, holder.GetHolder(h))
	}

	switch raw := h.Address().Load().(type) {
	case cty.Value:
		return raw, nil
	case []holder.Holder:
		if len(raw) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, 0, len(raw))
		for _, eh := range raw {
			ev, err := ToValue(ctx, eh)
			if err != nil {
				return cty.NilVal, err
			}
			vals = append(vals, ev)
		}
		return cty.TupleVal(vals), nil
	case map[string]holder.Holder:
		if len(raw) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(raw))
		for k, eh := range raw {
			ev, err := ToValue(ctx, eh)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		ty, err := gocty.ImpliedType(raw)
		if err != nil {
			logger.Debug("No implied cty type, re-encoding per element.",
				"go_type", fmt.Sprintf("%T", raw), "error", err)
			return nestedToValue(ctx, raw)
		}
		out, err := gocty.ToCtyValue(raw, ty)
		if err != nil {
			return cty.NilVal, err
		}
		return out, nil
	}
}

// nestedToValue re-encodes containers whose element type has no implied
// cty type, such as a slice of holder-slot objects, element by element.
func nestedToValue(ctx context.Context, raw any) (cty.Value, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, rv.Len())
		for i := range vals {
			ev, err := ToValue(ctx, holder.New(rv.Index(i).Interface()))
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = ev
		}
		return cty.TupleVal(vals), nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			if rv.Len() == 0 {
				return cty.EmptyObjectVal, nil
			}
			attrs := make(map[string]cty.Value, rv.Len())
			for it := rv.MapRange(); it.Next(); {
				ev, err := ToValue(ctx, holder.New(it.Value().Interface()))
				if err != nil {
					return cty.NilVal, err
				}
				attrs[it.Key().String()] = ev
			}
			return cty.ObjectVal(attrs), nil
		}
	}
	return cty.NilVal, fmt.Errorf("no cty representation for %T: %w", raw, holder.ErrUnsupported)
}

// Decode converts a cty value into the Go value target points to,
// applying cty's implicit conversions when the types differ.
func Decode(ctx context.Context, val cty.Value, target any) error {
	logger := ctxlog.FromContext(ctx)
	p := reflect.ValueOf(target)
	if p.Kind() != reflect.Pointer || p.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}

	want, err := gocty.ImpliedType(p.Elem().Interface())
	if err != nil {
		logger.Debug("No implied cty type for target, decoding directly.",
			"go_type", p.Elem().Type().String(), "error", err)
		return gocty.FromCtyValue(val, target)
	}

	converted, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w",
			val.Type().FriendlyName(), want.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(converted, target)
}
