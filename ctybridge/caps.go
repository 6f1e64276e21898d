package ctybridge

import (
	"fmt"
	"io"

	"github.com/vk/variantgo/caps"
	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
	"github.com/zclconf/go-cty/cty"
)

func init() {
	shape.RegisterProvider(shape.CapIndexable, valueCapability)
	shape.RegisterProvider(shape.CapMapping, valueCapability)
	shape.RegisterProvider(shape.CapEnumerable, valueCapability)
	shape.RegisterProvider(shape.CapStreamable, valueCapability)
}

func valueCapability(d *shape.Descriptor) any {
	if d != ctyValueShape {
		return nil
	}
	return valueAdapter{}
}

// valueAdapter gives holders of raw cty values container access without
// converting them out of the cty world. cty values are immutable, so the
// writing half of each protocol is unsupported.
type valueAdapter struct{}

func containerValue(h holder.Holder) (cty.Value, error) {
	v, err := holder.CheckedGet[cty.Value](h)
	if err != nil {
		return cty.NilVal, err
	}
	if v.IsNull() || !v.IsKnown() || !v.CanIterateElements() {
		return cty.NilVal, fmt.Errorf("%s value has no elements: %w",
			v.Type().FriendlyName(), holder.ErrUnsupported)
	}
	return v, nil
}

func (valueAdapter) Len(c holder.Holder) (int, error) {
	v, err := containerValue(c)
	if err != nil {
		return 0, err
	}
	return v.LengthInt(), nil
}

func (valueAdapter) At(c holder.Holder, i int) (holder.Holder, error) {
	v, err := containerValue(c)
	if err != nil {
		return holder.Empty(), err
	}
	if i < 0 || i >= v.LengthInt() {
		return holder.Empty(), fmt.Errorf("index %d out of range for length %d: %w", i, v.LengthInt(), holder.ErrBadCast)
	}
	n := 0
	for it := v.ElementIterator(); it.Next(); n++ {
		_, ev := it.Element()
		if n == i {
			return holder.New(ev), nil
		}
	}
	return holder.Empty(), fmt.Errorf("index %d out of range: %w", i, holder.ErrBadCast)
}

func (valueAdapter) SetAt(c holder.Holder, i int, value holder.Holder) error {
	return fmt.Errorf("cty values are immutable: %w", holder.ErrUnsupported)
}

func (valueAdapter) KeyShape() *shape.Descriptor { return shape.For[string]() }

func (valueAdapter) ValueShape() *shape.Descriptor { return ctyValueShape }

func (valueAdapter) Lookup(container, key holder.Holder) (holder.Holder, error) {
	v, err := containerValue(container)
	if err != nil {
		return holder.Empty(), err
	}
	k, err := holder.CheckedGet[string](key.CastSilently(shape.For[string]()))
	if err != nil {
		return holder.Empty(), err
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		if !ty.HasAttribute(k) {
			return holder.Empty(), nil
		}
		return holder.New(v.GetAttr(k)), nil
	case ty.IsMapType():
		idx := cty.StringVal(k)
		if !v.HasIndex(idx).True() {
			return holder.Empty(), nil
		}
		return holder.New(v.Index(idx)), nil
	}
	return holder.Empty(), fmt.Errorf("%s value has no keyed access: %w",
		ty.FriendlyName(), holder.ErrUnsupported)
}

func (valueAdapter) Store(container, key, value holder.Holder) error {
	return fmt.Errorf("cty values are immutable: %w", holder.ErrUnsupported)
}

func (valueAdapter) ForEach(container holder.Holder, visit func(element holder.Holder) bool) error {
	v, err := containerValue(container)
	if err != nil {
		return err
	}
	keyed := v.Type().IsMapType() || v.Type().IsObjectType()
	for it := v.ElementIterator(); it.Next(); {
		kv, ev := it.Element()
		var element holder.Holder
		if keyed {
			element = holder.New(caps.Pair{Key: holder.New(kv), Value: holder.New(ev)})
		} else {
			element = holder.New(ev)
		}
		if !visit(element) {
			return nil
		}
	}
	return nil
}

func (valueAdapter) Format(w io.Writer, v holder.Holder) error {
	val, err := holder.CheckedGet[cty.Value](v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, val.GoString())
	return err
}

func (valueAdapter) Scan(io.Reader, holder.Holder) error {
	return fmt.Errorf("cty values are immutable: %w", holder.ErrUnsupported)
}
