package adapt

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// load returns the value held by h as a reflect.Value, invalid for empty
// holders.
func load(h holder.Holder) reflect.Value {
	a := h.Address()
	if a.IsZero() {
		return reflect.Value{}
	}
	return reflect.ValueOf(a.Load())
}

// deref returns an addressable view of the instance behind h: the
// referent for references, the owned cell otherwise.
func deref(h holder.Holder) (reflect.Value, error) {
	a := h.Address()
	if a.IsZero() {
		return reflect.Value{}, fmt.Errorf("no instance storage: %w", holder.ErrBadCast)
	}
	return reflect.ValueOf(a.Pointer()).Elem(), nil
}

// valueAs coerces the value held by arg into the Go type t of shape d,
// casting through the holder protocol when the representation differs.
func valueAs(arg holder.Holder, d *shape.Descriptor, t reflect.Type) (reflect.Value, error) {
	if t == reflect.TypeOf((*holder.Holder)(nil)).Elem() {
		return reflect.ValueOf(arg), nil
	}
	if raw := load(arg); raw.IsValid() && raw.Type().AssignableTo(t) {
		return raw, nil
	}
	casted, err := arg.Cast(d)
	if err != nil {
		return reflect.Value{}, err
	}
	raw := load(casted)
	if !raw.IsValid() {
		return reflect.Value{}, fmt.Errorf("no value for %s parameter: %w", t, holder.ErrBadCast)
	}
	switch {
	case raw.Type().AssignableTo(t):
		return raw, nil
	case raw.Type().ConvertibleTo(t):
		return raw.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("pass %s value as %s: %w", raw.Type(), t, holder.ErrBadCast)
}
