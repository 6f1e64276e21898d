package holder

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/shape"
)

// CanGetShape reports whether the held value can be read under shape t.
// The relation is fixed:
//
//   - a holder-of-holder is compatible with anything, unwrapping one level;
//   - reference↔reference, pointer↔pointer, and array↔array requests are
//     always compatible;
//   - a reference against a non-reference is compatible when the referent
//     shape equals the bare requested shape;
//   - otherwise t must equal the held shape exactly or request a
//     more-qualified view of it.
//
// CanGetShape trades type safety for speed on the indirection rows, like
// the rest of the get protocol; use CanCast for a value-checked answer.
func (h Holder) CanGetShape(t *shape.Descriptor) bool {
	v := h.Descriptor()
	if shape.Bare(t).Kind() == shape.KindHolder {
		return true
	}
	if shape.Bare(v).Kind() == shape.KindHolder {
		return h.unwrap().CanGetShape(t)
	}
	if v.Kind() == shape.KindVoid {
		return false
	}

	vRef, tRef := v.IsReference(), t.IsReference()
	if vRef && tRef {
		return true
	}
	bv, bt := shape.Bare(v), shape.Bare(t)
	if vRef != tRef {
		return bv == bt
	}

	switch {
	case bv.Kind() == shape.KindPointer && bt.Kind() == shape.KindPointer:
		return true
	case bv.Kind() == shape.KindSlice && bt.Kind() == shape.KindSlice:
		return true
	case bv.Kind() == shape.KindArray && bt.Kind() == shape.KindArray:
		return true
	}
	return bv == bt && t.Qualifiers().Contains(v.Qualifiers())
}

// CanGet reports whether Get[T] may be used on h.
func CanGet[T any](h Holder) bool {
	return h.CanGetShape(shape.For[T]())
}

// Get returns the held value as T. It is the unchecked fast path: the
// caller asserts compatibility, and a wrong T panics. Use CheckedGet to
// observe incompatibility as an error. Requesting T = Holder returns the
// holder itself, or the inner holder of a holder-of-holder.
func Get[T any](h Holder) T {
	tt := reflect.TypeOf((*T)(nil)).Elem()
	if tt == reflect.TypeOf((*Holder)(nil)).Elem() {
		if shape.Bare(h.Descriptor()).Kind() == shape.KindHolder {
			return any(h.unwrap()).(T)
		}
		return any(h).(T)
	}
	if shape.Bare(h.Descriptor()).Kind() == shape.KindHolder {
		return Get[T](h.unwrap())
	}

	rv := h.value()
	if !rv.IsValid() {
		panic(fmt.Sprintf("holder: get %s from empty holder", tt))
	}
	if out, ok := rv.Interface().(T); ok {
		return out
	}
	// Qualified views and named kinds share a convertible representation.
	if rv.Type().ConvertibleTo(tt) {
		return rv.Convert(tt).Interface().(T)
	}
	panic(fmt.Sprintf("holder: cannot get %s from shape %s", tt, h.Descriptor()))
}

// CheckedGet is Get with the compatibility relation enforced first; it
// returns BadCast instead of panicking.
func CheckedGet[T any](h Holder) (T, error) {
	var zero T
	if !CanGet[T](h) {
		return zero, fmt.Errorf("get %s from shape %s: %w", reflect.TypeOf((*T)(nil)).Elem(), h.Descriptor(), ErrBadCast)
	}
	tt := reflect.TypeOf((*T)(nil)).Elem()
	if tt == reflect.TypeOf((*Holder)(nil)).Elem() {
		return Get[T](h), nil
	}
	inner := h
	if shape.Bare(h.Descriptor()).Kind() == shape.KindHolder {
		inner = h.unwrap()
		if !CanGet[T](inner) {
			return zero, fmt.Errorf("get %s from shape %s: %w", tt, inner.Descriptor(), ErrBadCast)
		}
	}
	rv := inner.value()
	if !rv.IsValid() {
		return zero, fmt.Errorf("get %s from empty holder: %w", tt, ErrBadCast)
	}
	if out, ok := rv.Interface().(T); ok {
		return out, nil
	}
	if rv.Type().ConvertibleTo(tt) {
		return rv.Convert(tt).Interface().(T), nil
	}
	return zero, fmt.Errorf("get %s from shape %s: %w", tt, inner.Descriptor(), ErrBadCast)
}

// GetPtr returns the address of the held value as a typed pointer: the
// referent for reference storage, the owned cell otherwise. Like Get it is
// unchecked and panics on a wrong T.
func GetPtr[T any](h Holder) *T {
	av := h.addrValue()
	if !av.IsValid() {
		panic("holder: address of empty holder")
	}
	return av.Interface().(*T)
}

// GetHolder unwraps one holder-of-holder level, returning h itself for
// every other shape.
func GetHolder(h Holder) Holder {
	if shape.Bare(h.Descriptor()).Kind() == shape.KindHolder {
		return h.unwrap()
	}
	return h
}
