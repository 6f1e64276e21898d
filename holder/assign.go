package holder

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/shape"
)

// Assign casts other to the receiver's own shape, then copies the casted
// value into the existing storage: a reference holder mutates its referent
// in place, a shared holder writes through the shared cell, and an inline
// holder replaces its private cell. The receiver's descriptor never
// changes, and failure leaves it untouched. Assign is value-assignment
// semantics; plain `=` replaces the holder's whole identity instead.
func (h *Holder) Assign(other Holder) error {
	if h.IsEmpty() {
		return fmt.Errorf("assign to empty holder: %w", ErrBadCast)
	}
	casted, err := other.Cast(shape.Bare(h.Descriptor()))
	if err != nil {
		return err
	}
	src := casted.value()

	switch h.kind {
	case storageRef:
		return setValue(h.ref.Elem(), src)
	case storageShared:
		return setValue(h.cell.ptr.Elem(), src)
	case storageInline:
		// Replacing the cell keeps earlier copies of this holder on their
		// previous value, preserving byte-copy semantics for small values.
		p := reflect.New(h.cell.ptr.Type().Elem())
		if err := setValue(p.Elem(), src); err != nil {
			return err
		}
		h.cell = &cell{ptr: p}
		return nil
	}
	return fmt.Errorf("assign to empty holder: %w", ErrBadCast)
}

func setValue(dst, src reflect.Value) error {
	if !src.IsValid() {
		return fmt.Errorf("no value to assign: %w", ErrBadCast)
	}
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("place %s value into %s storage: %w", src.Type(), dst.Type(), ErrBadCast)
	}
	return nil
}
