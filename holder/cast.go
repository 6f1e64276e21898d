package holder

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/shape"
)

// BaseLister is implemented by aggregate capabilities that declare base
// shapes. The cast path walks the declared base graph most-derived-first.
type BaseLister interface {
	Bases() []*shape.Descriptor
}

// BaseCaster is a BaseLister that can additionally produce a view of an
// instance as one of its direct bases.
type BaseCaster interface {
	BaseLister
	// CastToBase returns a reference holder viewing instance as the base
	// at index i of Bases.
	CastToBase(instance Holder, i int) (Holder, error)
}

// Cast converts the held value to shape to. It is weaker than the get
// protocol but value-preserving: it applies registered representation
// conversions between unrelated shapes and walks declared aggregate base
// graphs for polymorphic up- and downcasts. A reference to the same
// underlying shape casts as a no-op. The returned holder's shape need not
// match to's qualifiers or indirection exactly, but always satisfies the
// get protocol for to.
func (h Holder) Cast(to *shape.Descriptor) (Holder, error) {
	if h.IsEmpty() {
		return Empty(), fmt.Errorf("cast from empty holder: %w", ErrBadCast)
	}
	from := h.Descriptor()
	if shape.Bare(to).Kind() == shape.KindHolder {
		return NewHolder(h), nil
	}
	if shape.Bare(from).Kind() == shape.KindHolder {
		return h.unwrap().Cast(to)
	}

	bf, bt := shape.Bare(from), shape.Bare(to)
	if bf == bt {
		if h.CanGetShape(to) {
			return h, nil
		}
		// Same underlying shape under different qualifiers: rebadge the
		// same storage.
		return h.retypeBare(bt), nil
	}

	if fn := lookupConversion(bf, bt); fn != nil {
		return fn(h, bt)
	}

	if out, ok, err := h.castAggregate(bf, bt); ok {
		return out, err
	}
	if out, ok, err := h.castPointer(bf, bt); ok {
		return out, err
	}

	return Empty(), fmt.Errorf("cast %s to %s: %w", from, to, ErrBadCast)
}

// CastTo is Cast with the target shape taken from the Go type T.
func CastTo[T any](h Holder) (Holder, error) {
	return h.Cast(shape.For[T]())
}

// CanCast probes whether Cast would succeed, without committing to the
// result. It is nearly as expensive as the cast itself; prefer
// CastSilently plus an emptiness check when the result is wanted anyway.
func (h Holder) CanCast(to *shape.Descriptor) bool {
	_, err := h.Cast(to)
	return err == nil
}

// CanCastTo is CanCast with the target shape taken from the Go type T.
func CanCastTo[T any](h Holder) bool {
	return h.CanCast(shape.For[T]())
}

// CastSilently is Cast returning an empty holder instead of an error.
// Callers on this path must check IsEmpty before use.
func (h Holder) CastSilently(to *shape.Descriptor) Holder {
	out, err := h.Cast(to)
	if err != nil {
		return Empty()
	}
	return out
}

// castAggregate handles polymorphic casts across declared base graphs.
// The middle return reports whether the shape pair is an aggregate cast at
// all; only then is the error meaningful.
func (h Holder) castAggregate(bf, bt *shape.Descriptor) (Holder, bool, error) {
	if bf.Kind() != shape.KindObject || bt.Kind() != shape.KindObject {
		return Empty(), false, nil
	}

	if hasBasePath(bf, bt) {
		out, err := castUp(h, bf, bt)
		return out, true, err
	}

	if hasBasePath(bt, bf) {
		// Downcast: valid only when the target sits in the dynamic chain
		// of the complete object this holder was carved from.
		if h.dyn == nil || !hasBasePath(h.dyn, bt) {
			return Empty(), true, fmt.Errorf("downcast %s to %s outside the dynamic chain: %w", bf, bt, ErrBadCast)
		}
		if h.dyn == bt {
			return h.rootHolder(), true, nil
		}
		out, err := castUp(h.rootHolder(), h.dyn, bt)
		return out, true, err
	}

	return Empty(), false, nil
}

// castPointer handles pointer-to-pointer casts across declared base
// graphs. Unrelated pointee shapes do not cast; the pointer rows of the
// get protocol already allow raw reinterpretation for callers who want it.
func (h Holder) castPointer(bf, bt *shape.Descriptor) (Holder, bool, error) {
	if bf.Kind() != shape.KindPointer || bt.Kind() != shape.KindPointer {
		return Empty(), false, nil
	}
	pf, pt := shape.Bare(bf.Up(0)), shape.Bare(bt.Up(0))
	if pf.Kind() != shape.KindObject || pt.Kind() != shape.KindObject {
		return Empty(), false, nil
	}
	if !hasBasePath(pf, pt) && !hasBasePath(pt, pf) {
		return Empty(), false, nil
	}

	pv := h.value()
	if !pv.IsValid() || pv.Kind() != reflect.Pointer || pv.IsNil() {
		return Empty(), true, fmt.Errorf("pointer cast from nil %s: %w", bf, ErrBadCast)
	}
	pointee := makeRef(pv, pf, pf, pv)
	view, ok, err := pointee.castAggregate(pf, pt)
	if !ok || err != nil {
		return Empty(), true, err
	}

	// Rewrap the base view's address as a pointer value.
	av := view.addrValue()
	p := reflect.New(av.Type())
	p.Elem().Set(av)
	out := Holder{desc: bt, kind: storageInline, cell: &cell{ptr: p}}
	out.dyn = view.dyn
	out.dynRoot = view.dynRoot
	return out, true, nil
}

// castUp walks the declared base graph from shape `from` toward `to`,
// most-derived-first, materializing one base view per step.
func castUp(h Holder, from, to *shape.Descriptor) (Holder, error) {
	if from == to {
		return h, nil
	}
	caster, ok := from.Capability(shape.CapAggregate).(BaseCaster)
	if !ok {
		return Empty(), fmt.Errorf("upcast %s to %s: %w", from, to, ErrBadCast)
	}
	for i, b := range caster.Bases() {
		if hasBasePath(b, to) {
			view, err := caster.CastToBase(h, i)
			if err != nil {
				return Empty(), err
			}
			return castUp(view, b, to)
		}
	}
	return Empty(), fmt.Errorf("upcast %s to %s: %w", from, to, ErrBadCast)
}

// hasBasePath reports whether `to` is reachable from `from` through
// declared bases.
func hasBasePath(from, to *shape.Descriptor) bool {
	if from == to {
		return true
	}
	lister, ok := from.Capability(shape.CapAggregate).(BaseLister)
	if !ok {
		return false
	}
	for _, b := range lister.Bases() {
		if hasBasePath(b, to) {
			return true
		}
	}
	return false
}
