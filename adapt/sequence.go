package adapt

import (
	"fmt"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// sequenceAdapter serves indexable and enumerable access for slice and
// array shapes backed by Go types. Elements are handed out as references
// into the container storage.
type sequenceAdapter struct{}

func indexableFor(d *shape.Descriptor) any {
	if t := d.GoType(); t == nil {
		return nil
	}
	switch d.Kind() {
	case shape.KindSlice, shape.KindArray:
		return sequenceAdapter{}
	}
	return nil
}

func (sequenceAdapter) Len(c holder.Holder) (int, error) {
	rv, err := deref(c)
	if err != nil {
		return 0, err
	}
	return rv.Len(), nil
}

func (sequenceAdapter) At(c holder.Holder, i int) (holder.Holder, error) {
	rv, err := deref(c)
	if err != nil {
		return holder.Empty(), err
	}
	if i < 0 || i >= rv.Len() {
		return holder.Empty(), fmt.Errorf("index %d out of range for length %d: %w", i, rv.Len(), holder.ErrBadCast)
	}
	ev := rv.Index(i)
	if ev.CanAddr() {
		return holder.Ref(ev.Addr().Interface()), nil
	}
	return holder.TryNew(ev.Interface())
}

func (sequenceAdapter) SetAt(c holder.Holder, i int, value holder.Holder) error {
	rv, err := deref(c)
	if err != nil {
		return err
	}
	if i < 0 || i >= rv.Len() {
		return fmt.Errorf("index %d out of range for length %d: %w", i, rv.Len(), holder.ErrBadCast)
	}
	ev := rv.Index(i)
	v, err := valueAs(value, shape.OfType(ev.Type()), ev.Type())
	if err != nil {
		return err
	}
	ev.Set(v)
	return nil
}

func (s sequenceAdapter) ForEach(c holder.Holder, visit func(element holder.Holder) bool) error {
	rv, err := deref(c)
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if !visit(holder.Ref(rv.Index(i).Addr().Interface())) {
			return nil
		}
	}
	return nil
}
