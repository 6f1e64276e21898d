package adapt

import (
	"fmt"

	"github.com/vk/variantgo/caps"
	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// mapAdapter serves keyed and enumerable access for Go map shapes.
// Enumeration visits Pair elements; map values are not addressable, so
// lookups return copies.
type mapAdapter struct {
	key, value *shape.Descriptor
}

func mappingFor(d *shape.Descriptor) any {
	if d.Kind() != shape.KindMap || d.GoType() == nil {
		return nil
	}
	return &mapAdapter{key: d.Up(0), value: d.Up(1)}
}

func (m *mapAdapter) KeyShape() *shape.Descriptor { return m.key }

func (m *mapAdapter) ValueShape() *shape.Descriptor { return m.value }

func (m *mapAdapter) Lookup(container, key holder.Holder) (holder.Holder, error) {
	rv, err := deref(container)
	if err != nil {
		return holder.Empty(), err
	}
	if rv.IsNil() {
		return holder.Empty(), nil
	}
	kv, err := valueAs(key, m.key, rv.Type().Key())
	if err != nil {
		return holder.Empty(), err
	}
	out := rv.MapIndex(kv)
	if !out.IsValid() {
		return holder.Empty(), nil
	}
	return holder.TryNew(out.Interface())
}

func (m *mapAdapter) Store(container, key, value holder.Holder) error {
	rv, err := deref(container)
	if err != nil {
		return err
	}
	if rv.IsNil() {
		return fmt.Errorf("store into nil map: %w", holder.ErrUnsupported)
	}
	kv, err := valueAs(key, m.key, rv.Type().Key())
	if err != nil {
		return err
	}
	vv, err := valueAs(value, m.value, rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.SetMapIndex(kv, vv)
	return nil
}

func (m *mapAdapter) ForEach(container holder.Holder, visit func(element holder.Holder) bool) error {
	rv, err := deref(container)
	if err != nil {
		return err
	}
	iter := rv.MapRange()
	for iter.Next() {
		pair := caps.Pair{
			Key:   holder.New(iter.Key().Interface()),
			Value: holder.New(iter.Value().Interface()),
		}
		if !visit(holder.New(pair)) {
			return nil
		}
	}
	return nil
}
