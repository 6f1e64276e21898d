package adapt

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// pointerAdapter unwraps Go pointer shapes into references over the
// pointee. It doubles as the accessible capability of a pointer shape:
// a pointer is an unnamed slot holding its pointee.
type pointerAdapter struct {
	elem *shape.Descriptor
}

func pointerFor(d *shape.Descriptor) any {
	t := d.GoType()
	if d.Kind() != shape.KindPointer || t == nil || t.Kind() != reflect.Pointer {
		return nil
	}
	return &pointerAdapter{elem: d.Up(0)}
}

func (p *pointerAdapter) PointeeShape() *shape.Descriptor { return p.elem }

func (p *pointerAdapter) Pointee(h holder.Holder) (holder.Holder, error) {
	pv := load(h)
	if !pv.IsValid() || pv.IsNil() {
		return holder.Empty(), fmt.Errorf("unwrap nil pointer: %w", holder.ErrBadCast)
	}
	return holder.Ref(pv.Interface()), nil
}

func (p *pointerAdapter) ValueShape() *shape.Descriptor { return p.elem }

func (p *pointerAdapter) ReadOnly() bool { return false }

func (p *pointerAdapter) Get(instance holder.Holder) (holder.Holder, error) {
	return p.Pointee(instance)
}

func (p *pointerAdapter) Set(instance, value holder.Holder) error {
	pv := load(instance)
	if !pv.IsValid() || pv.IsNil() {
		return fmt.Errorf("write through nil pointer: %w", holder.ErrBadCast)
	}
	v, err := valueAs(value, p.elem, pv.Type().Elem())
	if err != nil {
		return err
	}
	pv.Elem().Set(v)
	return nil
}
