package adapt

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/caps"
	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// aggregateFor builds the aggregate capability for a Go struct shape:
// exported fields become accessible members, embedded structs become
// declared bases, and the pointer method set becomes callable members.
func aggregateFor(d *shape.Descriptor) any {
	t := d.GoType()
	if d.Kind() != shape.KindObject || t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	b := caps.NewObject(d.Name())
	b.AddConstructor(zeroConstructor{d: d})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			b.AddBase(shape.OfType(f.Type), fieldBaseView(i))
			continue
		}
		b.AddAccessible(f.Name, &fieldAccessor{index: i, shape: shape.OfType(f.Type)})
	}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		b.AddCallable(m.Name, callableFor(m.Func, 1))
	}
	return b.Object()
}

// zeroConstructor default-constructs an instance of the shape.
type zeroConstructor struct {
	d *shape.Descriptor
}

func (c zeroConstructor) Arity() int { return 0 }

func (c zeroConstructor) Parameter(int) *shape.Descriptor { return nil }

func (c zeroConstructor) Result() *shape.Descriptor { return c.d }

func (c zeroConstructor) IsVariadic() bool { return false }

func (c zeroConstructor) DefaultArgCount() int { return 0 }

func (c zeroConstructor) Rank(args []holder.Holder) caps.Rank {
	if len(args) == 0 {
		return caps.RankExact
	}
	return caps.RankNone
}

func (c zeroConstructor) Invoke(_ holder.Holder, args ...holder.Holder) (holder.Holder, error) {
	if len(args) != 0 {
		return holder.Empty(), fmt.Errorf("constructor of %s takes no arguments: %w", c.d, holder.ErrBadCast)
	}
	return holder.FromAddress(c.d, holder.Address{}, holder.CopyAuto)
}

// fieldBaseView carves a base reference out of an instance, threading the
// dynamic shape through so the view can still be cast back down.
func fieldBaseView(index int) caps.BaseView {
	return func(instance holder.Holder) (holder.Holder, error) {
		rv, err := deref(instance)
		if err != nil {
			return holder.Empty(), err
		}
		f := rv.Field(index)
		dyn, root := instance.Dynamic()
		if dyn == nil {
			dyn = shape.Bare(instance.Descriptor())
			root = instance.Address()
		}
		return holder.RefShaped(f.Addr().Interface(), shape.OfType(f.Type()), dyn, root), nil
	}
}

// fieldAccessor reads and writes one exported struct field through the
// instance storage.
type fieldAccessor struct {
	index int
	shape *shape.Descriptor
}

func (a *fieldAccessor) ValueShape() *shape.Descriptor { return a.shape }

func (a *fieldAccessor) ReadOnly() bool { return false }

func (a *fieldAccessor) Get(instance holder.Holder) (holder.Holder, error) {
	rv, err := deref(instance)
	if err != nil {
		return holder.Empty(), err
	}
	return holder.Ref(rv.Field(a.index).Addr().Interface()), nil
}

func (a *fieldAccessor) Set(instance, value holder.Holder) error {
	if d := instance.Descriptor().Referent(); d.IsConst() {
		return fmt.Errorf("set field through const %s: %w", d, holder.ErrUnsupported)
	}
	rv, err := deref(instance)
	if err != nil {
		return err
	}
	f := rv.Field(a.index)
	v, err := valueAs(value, a.shape, f.Type())
	if err != nil {
		return err
	}
	f.Set(v)
	return nil
}
