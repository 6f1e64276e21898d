package caps

import (
	"fmt"
	"log/slog"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// Object is the concrete aggregate capability: a constructor overload set,
// an ordered named-member table, and a declared base list. It also serves
// the cast path as a holder.BaseCaster.
type Object struct {
	name      string
	ctors     OverloadSet
	members   []Member
	index     map[string]int
	bases     []*shape.Descriptor
	baseViews []BaseView
}

// BaseView materializes a reference holder viewing an instance as one
// declared base.
type BaseView func(instance holder.Holder) (holder.Holder, error)

// Constructors returns the constructor overload set.
func (o *Object) Constructors() OverloadSet { return o.ctors }

// Members lists the directly declared members in declaration order.
func (o *Object) Members() []Member { return o.members }

// Member resolves name on this aggregate or, failing that, on its bases in
// declaration order, depth first. The nearest declaration shadows deeper
// ones.
func (o *Object) Member(name string) (Member, bool) {
	if i, ok := o.index[name]; ok {
		return o.members[i], true
	}
	for _, b := range o.bases {
		if agg, ok := b.Capability(shape.CapAggregate).(Aggregate); ok {
			if m, ok := agg.Member(name); ok {
				return m, true
			}
		}
	}
	return Member{}, false
}

// Bases lists the declared direct base shapes.
func (o *Object) Bases() []*shape.Descriptor { return o.bases }

// CastToBase returns a reference holder viewing instance as the base at
// index i.
func (o *Object) CastToBase(instance holder.Holder, i int) (holder.Holder, error) {
	if o.baseViews[i] == nil {
		return holder.Empty(), fmt.Errorf("aggregate %s declares base %s without a view: %w",
			o.name, o.bases[i], holder.ErrBadCast)
	}
	return o.baseViews[i](instance)
}

// ObjectBuilder assembles an Object. It is handed to the one-shot
// registration callback of DeclareObject and must not be retained.
type ObjectBuilder struct {
	obj *Object
}

// NewObject starts building the aggregate capability for name.
func NewObject(name string) *ObjectBuilder {
	return &ObjectBuilder{obj: &Object{
		name:  name,
		index: map[string]int{},
	}}
}

// AddConstructor appends a constructor overload.
func (b *ObjectBuilder) AddConstructor(c Callable) *ObjectBuilder {
	b.obj.ctors = append(b.obj.ctors, c)
	return b
}

// AddAccessible declares a named accessible member. Duplicate names panic.
func (b *ObjectBuilder) AddAccessible(name string, a Accessible) *ObjectBuilder {
	b.declare(name)
	b.obj.members = append(b.obj.members, Member{Name: name, Accessible: a})
	return b
}

// AddCallable appends an overload to the named callable member, declaring
// the member on first use. A name already taken by an accessible panics.
func (b *ObjectBuilder) AddCallable(name string, c Callable) *ObjectBuilder {
	if i, ok := b.obj.index[name]; ok {
		m := &b.obj.members[i]
		if !m.IsCallable() {
			panic(fmt.Sprintf("caps: member %q of %s is not callable", name, b.obj.name))
		}
		m.Callables = append(m.Callables, c)
		return b
	}
	b.declare(name)
	b.obj.members = append(b.obj.members, Member{Name: name, Callables: OverloadSet{c}})
	return b
}

// AddBase declares a direct base shape together with the view that carves
// a base reference out of an instance.
func (b *ObjectBuilder) AddBase(d *shape.Descriptor, view BaseView) *ObjectBuilder {
	b.obj.bases = append(b.obj.bases, d)
	b.obj.baseViews = append(b.obj.baseViews, view)
	return b
}

func (b *ObjectBuilder) declare(name string) {
	if _, exists := b.obj.index[name]; exists {
		panic(fmt.Sprintf("caps: member %q of %s already declared", name, b.obj.name))
	}
	b.obj.index[name] = len(b.obj.members)
}

// Object finalizes and returns the built aggregate.
func (b *ObjectBuilder) Object() *Object {
	return b.obj
}

// DeclareObject interns the named aggregate shape and, on first
// declaration, runs build exactly once to populate the member table. The
// descriptor handed to build is already published, so self-referential
// members close their cycle naturally. Concurrent and repeated
// declarations of the same name collapse to the first.
func DeclareObject(name string, build func(d *shape.Descriptor, b *ObjectBuilder)) *shape.Descriptor {
	return shape.Declare(name, func(d *shape.Descriptor) {
		b := NewObject(name)
		if build != nil {
			build(d, b)
		}
		d.AttachCapabilities(shape.NewCapabilityTable().Set(shape.CapAggregate, b.Object()))
		slog.Debug("Declared aggregate shape.", "name", name, "members", len(b.obj.members), "bases", len(b.obj.bases))
	})
}
