package caps

import (
	"fmt"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// Capability probes. Each returns the shape's implementation of one
// protocol, or nil when the shape does not carry it; a nil probe is not an
// error.

// AggregateOf returns d's aggregate capability, nil when absent.
func AggregateOf(d *shape.Descriptor) Aggregate {
	a, _ := d.Capability(shape.CapAggregate).(Aggregate)
	return a
}

// CallableShapeOf returns d's callable capability, nil when absent.
func CallableShapeOf(d *shape.Descriptor) CallableShape {
	c, _ := d.Capability(shape.CapCallable).(CallableShape)
	return c
}

// AccessibleOf returns d's accessible capability, nil when absent.
func AccessibleOf(d *shape.Descriptor) Accessible {
	a, _ := d.Capability(shape.CapAccessible).(Accessible)
	return a
}

// EnumerableOf returns d's enumerable capability, nil when absent.
func EnumerableOf(d *shape.Descriptor) Enumerable {
	e, _ := d.Capability(shape.CapEnumerable).(Enumerable)
	return e
}

// MappingOf returns d's mapping capability, nil when absent.
func MappingOf(d *shape.Descriptor) Mapping {
	m, _ := d.Capability(shape.CapMapping).(Mapping)
	return m
}

// IndexableOf returns d's indexable capability, nil when absent.
func IndexableOf(d *shape.Descriptor) Indexable {
	i, _ := d.Capability(shape.CapIndexable).(Indexable)
	return i
}

// StreamableOf returns d's streamable capability, nil when absent.
func StreamableOf(d *shape.Descriptor) Streamable {
	s, _ := d.Capability(shape.CapStreamable).(Streamable)
	return s
}

// PointerOf returns d's pointer capability, nil when absent.
func PointerOf(d *shape.Descriptor) PointerLike {
	p, _ := d.Capability(shape.CapPointer).(PointerLike)
	return p
}

// Call invokes the callable value held by fn with the given arguments.
func Call(fn holder.Holder, args ...holder.Holder) (holder.Holder, error) {
	d := shape.Bare(fn.Descriptor())
	cs := CallableShapeOf(d)
	if cs == nil {
		return holder.Empty(), fmt.Errorf("call %s: %w", d, holder.ErrUnsupported)
	}
	return cs.Bind(fn).Invoke(holder.Empty(), args...)
}

// InvokeMember resolves the named callable member of instance's shape and
// calls it with instance as the receiver.
func InvokeMember(instance holder.Holder, name string, args ...holder.Holder) (holder.Holder, error) {
	d := shape.Bare(instance.Descriptor())
	agg := AggregateOf(d)
	if agg == nil {
		return holder.Empty(), fmt.Errorf("invoke %q on %s: %w", name, d, holder.ErrUnsupported)
	}
	m, ok := agg.Member(name)
	if !ok {
		return holder.Empty(), fmt.Errorf("shape %s has no member %q: %w", d, name, holder.ErrUnsupported)
	}
	if !m.IsCallable() {
		return holder.Empty(), fmt.Errorf("member %q of %s is not callable: %w", name, d, holder.ErrUnsupported)
	}
	return m.Callables.Invoke(instance, args...)
}

// GetMember reads the named accessible member of instance, as a reference
// when the instance storage allows it.
func GetMember(instance holder.Holder, name string) (holder.Holder, error) {
	m, err := accessibleMember(instance, name)
	if err != nil {
		return holder.Empty(), err
	}
	return m.Get(instance)
}

// SetMember writes the named accessible member of instance.
func SetMember(instance holder.Holder, name string, value holder.Holder) error {
	m, err := accessibleMember(instance, name)
	if err != nil {
		return err
	}
	return m.Set(instance, value)
}

func accessibleMember(instance holder.Holder, name string) (Accessible, error) {
	d := shape.Bare(instance.Descriptor())
	agg := AggregateOf(d)
	if agg == nil {
		return nil, fmt.Errorf("member %q on %s: %w", name, d, holder.ErrUnsupported)
	}
	m, ok := agg.Member(name)
	if !ok {
		return nil, fmt.Errorf("shape %s has no member %q: %w", d, name, holder.ErrUnsupported)
	}
	if m.Accessible == nil {
		return nil, fmt.Errorf("member %q of %s is not accessible: %w", name, d, holder.ErrUnsupported)
	}
	return m.Accessible, nil
}

// ForEach visits the elements of container through its enumerable
// capability, stopping early when visit returns false.
func ForEach(container holder.Holder, visit func(element holder.Holder) bool) error {
	d := shape.Bare(container.Descriptor())
	e := EnumerableOf(d)
	if e == nil {
		return fmt.Errorf("enumerate %s: %w", d, holder.ErrUnsupported)
	}
	return e.ForEach(container, visit)
}

// Construct invokes the best-matching constructor of the aggregate shape
// d and returns the new instance.
func Construct(d *shape.Descriptor, args ...holder.Holder) (holder.Holder, error) {
	agg := AggregateOf(shape.Bare(d))
	if agg == nil {
		return holder.Empty(), fmt.Errorf("construct %s: %w", d, holder.ErrUnsupported)
	}
	ctors := agg.Constructors()
	if len(ctors) == 0 {
		return holder.Empty(), fmt.Errorf("shape %s declares no constructors: %w", d, holder.ErrUnsupported)
	}
	return ctors.Invoke(holder.Empty(), args...)
}

// Pointee unwraps the pointer value held by p into a reference holder over
// the pointed-to value.
func Pointee(p holder.Holder) (holder.Holder, error) {
	d := shape.Bare(p.Descriptor())
	pl := PointerOf(d)
	if pl == nil {
		return holder.Empty(), fmt.Errorf("unwrap %s: %w", d, holder.ErrUnsupported)
	}
	return pl.Pointee(p)
}
