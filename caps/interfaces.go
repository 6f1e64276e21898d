package caps

import (
	"io"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// Aggregate describes a composite shape with named members and declared
// bases.
type Aggregate interface {
	// Constructors returns the constructor overload set, possibly empty.
	Constructors() OverloadSet
	// Member resolves a named member, walking declared bases
	// most-derived-first; the nearest declaration wins on shadowing.
	Member(name string) (Member, bool)
	// Members lists the members declared directly on this aggregate, in
	// declaration order.
	Members() []Member
	// Bases lists the declared direct base shapes, in declaration order.
	Bases() []*shape.Descriptor
}

// Member is one named entry of an aggregate: an overloaded callable or an
// accessible field, never both.
type Member struct {
	Name       string
	Callables  OverloadSet
	Accessible Accessible
}

// IsCallable reports whether the member is an overloaded callable.
func (m Member) IsCallable() bool {
	return len(m.Callables) > 0
}

// Callable is one invocable entity: a free function, a bound method, or a
// constructor.
type Callable interface {
	// Arity returns the number of declared parameters, the variadic tail
	// counting as one.
	Arity() int
	// Parameter returns the shape of parameter i.
	Parameter(i int) *shape.Descriptor
	// Result returns the result shape, shape.Void() for none.
	Result() *shape.Descriptor
	IsVariadic() bool
	// DefaultArgCount returns how many trailing parameters may be
	// omitted.
	DefaultArgCount() int
	// Rank scores how well args match the parameter list.
	Rank(args []holder.Holder) Rank
	// Invoke calls the callable. The receiver is empty for free
	// callables.
	Invoke(receiver holder.Holder, args ...holder.Holder) (holder.Holder, error)
}

// CallableShape is the capability attached to callable descriptors: it
// binds a concrete callable value to the invocation protocol.
type CallableShape interface {
	Bind(callee holder.Holder) Callable
}

// Accessible is a named readable, optionally writable, slot of an
// aggregate instance.
type Accessible interface {
	// ValueShape returns the shape of the accessed value.
	ValueShape() *shape.Descriptor
	ReadOnly() bool
	// Get returns the member value for instance, as a reference into the
	// instance storage when possible, to avoid copying.
	Get(instance holder.Holder) (holder.Holder, error)
	Set(instance, value holder.Holder) error
}

// Enumerable visits the logical elements of a container shape.
type Enumerable interface {
	// ForEach visits each element of container as a holder, stopping
	// early when visit returns false. Enumeration is lazy and restartable
	// per call; no state is retained across calls. Mapping containers
	// visit Pair elements.
	ForEach(container holder.Holder, visit func(element holder.Holder) bool) error
}

// Pair is the element visited when enumerating a mapping container.
type Pair struct {
	Key   holder.Holder
	Value holder.Holder
}

// Mapping gives keyed access to a container shape.
type Mapping interface {
	KeyShape() *shape.Descriptor
	ValueShape() *shape.Descriptor
	Lookup(container, key holder.Holder) (holder.Holder, error)
	Store(container, key, value holder.Holder) error
}

// Indexable gives integer-indexed access to a container shape.
type Indexable interface {
	Len(container holder.Holder) (int, error)
	// At returns element i, as a reference into the container storage
	// when possible.
	At(container holder.Holder, i int) (holder.Holder, error)
	SetAt(container holder.Holder, i int, value holder.Holder) error
}

// Streamable formats and scans values of a shape as text.
type Streamable interface {
	Format(w io.Writer, v holder.Holder) error
	Scan(r io.Reader, v holder.Holder) error
}

// PointerLike unwraps transparent pointer shapes.
type PointerLike interface {
	// PointeeShape returns the shape of the pointed-to value.
	PointeeShape() *shape.Descriptor
	// Pointee returns a reference holder over the pointed-to value.
	Pointee(p holder.Holder) (holder.Holder, error)
}
