package shape

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

// Descriptor is the interned, process-wide record for one shape. It is
// immutable after publication and never destroyed before process end, so
// pointer identity between descriptors is structural equality of the shapes
// they describe.
type Descriptor struct {
	// id is unique per descriptor and stable for the process lifetime.
	// Compound interning keys are built from component ids.
	id    uint64
	kind  Kind
	quals Qualifiers
	name  string
	size  uintptr
	align int
	// goType is the backing reflect type, nil for synthetic shapes.
	goType reflect.Type
	// ups are the up-descriptors one level inward: pointee for
	// indirections, key then value for maps, parameters then result for
	// callables, element for arrays and slices.
	ups []*Descriptor
	// base is the unqualified form of a qualified view, nil otherwise.
	base *Descriptor

	// caps is the attached capability table, published at most once.
	caps atomic.Pointer[CapabilityTable]
	// lazy caches per-kind provider resolutions.
	lazy [numCapKinds]lazySlot
}

type lazySlot struct {
	once sync.Once
	impl any
}

// Kind returns the structural category of the shape.
func (d *Descriptor) Kind() Kind { return d.kind }

// Qualifiers returns the view qualifiers of the shape.
func (d *Descriptor) Qualifiers() Qualifiers { return d.quals }

// IsConst reports whether the shape is an immutable view.
func (d *Descriptor) IsConst() bool { return d.quals&QualConst != 0 }

// IsVolatile reports whether the shape is a volatile view.
func (d *Descriptor) IsVolatile() bool { return d.quals&QualVolatile != 0 }

// IsPointer reports whether the shape is a pointer indirection.
func (d *Descriptor) IsPointer() bool { return d.kind == KindPointer }

// IsReference reports whether the shape is a non-owning reference.
func (d *Descriptor) IsReference() bool { return d.kind == KindReference }

// Size returns the storage size of values of the shape in bytes, 0 when the
// shape has no Go backing.
func (d *Descriptor) Size() uintptr { return d.size }

// Align returns the storage alignment of values of the shape, 0 when the
// shape has no Go backing.
func (d *Descriptor) Align() int { return d.align }

// GoType returns the backing reflect type, or nil for synthetic shapes.
func (d *Descriptor) GoType() reflect.Type { return d.goType }

// Name returns the display name of the shape.
func (d *Descriptor) Name() string { return d.name }

func (d *Descriptor) String() string { return d.name }

// NumUp returns the number of up-descriptors.
func (d *Descriptor) NumUp() int { return len(d.ups) }

// Up returns the i-th up-descriptor: index 0 is the pointee for
// indirections and the key for maps, index 1 the map value; for callables
// indices 0..n-1 are parameters and the final index is the result.
func (d *Descriptor) Up(i int) *Descriptor { return d.ups[i] }

// Unqualified returns the shape with all qualifiers stripped; the receiver
// itself when it carries none.
func (d *Descriptor) Unqualified() *Descriptor {
	if d.base != nil {
		return d.base
	}
	return d
}

// Referent returns the referred-to shape of a reference, or the receiver
// for every other kind.
func (d *Descriptor) Referent() *Descriptor {
	if d.kind == KindReference {
		return d.ups[0]
	}
	return d
}

// Bare strips one reference level and all qualifiers from d. It is the
// shape the compatibility and cast rules compare on.
func Bare(d *Descriptor) *Descriptor {
	return d.Referent().Unqualified()
}

// Equal reports whether two descriptors describe the same shape. Interning
// makes this pointer identity.
func (d *Descriptor) Equal(other *Descriptor) bool { return d == other }

// Capability returns the shape's implementation of the given capability
// kind, or nil when absent. A nil result is not an error; the caller
// decides whether the missing protocol matters.
func (d *Descriptor) Capability(kind CapKind) any {
	if t := d.caps.Load(); t != nil {
		if impl := t.Get(kind); impl != nil {
			return impl
		}
	}
	slot := &d.lazy[kind]
	slot.once.Do(func() {
		slot.impl = resolveProvider(d, kind)
	})
	if slot.impl != nil {
		return slot.impl
	}
	// Qualified views share the capabilities of their unqualified form.
	if d.base != nil {
		return d.base.Capability(kind)
	}
	return nil
}

// AttachCapabilities publishes the capability table of a descriptor created
// with Declare. This is the second phase of compound-shape construction and
// may run at most once per descriptor.
func (d *Descriptor) AttachCapabilities(t *CapabilityTable) {
	if t == nil {
		panic("shape: cannot attach a nil capability table")
	}
	if !d.caps.CompareAndSwap(nil, t) {
		panic(fmt.Sprintf("shape: capability table for %q already attached", d.name))
	}
	slog.Debug("Attached capability table.", "shape", d.name)
}
