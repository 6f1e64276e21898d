package holder

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/shape"
)

func init() {
	shape.BindHolderType(reflect.TypeOf((*Holder)(nil)).Elem())
}

// storageKind discriminates the active storage representation of a holder.
// Exactly one representation is active at a time; they are never mixed.
type storageKind uint8

const (
	storageEmpty storageKind = iota
	storageInline
	storageShared
	storageRef
)

// cell is an owned heap slot for one value.
type cell struct {
	// ptr is a non-nil pointer reflect.Value addressing the stored value.
	ptr reflect.Value
}

func newCell(v reflect.Value) *cell {
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return &cell{ptr: p}
}

// Holder is the universal value holder. The zero value is an empty holder
// of void shape. Holders have value semantics: plain assignment copies the
// holder in O(1), sharing the underlying cell for shared storage.
type Holder struct {
	desc *shape.Descriptor
	kind storageKind

	// cell backs inline and shared storage. Inline cells are private to
	// the holder: Assign replaces them instead of writing through, so
	// earlier copies of the holder keep their value. Shared cells are
	// written in place, so every holder sharing the cell observes
	// mutation.
	cell *cell

	// ref is the non-owning referent pointer for reference storage.
	ref reflect.Value

	// dyn and dynRoot record the dynamic (most-derived) shape and address
	// of the complete object a reference or base view was carved from.
	// They drive downcasting; zero values mean unknown.
	dyn     *shape.Descriptor
	dynRoot reflect.Value
}

// Empty returns a holder of void shape with no storage.
func Empty() Holder { return Holder{} }

// New constructs a holder from a concrete value, copying it into owned
// storage. It panics for values no storage representation exists for; use
// TryNew to observe the failure as an error. A nil value yields an empty
// holder, and a Holder value is returned as-is.
func New(v any) Holder {
	h, err := TryNew(v)
	if err != nil {
		panic(err)
	}
	return h
}

// TryNew is New returning NotConstructible instead of panicking.
func TryNew(v any) (Holder, error) {
	if v == nil {
		return Empty(), nil
	}
	if h, ok := v.(Holder); ok {
		return h, nil
	}
	return holderForValue(shape.Of(v), reflect.ValueOf(v))
}

// NewOf constructs a holder of the explicit shape T, copying v into owned
// storage. Unlike New, T survives erasure exactly: NewOf[Holder] produces
// the self-referential holder-of-holder shape.
func NewOf[T any](v T) (Holder, error) {
	if reflect.TypeOf((*T)(nil)).Elem() == reflect.TypeOf((*Holder)(nil)).Elem() {
		return NewHolder(any(v).(Holder)), nil
	}
	return holderForValue(shape.For[T](), reflect.ValueOf(&v).Elem())
}

// NewHolder wraps h itself inside a new holder of the self-referential
// holder shape. Get and cast unwrap exactly one such level.
func NewHolder(h Holder) Holder {
	return Holder{
		desc: shape.HolderShape(),
		kind: storageShared,
		cell: newCell(reflect.ValueOf(h)),
	}
}

func holderForValue(d *shape.Descriptor, rv reflect.Value) (Holder, error) {
	class, err := storageClass(rv.Type())
	if err != nil {
		return Empty(), err
	}
	h := Holder{
		desc: d,
		kind: class,
		cell: newCell(rv),
	}
	h.dyn = shape.Bare(d)
	h.dynRoot = h.cell.ptr
	return h, nil
}

// storageClass selects the storage representation for a Go type: inline
// for small trivially relocatable values, shared for composites. The exact
// split is an implementation detail; only the copy contract is observable.
func storageClass(t reflect.Type) (storageKind, error) {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.Pointer, reflect.Func, reflect.UnsafePointer:
		return storageInline, nil
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Interface:
		return storageShared, nil
	default:
		return storageEmpty, fmt.Errorf("%s values have no storage representation: %w", t, ErrNotConstructible)
	}
}

// Ref returns a non-owning reference holder over the location ptr points
// to. The holder's shape is a reference indirection over the pointee
// shape; no allocation or copy takes place. Ref panics when ptr is not a
// non-nil pointer.
func Ref(ptr any) Holder {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic("holder: Ref requires a non-nil pointer")
	}
	elem := shape.OfType(rv.Type().Elem())
	return makeRef(rv, elem, elem, rv)
}

// RefOf is the typed form of Ref.
func RefOf[T any](p *T) Holder {
	return Ref(p)
}

// RefShaped returns a reference holder over ptr whose referent is
// described by elem, recording the dynamic shape and address of the
// complete object the reference was carved from. Capability adapters use
// it to build base views that can be cast back down later.
func RefShaped(ptr any, elem, dyn *shape.Descriptor, root Address) Holder {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic("holder: RefShaped requires a non-nil pointer")
	}
	return makeRef(rv, elem, dyn, root.ptr)
}

func makeRef(ptr reflect.Value, elem, dyn *shape.Descriptor, root reflect.Value) Holder {
	return Holder{
		desc:    shape.ReferenceTo(elem),
		kind:    storageRef,
		ref:     ptr,
		dyn:     dyn,
		dynRoot: root,
	}
}

// CopyStrategy selects how FromAddress transfers the source value into the
// new holder's storage.
type CopyStrategy uint8

const (
	// CopyAuto copies when the shape is copyable and moves otherwise.
	CopyAuto CopyStrategy = iota
	// CopyValue always copies.
	CopyValue
	// CopyMove always moves. Go values have no destructive move, so this
	// behaves as a copy; the strategy exists for callers spelling their
	// intent.
	CopyMove
)

// FromAddress constructs a holder of shape d initialized from the value at
// addr. A zero addr default-constructs the value. The source must hold a
// value of exactly the shape's backing type; shapes with no Go backing are
// NotConstructible.
func FromAddress(d *shape.Descriptor, addr Address, strategy CopyStrategy) (Holder, error) {
	_ = strategy
	t := d.GoType()
	if t == nil {
		return Empty(), fmt.Errorf("shape %s has no Go backing: %w", d, ErrNotConstructible)
	}
	class, err := storageClass(t)
	if err != nil {
		return Empty(), err
	}
	p := reflect.New(t)
	if !addr.IsZero() {
		src := addr.ptr
		if src.Type().Elem() != t {
			return Empty(), fmt.Errorf("source address holds %s, shape needs %s: %w",
				src.Type().Elem(), t, ErrNotConstructible)
		}
		p.Elem().Set(src.Elem())
	}
	h := Holder{desc: d, kind: class, cell: &cell{ptr: p}}
	h.dyn = shape.Bare(d)
	h.dynRoot = p
	return h, nil
}

// Retype returns a holder sharing h's storage under descriptor d. No
// validation happens; the caller asserts the data really is of shape d.
func Retype(d *shape.Descriptor, h Holder) Holder {
	h.desc = d
	return h
}

// retypeBare rebadges the holder with bare shape d, preserving the
// reference level the storage dictates.
func (h Holder) retypeBare(d *shape.Descriptor) Holder {
	if h.kind == storageRef {
		return Retype(shape.ReferenceTo(d), h)
	}
	return Retype(d, h)
}

// TakeFrom adopts the heap instance ptr points to as the owned value of a
// new holder of shape d. The instance must not be mutated elsewhere
// afterwards; the holder is a value, not a pointer.
func TakeFrom(d *shape.Descriptor, ptr any) Holder {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic("holder: TakeFrom requires a non-nil pointer")
	}
	if t := d.GoType(); t != nil && rv.Type().Elem() != t {
		panic(fmt.Sprintf("holder: TakeFrom pointer holds %s, shape needs %s", rv.Type().Elem(), t))
	}
	h := Holder{desc: d, kind: storageShared, cell: &cell{ptr: rv}}
	h.dyn = shape.Bare(d)
	h.dynRoot = rv
	return h
}

// TakeFromHolder adopts the instance behind the pointer held by h,
// producing a value holder over the pointee shape. It fails when h does
// not hold a pointer.
func TakeFromHolder(h Holder) (Holder, error) {
	d := shape.Bare(h.Descriptor())
	if d.Kind() != shape.KindPointer {
		return Empty(), fmt.Errorf("take from %s holder, pointer required: %w", d, ErrBadCast)
	}
	pv := h.value()
	if !pv.IsValid() || pv.IsNil() {
		return Empty(), fmt.Errorf("take from nil pointer: %w", ErrNotConstructible)
	}
	return TakeFrom(d.Up(0), pv.Interface()), nil
}

// Descriptor returns the holder's shape descriptor, never nil.
func (h Holder) Descriptor() *shape.Descriptor {
	if h.desc == nil {
		return shape.Void()
	}
	return h.desc
}

// IsEmpty reports whether the holder holds the void shape. Empty holders
// cannot be read or cast.
func (h Holder) IsEmpty() bool {
	return h.Descriptor().Kind() == shape.KindVoid
}

// KindOf is a shortcut for h.Descriptor().Kind().
func KindOf(h Holder) shape.Kind {
	return h.Descriptor().Kind()
}

// Dynamic returns the recorded most-derived shape and the address of the
// complete object h was carved from. A nil shape means no dynamic
// information was recorded. Capability adapters thread this through base
// views so a base reference can still be cast back down.
func (h Holder) Dynamic() (*shape.Descriptor, Address) {
	return h.dyn, Address{ptr: h.dynRoot}
}

// value returns the stored or referred-to value.
func (h Holder) value() reflect.Value {
	switch h.kind {
	case storageInline, storageShared:
		return h.cell.ptr.Elem()
	case storageRef:
		return h.ref.Elem()
	}
	return reflect.Value{}
}

// addrValue returns a pointer reflect.Value addressing the active storage:
// the referent for references, the owned cell otherwise.
func (h Holder) addrValue() reflect.Value {
	switch h.kind {
	case storageInline, storageShared:
		return h.cell.ptr
	case storageRef:
		return h.ref
	}
	return reflect.Value{}
}

// unwrap returns the holder stored inside a holder-of-holder.
func (h Holder) unwrap() Holder {
	return h.value().Interface().(Holder)
}

// rootHolder rebuilds the reference to the complete object recorded for
// downcasting.
func (h Holder) rootHolder() Holder {
	return makeRef(h.dynRoot, h.dyn, h.dyn, h.dynRoot)
}

// Clone returns an independent deep copy of the held value, regardless of
// the receiver's storage representation. Cloning a reference clones the
// referred-to value into a fresh owned holder.
func (h Holder) Clone() Holder {
	if h.IsEmpty() {
		return Empty()
	}
	src := h.value()
	p := reflect.New(src.Type())
	deepCopy(p.Elem(), src)

	d := h.Descriptor().Referent()
	class, err := storageClass(src.Type())
	if err != nil {
		// The value made it into storage once, so it has a class.
		panic(err)
	}
	out := Holder{desc: d, kind: class, cell: &cell{ptr: p}}
	out.dyn = shape.Bare(d)
	out.dynRoot = p
	return out
}

// deepCopy duplicates src into dst, severing sharing through slices and
// maps at every level. Pointers and funcs copy as-is, matching one-level
// value-copy semantics for indirections.
func deepCopy(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			deepCopy(out.Index(i), src.Index(i))
		}
		dst.Set(out)
	case reflect.Map:
		if src.IsNil() {
			return
		}
		out := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			ev := reflect.New(src.Type().Elem()).Elem()
			deepCopy(ev, iter.Value())
			out.SetMapIndex(iter.Key(), ev)
		}
		dst.Set(out)
	case reflect.Array:
		for i := 0; i < src.Len(); i++ {
			deepCopy(dst.Index(i), src.Index(i))
		}
	case reflect.Struct:
		// Copy the whole value first so unexported fields survive, then
		// re-copy exported composite fields deeply.
		dst.Set(src)
		for i := 0; i < src.NumField(); i++ {
			if f := dst.Field(i); f.CanSet() {
				deepCopy(f, src.Field(i))
			}
		}
	default:
		dst.Set(src)
	}
}

// Swap exchanges the contents of two holders.
func Swap(a, b *Holder) {
	*a, *b = *b, *a
}
