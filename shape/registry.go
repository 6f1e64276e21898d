package shape

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	nextID atomic.Uint64

	// goDescriptors interns descriptors for reflect-backed shapes.
	goDescriptors sync.Map // reflect.Type -> *Descriptor

	// synthetics interns qualified views, synthetic compounds, and declared
	// aggregates by their recursive signature.
	synthetics sync.Map // string -> *Descriptor

	// buildMu serializes descriptor construction so a partially built
	// descriptor never escapes. Lookups on the maps above stay lock-free.
	buildMu sync.Mutex

	// building tracks reflect types under construction so recursive shapes
	// resolve to their own skeleton instead of recursing forever.
	building = map[reflect.Type]*Descriptor{}

	// holderType is the Go type of the universal value holder, bound once
	// by the holder package so Of maps it to the self-referential shape.
	holderType atomic.Value // reflect.Type

	ptrSize = reflect.TypeOf(uintptr(0)).Size()

	voidDesc   = newDescriptor(KindVoid, 0, "void", nil, nil)
	holderDesc = newDescriptor(KindHolder, 0, "holder", nil, nil)

	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

func newDescriptor(kind Kind, quals Qualifiers, name string, goType reflect.Type, ups []*Descriptor) *Descriptor {
	d := &Descriptor{
		id:     nextID.Add(1),
		kind:   kind,
		quals:  quals,
		name:   name,
		goType: goType,
		ups:    ups,
	}
	if goType != nil {
		d.size = goType.Size()
		d.align = goType.Align()
	}
	return d
}

// Void returns the descriptor of the empty shape held by a default holder.
func Void() *Descriptor { return voidDesc }

// HolderShape returns the self-referential shape of a holder stored inside
// another holder.
func HolderShape() *Descriptor { return holderDesc }

// BindHolderType associates the universal holder's Go type with the
// self-referential holder shape. Called once from the holder package's
// initialization; not for general use.
func BindHolderType(t reflect.Type) { holderType.Store(t) }

// Of returns the interned descriptor for the shape of v. Repeated calls for
// the same shape return the identical descriptor.
func Of(v any) *Descriptor {
	if v == nil {
		return voidDesc
	}
	return OfType(reflect.TypeOf(v))
}

// For returns the interned descriptor for the Go type T.
func For[T any]() *Descriptor {
	return OfType(reflect.TypeOf((*T)(nil)).Elem())
}

// OfType returns the interned descriptor for a reflect type.
func OfType(t reflect.Type) *Descriptor {
	if d, ok := goDescriptors.Load(t); ok {
		return d.(*Descriptor)
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	return ofTypeLocked(t)
}

func ofTypeLocked(t reflect.Type) *Descriptor {
	if d, ok := goDescriptors.Load(t); ok {
		return d.(*Descriptor)
	}
	if d, ok := building[t]; ok {
		return d
	}
	if ht, ok := holderType.Load().(reflect.Type); ok && t == ht {
		return holderDesc
	}

	d := newDescriptor(kindOfType(t), 0, t.String(), t, nil)
	building[t] = d
	defer delete(building, t)

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		d.ups = []*Descriptor{ofTypeLocked(t.Elem())}
	case reflect.Map:
		d.ups = []*Descriptor{ofTypeLocked(t.Key()), ofTypeLocked(t.Elem())}
	case reflect.Func:
		ups := make([]*Descriptor, 0, t.NumIn()+1)
		for i := 0; i < t.NumIn(); i++ {
			ups = append(ups, ofTypeLocked(t.In(i)))
		}
		ups = append(ups, funcResultLocked(t))
		d.ups = ups
	}

	goDescriptors.Store(t, d)
	slog.Debug("Published shape descriptor.", "shape", d.name)
	return d
}

// funcResultLocked picks the result up-descriptor of a Go function type: the
// first result, or void for none. A sole trailing error result also maps to
// void; the invocation protocol reports it as a failure, not a value.
func funcResultLocked(t reflect.Type) *Descriptor {
	for i := 0; i < t.NumOut(); i++ {
		out := t.Out(i)
		if i == t.NumOut()-1 && out == errorType {
			break
		}
		return ofTypeLocked(out)
	}
	return voidDesc
}

// isEnumType reports whether a named integer type carries a Stringer, on
// the value or the pointer receiver.
func isEnumType(t reflect.Type) bool {
	if t.PkgPath() == "" {
		return false
	}
	return t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

func kindOfType(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isEnumType(t) {
			return KindEnum
		}
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if isEnumType(t) {
			return KindEnum
		}
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.String:
		return KindString
	case reflect.Pointer:
		return KindPointer
	case reflect.Slice:
		return KindSlice
	case reflect.Array:
		return KindArray
	case reflect.Map:
		return KindMap
	case reflect.Func:
		return KindCallable
	default:
		// Structs, interfaces, channels, complex numbers: aggregates as far
		// as the graph is concerned.
		return KindObject
	}
}

// internSynthetic publishes the descriptor built by build under key exactly
// once, no matter how many goroutines race on first use.
func internSynthetic(key string, build func() *Descriptor) *Descriptor {
	if d, ok := synthetics.Load(key); ok {
		return d.(*Descriptor)
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	if d, ok := synthetics.Load(key); ok {
		return d.(*Descriptor)
	}
	d := build()
	synthetics.Store(key, d)
	slog.Debug("Published shape descriptor.", "shape", d.name)
	return d
}

// ReferenceTo returns the non-owning reference shape over elem.
func ReferenceTo(elem *Descriptor) *Descriptor {
	return internSynthetic(fmt.Sprintf("ref|%d", elem.id), func() *Descriptor {
		d := newDescriptor(KindReference, 0, "&"+elem.name, nil, []*Descriptor{elem})
		d.size = ptrSize
		d.align = int(ptrSize)
		return d
	})
}

// PointerTo returns the pointer shape over elem.
func PointerTo(elem *Descriptor) *Descriptor {
	if elem.goType != nil {
		return OfType(reflect.PointerTo(elem.goType))
	}
	return internSynthetic(fmt.Sprintf("ptr|%d", elem.id), func() *Descriptor {
		d := newDescriptor(KindPointer, 0, "*"+elem.name, nil, []*Descriptor{elem})
		d.size = ptrSize
		d.align = int(ptrSize)
		return d
	})
}

// SliceOf returns the slice shape over elem.
func SliceOf(elem *Descriptor) *Descriptor {
	if elem.goType != nil {
		return OfType(reflect.SliceOf(elem.goType))
	}
	return internSynthetic(fmt.Sprintf("slice|%d", elem.id), func() *Descriptor {
		return newDescriptor(KindSlice, 0, "[]"+elem.name, nil, []*Descriptor{elem})
	})
}

// ArrayOf returns the fixed-length array shape over elem.
func ArrayOf(elem *Descriptor, n int) *Descriptor {
	if elem.goType != nil {
		return OfType(reflect.ArrayOf(n, elem.goType))
	}
	return internSynthetic(fmt.Sprintf("array|%d|%d", n, elem.id), func() *Descriptor {
		return newDescriptor(KindArray, 0, fmt.Sprintf("[%d]%s", n, elem.name), nil, []*Descriptor{elem})
	})
}

// MapOf returns the mapping shape from key to elem.
func MapOf(key, elem *Descriptor) *Descriptor {
	if key.goType != nil && elem.goType != nil {
		return OfType(reflect.MapOf(key.goType, elem.goType))
	}
	return internSynthetic(fmt.Sprintf("map|%d|%d", key.id, elem.id), func() *Descriptor {
		name := fmt.Sprintf("map[%s]%s", key.name, elem.name)
		return newDescriptor(KindMap, 0, name, nil, []*Descriptor{key, elem})
	})
}

// CallableOf returns the callable shape with the given parameter shapes and
// result shape. Pass Void for result-less callables.
func CallableOf(params []*Descriptor, result *Descriptor) *Descriptor {
	ids := make([]string, 0, len(params)+1)
	names := make([]string, 0, len(params))
	for _, p := range params {
		ids = append(ids, fmt.Sprint(p.id))
		names = append(names, p.name)
	}
	ids = append(ids, fmt.Sprint(result.id))
	key := "fn|" + strings.Join(ids, ",")
	return internSynthetic(key, func() *Descriptor {
		name := "func(" + strings.Join(names, ", ") + ")"
		if result != voidDesc {
			name += " " + result.name
		}
		ups := make([]*Descriptor, 0, len(params)+1)
		ups = append(ups, params...)
		ups = append(ups, result)
		return newDescriptor(KindCallable, 0, name, nil, ups)
	})
}

// Const returns the immutable-qualified view of d.
func Const(d *Descriptor) *Descriptor {
	return qualified(d, d.quals|QualConst)
}

// Volatile returns the volatile-qualified view of d.
func Volatile(d *Descriptor) *Descriptor {
	return qualified(d, d.quals|QualVolatile)
}

func qualified(d *Descriptor, quals Qualifiers) *Descriptor {
	base := d.Unqualified()
	if quals == 0 {
		return base
	}
	if quals == d.quals && d.base != nil {
		return d
	}
	return internSynthetic(fmt.Sprintf("qual|%d|%d", quals, base.id), func() *Descriptor {
		q := newDescriptor(base.kind, quals, quals.String()+base.name, base.goType, base.ups)
		q.base = base
		return q
	})
}

// Declare interns a named aggregate shape. The first caller for a given
// name publishes the skeleton and then runs build exactly once; the
// descriptor is already visible inside build (and usable as one of its own
// up-descriptors or members), which is what lets self-referential
// aggregates close their cycle. Later and concurrent callers receive the
// published descriptor and their build callback is ignored.
func Declare(name string, build func(*Descriptor)) *Descriptor {
	key := "named|" + name
	if d, ok := synthetics.Load(key); ok {
		return d.(*Descriptor)
	}

	buildMu.Lock()
	if d, ok := synthetics.Load(key); ok {
		buildMu.Unlock()
		return d.(*Descriptor)
	}
	d := newDescriptor(KindObject, 0, name, nil, nil)
	synthetics.Store(key, d)
	buildMu.Unlock()

	slog.Debug("Published shape descriptor.", "shape", name)
	if build != nil {
		build(d)
	}
	return d
}
