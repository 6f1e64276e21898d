package holder

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"sync"

	"github.com/vk/variantgo/shape"
)

// ConversionFunc converts the value held by h into shape to, producing a
// fresh holder. It must not mutate h.
type ConversionFunc func(h Holder, to *shape.Descriptor) (Holder, error)

// ConversionHook inspects a shape pair and returns a conversion serving
// it, or nil when it does not apply. Hooks let adapter packages serve
// whole shape families, such as a bridge between descriptor worlds.
type ConversionHook func(from, to *shape.Descriptor) ConversionFunc

var (
	convMu    sync.RWMutex
	convExact = map[[2]*shape.Descriptor]ConversionFunc{}
	convKind  = map[[2]shape.Kind]ConversionFunc{}
	convHooks []ConversionHook
)

// RegisterConversion installs a representation conversion between two
// exact shapes. The registry is process-wide and append-only; registering
// the same pair twice panics.
func RegisterConversion(from, to *shape.Descriptor, fn ConversionFunc) {
	convMu.Lock()
	defer convMu.Unlock()
	key := [2]*shape.Descriptor{from, to}
	if _, exists := convExact[key]; exists {
		panic(fmt.Sprintf("holder: conversion %s -> %s already registered", from, to))
	}
	convExact[key] = fn
	slog.Debug("Registered shape conversion.", "from", from.Name(), "to", to.Name())
}

// RegisterKindConversion installs a conversion serving every shape pair of
// the given kinds. Exact-shape conversions take precedence over kind
// rules.
func RegisterKindConversion(from, to shape.Kind, fn ConversionFunc) {
	convMu.Lock()
	defer convMu.Unlock()
	key := [2]shape.Kind{from, to}
	if _, exists := convKind[key]; exists {
		panic(fmt.Sprintf("holder: conversion %s -> %s already registered", from, to))
	}
	convKind[key] = fn
	slog.Debug("Registered kind conversion.", "from", from.String(), "to", to.String())
}

// RegisterConversionHook appends a conversion hook. Hooks are consulted
// after exact and kind rules, in registration order.
func RegisterConversionHook(hook ConversionHook) {
	convMu.Lock()
	defer convMu.Unlock()
	convHooks = append(convHooks, hook)
}

func lookupConversion(from, to *shape.Descriptor) ConversionFunc {
	convMu.RLock()
	defer convMu.RUnlock()
	if fn, ok := convExact[[2]*shape.Descriptor{from, to}]; ok {
		return fn
	}
	if fn, ok := convKind[[2]shape.Kind{from.Kind(), to.Kind()}]; ok {
		return fn
	}
	for _, hook := range convHooks {
		if fn := hook(from, to); fn != nil {
			return fn
		}
	}
	return nil
}

// reflectConversion converts through the Go representation, covering the
// built-in arithmetic widenings and narrowings.
func reflectConversion(h Holder, to *shape.Descriptor) (Holder, error) {
	tt := to.GoType()
	if tt == nil {
		return Empty(), fmt.Errorf("convert to synthetic shape %s: %w", to, ErrBadCast)
	}
	src := h.value()
	if !src.IsValid() || !src.Type().ConvertibleTo(tt) {
		return Empty(), fmt.Errorf("convert %s to %s: %w", h.Descriptor(), to, ErrBadCast)
	}
	p := reflect.New(tt)
	p.Elem().Set(src.Convert(tt))
	return ownedHolder(to, p)
}

// numberToString renders an arithmetic value as text in the target string
// shape.
func numberToString(h Holder, to *shape.Descriptor) (Holder, error) {
	tt := to.GoType()
	if tt == nil {
		return Empty(), fmt.Errorf("convert to synthetic shape %s: %w", to, ErrBadCast)
	}
	p := reflect.New(tt)
	p.Elem().SetString(fmt.Sprint(h.value().Interface()))
	return ownedHolder(to, p)
}

// stringToNumber parses text into the target numeric shape.
func stringToNumber(h Holder, to *shape.Descriptor) (Holder, error) {
	tt := to.GoType()
	if tt == nil {
		return Empty(), fmt.Errorf("convert to synthetic shape %s: %w", to, ErrBadCast)
	}
	s := h.value().String()
	p := reflect.New(tt)
	switch tt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, tt.Bits())
		if err != nil {
			return Empty(), fmt.Errorf("parse %q as %s: %w", s, to, ErrBadCast)
		}
		p.Elem().SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, tt.Bits())
		if err != nil {
			return Empty(), fmt.Errorf("parse %q as %s: %w", s, to, ErrBadCast)
		}
		p.Elem().SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, tt.Bits())
		if err != nil {
			return Empty(), fmt.Errorf("parse %q as %s: %w", s, to, ErrBadCast)
		}
		p.Elem().SetFloat(f)
	default:
		return Empty(), fmt.Errorf("convert string to %s: %w", to, ErrBadCast)
	}
	return ownedHolder(to, p)
}

func ownedHolder(to *shape.Descriptor, p reflect.Value) (Holder, error) {
	class, err := storageClass(p.Type().Elem())
	if err != nil {
		return Empty(), err
	}
	out := Holder{desc: to, kind: class, cell: &cell{ptr: p}}
	out.dyn = shape.Bare(to)
	out.dynRoot = p
	return out, nil
}

func init() {
	// Arithmetic kinds interconvert by value, as do named variants of the
	// same kind (int32 -> int64, MyString -> string).
	arith := []shape.Kind{shape.KindInt, shape.KindUint, shape.KindFloat, shape.KindEnum}
	for _, from := range arith {
		for _, to := range arith {
			RegisterKindConversion(from, to, reflectConversion)
		}
	}
	RegisterKindConversion(shape.KindString, shape.KindString, reflectConversion)
	RegisterKindConversion(shape.KindBool, shape.KindBool, reflectConversion)

	// Numbers and strings interconvert textually. Enums stay out: their
	// text is symbolic and does not parse back.
	for _, k := range []shape.Kind{shape.KindInt, shape.KindUint, shape.KindFloat} {
		RegisterKindConversion(k, shape.KindString, numberToString)
		RegisterKindConversion(shape.KindString, k, stringToNumber)
	}
}
