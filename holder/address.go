package holder

import "reflect"

// Address is the location of a value: a thin wrapper over a Go pointer.
// The zero Address points nowhere.
type Address struct {
	ptr reflect.Value
}

// AddressOf returns the address of the value p points to.
func AddressOf[T any](p *T) Address {
	return Address{ptr: reflect.ValueOf(p)}
}

// IsZero reports whether the address points nowhere.
func (a Address) IsZero() bool {
	return !a.ptr.IsValid()
}

// Pointer returns the underlying Go pointer, nil for the zero address.
func (a Address) Pointer() any {
	if !a.ptr.IsValid() {
		return nil
	}
	return a.ptr.Interface()
}

// Load returns a copy of the value at the address.
func (a Address) Load() any {
	return a.ptr.Elem().Interface()
}

// Store overwrites the value at the address. Like Get, it is unchecked:
// storing a value of the wrong type panics.
func (a Address) Store(v any) {
	a.ptr.Elem().Set(reflect.ValueOf(v))
}

// Address returns the referent's address for reference storage and the
// owned value's address otherwise. It never allocates; the zero Address is
// returned for empty holders.
func (h Holder) Address() Address {
	return Address{ptr: h.addrValue()}
}
