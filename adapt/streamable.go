package adapt

import (
	"fmt"
	"io"
	"reflect"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// textAdapter formats values with the fmt default verb and scans them
// back from whitespace-separated text. It serves scalar shapes and any
// shape whose Go type is a fmt.Stringer.
type textAdapter struct{}

func streamableFor(d *shape.Descriptor) any {
	t := d.GoType()
	if t == nil {
		return nil
	}
	switch d.Kind() {
	case shape.KindBool, shape.KindInt, shape.KindUint, shape.KindFloat, shape.KindString, shape.KindEnum:
		return textAdapter{}
	}
	if t.Implements(stringerType) {
		return textAdapter{}
	}
	return nil
}

func (textAdapter) Format(w io.Writer, v holder.Holder) error {
	raw := load(v)
	if !raw.IsValid() {
		return fmt.Errorf("format empty holder: %w", holder.ErrUnsupported)
	}
	_, err := fmt.Fprintf(w, "%v", raw.Interface())
	return err
}

func (textAdapter) Scan(r io.Reader, v holder.Holder) error {
	if d := v.Descriptor().Referent(); d.IsConst() {
		return fmt.Errorf("scan into const %s: %w", d, holder.ErrUnsupported)
	}
	a := v.Address()
	if a.IsZero() {
		return fmt.Errorf("scan into empty holder: %w", holder.ErrUnsupported)
	}
	_, err := fmt.Fscan(r, a.Pointer())
	return err
}
