// Package stream reads and writes held values as text through the
// streamable capability of their shape.
package stream

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/variantgo/caps"
	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// Print writes the value held by v to w.
func Print(w io.Writer, v holder.Holder) error {
	d := shape.Bare(v.Descriptor())
	s := caps.StreamableOf(d)
	if s == nil {
		return fmt.Errorf("format %s: %w", d, holder.ErrUnsupported)
	}
	return s.Format(w, v)
}

// String formats the value held by v as a string.
func String(v holder.Holder) (string, error) {
	var sb strings.Builder
	if err := Print(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Scan reads a value from r into the storage behind v, which must be
// writable: a reference or an owned holder.
func Scan(r io.Reader, v holder.Holder) error {
	d := shape.Bare(v.Descriptor())
	s := caps.StreamableOf(d)
	if s == nil {
		return fmt.Errorf("scan %s: %w", d, holder.ErrUnsupported)
	}
	return s.Scan(r, v)
}
