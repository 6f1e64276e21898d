package holder

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/variantgo/shape"
)

func TestCastArithmetic(t *testing.T) {
	t.Run("int to float", func(t *testing.T) {
		out, err := New(3).Cast(shape.For[float64]())
		require.NoError(t, err)
		assert.Equal(t, 3.0, Get[float64](out))
	})

	t.Run("float to int truncates", func(t *testing.T) {
		out, err := New(3.9).Cast(shape.For[int]())
		require.NoError(t, err)
		assert.Equal(t, 3, Get[int](out))
	})

	t.Run("numbers render as strings", func(t *testing.T) {
		out, err := New(3).Cast(shape.For[string]())
		require.NoError(t, err)
		assert.Equal(t, "3", Get[string](out))
	})

	t.Run("strings parse as numbers", func(t *testing.T) {
		out, err := New("2.5").Cast(shape.For[float64]())
		require.NoError(t, err)
		assert.Equal(t, 2.5, Get[float64](out))

		_, err = New("nope").Cast(shape.For[float64]())
		assert.ErrorIs(t, err, ErrBadCast)
	})

	t.Run("named string to string", func(t *testing.T) {
		type name string
		out, err := New(name("x")).Cast(shape.For[string]())
		require.NoError(t, err)
		assert.Equal(t, "x", Get[string](out))
	})

	t.Run("the source holder is untouched", func(t *testing.T) {
		h := New(3)
		_, err := h.Cast(shape.For[float64]())
		require.NoError(t, err)
		assert.Same(t, shape.For[int](), h.Descriptor())
		assert.Equal(t, 3, Get[int](h))
	})
}

func TestCastFailures(t *testing.T) {
	type opaque struct{ A int }

	t.Run("unrelated shapes do not cast", func(t *testing.T) {
		_, err := New(opaque{}).Cast(shape.For[int]())
		assert.ErrorIs(t, err, ErrBadCast)
		assert.False(t, New(opaque{}).CanCast(shape.For[int]()))
	})

	t.Run("empty holders do not cast", func(t *testing.T) {
		_, err := Empty().Cast(shape.For[int]())
		assert.ErrorIs(t, err, ErrBadCast)
	})

	t.Run("silent cast yields an empty holder", func(t *testing.T) {
		out := New(opaque{}).CastSilently(shape.For[int]())
		assert.True(t, out.IsEmpty())
	})
}

func TestCastIdentityRows(t *testing.T) {
	t.Run("reference to its own underlying shape is a no-op", func(t *testing.T) {
		x := 5
		r := RefOf(&x)
		out, err := r.Cast(shape.For[int]())
		require.NoError(t, err)
		assert.True(t, out.Descriptor().IsReference(), "the same storage comes back")

		x = 6
		assert.Equal(t, 6, Get[int](out))
	})

	t.Run("qualifier changes rebadge the storage", func(t *testing.T) {
		h := Retype(shape.Const(shape.For[int]()), New(5))
		out, err := h.Cast(shape.For[int]())
		require.NoError(t, err)
		assert.Same(t, shape.For[int](), out.Descriptor())
		assert.Equal(t, 5, Get[int](out))
	})

	t.Run("casting to the holder shape wraps", func(t *testing.T) {
		out, err := New(5).Cast(shape.HolderShape())
		require.NoError(t, err)
		assert.Equal(t, shape.KindHolder, KindOf(out))
		assert.Equal(t, 5, Get[int](out))
	})

	t.Run("casting from a held holder unwraps", func(t *testing.T) {
		out, err := NewHolder(New(3)).Cast(shape.For[float64]())
		require.NoError(t, err)
		assert.Equal(t, 3.0, Get[float64](out))
	})
}

func TestRegisteredConversion(t *testing.T) {
	RegisterConversion(shape.For[string](), shape.For[int](), func(h Holder, to *shape.Descriptor) (Holder, error) {
		n, err := strconv.Atoi(Get[string](h))
		if err != nil {
			return Empty(), err
		}
		return New(n), nil
	})

	out, err := New("42").Cast(shape.For[int]())
	require.NoError(t, err)
	assert.Equal(t, 42, Get[int](out))

	t.Run("conversion failures surface", func(t *testing.T) {
		_, err := New("nope").Cast(shape.For[int]())
		assert.Error(t, err)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterConversion(shape.For[string](), shape.For[int](), nil)
		})
	})
}
