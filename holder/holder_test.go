package holder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/variantgo/shape"
)

type point struct {
	X, Y int
}

func TestNewAndGet(t *testing.T) {
	t.Run("small value round trip", func(t *testing.T) {
		h := New(9)
		assert.Equal(t, shape.KindInt, KindOf(h))
		assert.Equal(t, 9, Get[int](h))
		assert.False(t, h.IsEmpty())
	})

	t.Run("composite value round trip", func(t *testing.T) {
		h := New(point{X: 1, Y: 2})
		assert.Equal(t, point{X: 1, Y: 2}, Get[point](h))
	})

	t.Run("nil constructs an empty holder", func(t *testing.T) {
		h := New(nil)
		assert.True(t, h.IsEmpty())
		assert.Same(t, shape.Void(), h.Descriptor())
	})

	t.Run("a holder value passes through", func(t *testing.T) {
		h := New(7)
		assert.Equal(t, h, New(h))
	})

	t.Run("channels have no storage representation", func(t *testing.T) {
		_, err := TryNew(make(chan int))
		assert.ErrorIs(t, err, ErrNotConstructible)
		assert.Panics(t, func() { New(make(chan int)) })
	})
}

func TestCopySemantics(t *testing.T) {
	t.Run("copies of a small holder are independent", func(t *testing.T) {
		a := New(9)
		b := a
		require.NoError(t, b.Assign(New(38)))
		assert.Equal(t, 9, Get[int](a))
		assert.Equal(t, 38, Get[int](b))
	})

	t.Run("copies of a composite holder share the cell", func(t *testing.T) {
		a := New(point{X: 1, Y: 2})
		b := a
		require.NoError(t, a.Assign(New(point{X: 7, Y: 8})))
		assert.Equal(t, point{X: 7, Y: 8}, Get[point](b))
	})

	t.Run("slice copies observe element mutation", func(t *testing.T) {
		a := New([]int{1, 2, 3})
		b := a
		(*GetPtr[[]int](a))[0] = 99
		assert.Equal(t, []int{99, 2, 3}, Get[[]int](b))
	})
}

func TestRef(t *testing.T) {
	t.Run("reference reads the referent", func(t *testing.T) {
		x := 5
		r := RefOf(&x)
		assert.True(t, r.Descriptor().IsReference())
		assert.Equal(t, 5, Get[int](r))

		x = 6
		assert.Equal(t, 6, Get[int](r))
	})

	t.Run("assign writes through to the referent", func(t *testing.T) {
		x := 5
		r := RefOf(&x)
		require.NoError(t, r.Assign(New(42)))
		assert.Equal(t, 42, x)
	})

	t.Run("ref panics on non-pointers", func(t *testing.T) {
		assert.Panics(t, func() { Ref(5) })
	})
}

func TestHolderOfHolder(t *testing.T) {
	inner := New(5)
	outer := NewHolder(inner)

	assert.Equal(t, shape.KindHolder, KindOf(outer))
	assert.Equal(t, 5, Get[int](outer), "get unwraps one level")
	assert.Equal(t, inner, GetHolder(outer))
	assert.Equal(t, outer, New(outer), "New on a holder does not rewrap")

	t.Run("NewOf preserves the holder shape through erasure", func(t *testing.T) {
		h, err := NewOf[Holder](inner)
		require.NoError(t, err)
		assert.Equal(t, shape.KindHolder, KindOf(h))
	})
}

func TestClone(t *testing.T) {
	t.Run("clones sever slice sharing", func(t *testing.T) {
		a := New([]int{1, 2, 3})
		c := a.Clone()
		(*GetPtr[[]int](a))[0] = 99
		assert.Equal(t, []int{1, 2, 3}, Get[[]int](c))
	})

	t.Run("cloning a reference yields an owned value", func(t *testing.T) {
		x := 5
		c := RefOf(&x).Clone()
		assert.False(t, c.Descriptor().IsReference())
		x = 6
		assert.Equal(t, 5, Get[int](c))
	})

	t.Run("nested composites are copied deeply", func(t *testing.T) {
		type box struct{ Items []string }
		a := New(box{Items: []string{"a"}})
		c := a.Clone()
		GetPtr[box](a).Items[0] = "mutated"
		assert.Empty(t, cmp.Diff(box{Items: []string{"a"}}, Get[box](c)))
	})
}

func TestTakeFrom(t *testing.T) {
	t.Run("adopts the pointed-to instance", func(t *testing.T) {
		p := &point{X: 1, Y: 2}
		h := TakeFrom(shape.For[point](), p)
		assert.Equal(t, shape.KindObject, KindOf(h))

		p.X = 9
		assert.Equal(t, 9, Get[point](h).X, "no copy was taken")
	})

	t.Run("from a pointer holder", func(t *testing.T) {
		h, err := TakeFromHolder(New(&point{X: 3}))
		require.NoError(t, err)
		assert.Equal(t, 3, Get[point](h).X)
	})

	t.Run("rejects non-pointer holders", func(t *testing.T) {
		_, err := TakeFromHolder(New(3))
		assert.ErrorIs(t, err, ErrBadCast)
	})

	t.Run("rejects nil pointers", func(t *testing.T) {
		var p *point
		_, err := TakeFromHolder(New(p))
		assert.ErrorIs(t, err, ErrNotConstructible)
	})
}

func TestFromAddress(t *testing.T) {
	t.Run("zero address default-constructs", func(t *testing.T) {
		h, err := FromAddress(shape.For[point](), Address{}, CopyAuto)
		require.NoError(t, err)
		assert.Equal(t, point{}, Get[point](h))
	})

	t.Run("copies from the source location", func(t *testing.T) {
		src := point{X: 4, Y: 5}
		h, err := FromAddress(shape.For[point](), AddressOf(&src), CopyValue)
		require.NoError(t, err)
		src.X = 0
		assert.Equal(t, 4, Get[point](h).X)
	})

	t.Run("synthetic shapes are not constructible", func(t *testing.T) {
		_, err := FromAddress(shape.ReferenceTo(shape.For[int]()), Address{}, CopyAuto)
		assert.ErrorIs(t, err, ErrNotConstructible)
	})

	t.Run("mismatched source shape fails", func(t *testing.T) {
		src := "nope"
		_, err := FromAddress(shape.For[int](), AddressOf(&src), CopyAuto)
		assert.ErrorIs(t, err, ErrNotConstructible)
	})
}

func TestRetype(t *testing.T) {
	type meters int
	h := Retype(shape.For[meters](), New(5))
	assert.Same(t, shape.For[meters](), h.Descriptor())
	assert.Equal(t, meters(5), Get[meters](h))
}

func TestAddress(t *testing.T) {
	h := New(10)
	a := h.Address()
	require.False(t, a.IsZero())
	assert.Equal(t, 10, a.Load())

	a.Store(11)
	assert.Equal(t, 11, Get[int](h))

	assert.True(t, Empty().Address().IsZero())
}

func TestSwap(t *testing.T) {
	a, b := New(1), New("two")
	Swap(&a, &b)
	assert.Equal(t, "two", Get[string](a))
	assert.Equal(t, 1, Get[int](b))
}
