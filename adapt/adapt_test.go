package adapt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/variantgo/caps"
	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

type vec struct {
	X, Y int
}

func (v *vec) Sum() int { return v.X + v.Y }

func (v *vec) Scale(f int) {
	v.X *= f
	v.Y *= f
}

type named struct {
	Name string
}

func (n *named) Describe() string { return "named:" + n.Name }

type labeled struct {
	named
	Label string
}

func TestStructMembers(t *testing.T) {
	t.Run("fields read as references into the instance", func(t *testing.T) {
		h := holder.New(vec{X: 3, Y: 4})

		x, err := caps.GetMember(h, "X")
		require.NoError(t, err)
		assert.True(t, x.Descriptor().IsReference())
		assert.Equal(t, 3, holder.Get[int](x))
	})

	t.Run("field writes land in the instance", func(t *testing.T) {
		h := holder.New(vec{X: 3, Y: 4})
		require.NoError(t, caps.SetMember(h, "X", holder.New(10)))

		out, err := caps.InvokeMember(h, "Sum")
		require.NoError(t, err)
		assert.Equal(t, 14, holder.Get[int](out))
	})

	t.Run("field writes convert the value when needed", func(t *testing.T) {
		h := holder.New(vec{})
		require.NoError(t, caps.SetMember(h, "Y", holder.New(int32(7))))
		y, err := caps.GetMember(h, "Y")
		require.NoError(t, err)
		assert.Equal(t, 7, holder.Get[int](y))
	})

	t.Run("methods mutate through the receiver", func(t *testing.T) {
		h := holder.New(vec{X: 2, Y: 3})
		_, err := caps.InvokeMember(h, "Scale", holder.New(10))
		require.NoError(t, err)
		assert.Equal(t, vec{X: 20, Y: 30}, holder.Get[vec](h))
	})

	t.Run("const views reject writes", func(t *testing.T) {
		h := holder.Retype(shape.Const(shape.For[vec]()), holder.New(vec{}))
		err := caps.SetMember(h, "X", holder.New(1))
		assert.ErrorIs(t, err, holder.ErrUnsupported)
	})

	t.Run("the zero constructor builds a default instance", func(t *testing.T) {
		out, err := caps.Construct(shape.For[vec]())
		require.NoError(t, err)
		assert.Equal(t, vec{}, holder.Get[vec](out))
	})
}

func TestEmbedding(t *testing.T) {
	h := holder.New(labeled{named: named{Name: "a"}, Label: "x"})

	t.Run("embedded members are promoted", func(t *testing.T) {
		name, err := caps.GetMember(h, "Name")
		require.NoError(t, err)
		assert.Equal(t, "a", holder.Get[string](name))

		out, err := caps.InvokeMember(h, "Describe")
		require.NoError(t, err)
		assert.Equal(t, "named:a", holder.Get[string](out))
	})

	t.Run("upcast views the embedded base in place", func(t *testing.T) {
		base, err := h.Cast(shape.For[named]())
		require.NoError(t, err)
		require.NoError(t, caps.SetMember(base, "Name", holder.New("b")))

		name, err := caps.GetMember(h, "Name")
		require.NoError(t, err)
		assert.Equal(t, "b", holder.Get[string](name), "the view aliases the instance")
	})

	t.Run("downcast recovers the complete object", func(t *testing.T) {
		base, err := h.Cast(shape.For[named]())
		require.NoError(t, err)

		back, err := base.Cast(shape.For[labeled]())
		require.NoError(t, err)
		label, err := caps.GetMember(back, "Label")
		require.NoError(t, err)
		assert.Equal(t, "x", holder.Get[string](label))
	})

	t.Run("downcast outside the dynamic chain fails", func(t *testing.T) {
		_, err := holder.New(named{}).Cast(shape.For[labeled]())
		assert.ErrorIs(t, err, holder.ErrBadCast)
	})

	t.Run("pointer casts follow the base graph", func(t *testing.T) {
		l := &labeled{named: named{Name: "p"}}
		out, err := holder.New(l).Cast(shape.For[*named]())
		require.NoError(t, err)
		assert.Equal(t, "p", holder.Get[*named](out).Name)
	})
}

func TestCallables(t *testing.T) {
	t.Run("free functions invoke with converted arguments", func(t *testing.T) {
		add := func(a, b int) int { return a + b }
		out, err := caps.Call(holder.New(add), holder.New(2), holder.New(int32(3)))
		require.NoError(t, err)
		assert.Equal(t, 5, holder.Get[int](out))
	})

	t.Run("a trailing error output reports failure", func(t *testing.T) {
		fail := func() (int, error) { return 0, assert.AnError }
		_, err := caps.Call(holder.New(fail))
		assert.ErrorIs(t, err, assert.AnError)

		ok := func() (int, error) { return 7, nil }
		out, err := caps.Call(holder.New(ok))
		require.NoError(t, err)
		assert.Equal(t, 7, holder.Get[int](out))
	})

	t.Run("variadic tails absorb extra arguments", func(t *testing.T) {
		sum := func(base int, ns ...int) int {
			for _, n := range ns {
				base += n
			}
			return base
		}
		out, err := caps.Call(holder.New(sum), holder.New(1), holder.New(2), holder.New(3))
		require.NoError(t, err)
		assert.Equal(t, 6, holder.Get[int](out))
	})

	t.Run("arity mismatches are a bad cast", func(t *testing.T) {
		add := func(a, b int) int { return a + b }
		_, err := caps.Call(holder.New(add), holder.New(2))
		assert.ErrorIs(t, err, holder.ErrBadCast)
	})

	t.Run("non-callable shapes are unsupported", func(t *testing.T) {
		_, err := caps.Call(holder.New(5))
		assert.ErrorIs(t, err, holder.ErrUnsupported)
	})
}

func TestSequences(t *testing.T) {
	t.Run("elements read and write through the container", func(t *testing.T) {
		h := holder.New([]int{1, 2, 3})
		ix := caps.IndexableOf(shape.For[[]int]())
		require.NotNil(t, ix)

		n, err := ix.Len(h)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		el, err := ix.At(h, 1)
		require.NoError(t, err)
		require.NoError(t, el.Assign(holder.New(99)))
		assert.Equal(t, []int{1, 99, 3}, holder.Get[[]int](h))

		require.NoError(t, ix.SetAt(h, 0, holder.New(int32(7))))
		assert.Equal(t, []int{7, 99, 3}, holder.Get[[]int](h))
	})

	t.Run("out of range indexes are a bad cast", func(t *testing.T) {
		ix := caps.IndexableOf(shape.For[[]int]())
		_, err := ix.At(holder.New([]int{1}), 5)
		assert.ErrorIs(t, err, holder.ErrBadCast)

		err = ix.SetAt(holder.New([]int{1}), -1, holder.New(0))
		assert.ErrorIs(t, err, holder.ErrBadCast)
	})

	t.Run("enumeration stops when the visitor declines", func(t *testing.T) {
		h := holder.New([]int{1, 2, 3, 4, 5})
		visited := 0
		err := caps.ForEach(h, func(holder.Holder) bool {
			visited++
			return visited < 3
		})
		require.NoError(t, err)
		assert.Equal(t, 3, visited)
	})

	t.Run("arrays enumerate like slices", func(t *testing.T) {
		h := holder.New([2]string{"a", "b"})
		var got []string
		err := caps.ForEach(h, func(e holder.Holder) bool {
			got = append(got, holder.Get[string](e))
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	})
}

func TestMaps(t *testing.T) {
	t.Run("lookup and store go through the shared map", func(t *testing.T) {
		h := holder.New(map[string]int{"a": 1})
		mp := caps.MappingOf(shape.For[map[string]int]())
		require.NotNil(t, mp)
		assert.Same(t, shape.For[string](), mp.KeyShape())
		assert.Same(t, shape.For[int](), mp.ValueShape())

		v, err := mp.Lookup(h, holder.New("a"))
		require.NoError(t, err)
		assert.Equal(t, 1, holder.Get[int](v))

		missing, err := mp.Lookup(h, holder.New("zz"))
		require.NoError(t, err)
		assert.True(t, missing.IsEmpty())

		require.NoError(t, mp.Store(h, holder.New("b"), holder.New(2)))
		assert.Equal(t, map[string]int{"a": 1, "b": 2}, holder.Get[map[string]int](h))
	})

	t.Run("enumeration visits key value pairs", func(t *testing.T) {
		h := holder.New(map[string]int{"a": 1, "b": 2})
		got := map[string]int{}
		err := caps.ForEach(h, func(e holder.Holder) bool {
			p := holder.Get[caps.Pair](e)
			got[holder.Get[string](p.Key)] = holder.Get[int](p.Value)
			return true
		})
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(map[string]int{"a": 1, "b": 2}, got))
	})

	t.Run("nil maps reject stores", func(t *testing.T) {
		var m map[string]int
		mp := caps.MappingOf(shape.For[map[string]int]())
		err := mp.Store(holder.New(m), holder.New("a"), holder.New(1))
		assert.ErrorIs(t, err, holder.ErrUnsupported)
	})
}

func TestPointers(t *testing.T) {
	t.Run("pointee references the pointed-to value", func(t *testing.T) {
		x := 5
		pe, err := caps.Pointee(holder.New(&x))
		require.NoError(t, err)
		assert.Equal(t, 5, holder.Get[int](pe))

		require.NoError(t, pe.Assign(holder.New(42)))
		assert.Equal(t, 42, x)
	})

	t.Run("nil pointers do not unwrap", func(t *testing.T) {
		var p *int
		_, err := caps.Pointee(holder.New(p))
		assert.ErrorIs(t, err, holder.ErrBadCast)
	})

	t.Run("pointers double as an unnamed accessible slot", func(t *testing.T) {
		x := 5
		acc := caps.AccessibleOf(shape.For[*int]())
		require.NotNil(t, acc)
		assert.Same(t, shape.For[int](), acc.ValueShape())

		require.NoError(t, acc.Set(holder.New(&x), holder.New(9)))
		assert.Equal(t, 9, x)

		got, err := acc.Get(holder.New(&x))
		require.NoError(t, err)
		assert.Equal(t, 9, holder.Get[int](got))
	})

	t.Run("the pointee shape is declared on the capability", func(t *testing.T) {
		pl := caps.PointerOf(shape.For[*vec]())
		require.NotNil(t, pl)
		assert.Same(t, shape.For[vec](), pl.PointeeShape())
	})
}
