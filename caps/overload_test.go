package caps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

// stubCallable ranks like a real callable but returns a canned result.
type stubCallable struct {
	params   []*shape.Descriptor
	variadic bool
	result   holder.Holder
}

func (c *stubCallable) Arity() int                          { return len(c.params) }
func (c *stubCallable) Parameter(i int) *shape.Descriptor   { return c.params[i] }
func (c *stubCallable) Result() *shape.Descriptor           { return c.result.Descriptor() }
func (c *stubCallable) IsVariadic() bool                    { return c.variadic }
func (c *stubCallable) DefaultArgCount() int                { return 0 }
func (c *stubCallable) Rank(args []holder.Holder) Rank {
	return RankArguments(c.params, c.variadic, 0, args)
}
func (c *stubCallable) Invoke(holder.Holder, ...holder.Holder) (holder.Holder, error) {
	return c.result, nil
}

func params(ds ...*shape.Descriptor) []*shape.Descriptor { return ds }

func TestOverloadResolve(t *testing.T) {
	intOverload := &stubCallable{params: params(shape.For[int]()), result: holder.New("int")}
	floatOverload := &stubCallable{params: params(shape.For[float64]()), result: holder.New("float")}

	t.Run("an exact match beats a conversion match", func(t *testing.T) {
		set := OverloadSet{floatOverload, intOverload}
		out, err := set.Invoke(holder.Empty(), holder.New(3))
		require.NoError(t, err)
		assert.Equal(t, "int", holder.Get[string](out))
	})

	t.Run("conversion matches remain viable alone", func(t *testing.T) {
		set := OverloadSet{floatOverload}
		out, err := set.Invoke(holder.Empty(), holder.New(3))
		require.NoError(t, err)
		assert.Equal(t, "float", holder.Get[string](out))
	})

	t.Run("a tie at the top rank is ambiguous", func(t *testing.T) {
		set := OverloadSet{
			&stubCallable{params: params(shape.For[float64]()), result: holder.New("a")},
			&stubCallable{params: params(shape.For[float32]()), result: holder.New("b")},
		}
		_, err := set.Invoke(holder.Empty(), holder.New(3))
		assert.ErrorIs(t, err, holder.ErrAmbiguousCall)
	})

	t.Run("no viable candidate is a bad cast", func(t *testing.T) {
		type opaque struct{ A int }
		set := OverloadSet{&stubCallable{params: params(shape.For[opaque]())}}
		_, err := set.Resolve([]holder.Holder{holder.New(3)})
		assert.ErrorIs(t, err, holder.ErrBadCast)
	})

	t.Run("a fixed-arity match beats a variadic catch-all", func(t *testing.T) {
		set := OverloadSet{
			&stubCallable{params: params(shape.For[int]()), variadic: true, result: holder.New("variadic")},
			&stubCallable{params: params(shape.For[int]()), result: holder.New("fixed")},
		}
		out, err := set.Invoke(holder.Empty(), holder.New(3))
		require.NoError(t, err)
		assert.Equal(t, "fixed", holder.Get[string](out))
	})
}

func TestRankArguments(t *testing.T) {
	intParam := params(shape.For[int]())

	t.Run("arity mismatches are not viable", func(t *testing.T) {
		assert.Equal(t, RankNone, RankArguments(intParam, false, 0, nil))
		assert.Equal(t, RankNone, RankArguments(intParam, false, 0,
			[]holder.Holder{holder.New(1), holder.New(2)}))
	})

	t.Run("the worst argument sets the rank", func(t *testing.T) {
		two := params(shape.For[int](), shape.For[float64]())
		args := []holder.Holder{holder.New(1), holder.New(2)}
		assert.Equal(t, RankConversion, RankArguments(two, false, 0, args))
	})

	t.Run("variadic tails absorb extra arguments", func(t *testing.T) {
		r := RankArguments(params(shape.SliceOf(shape.For[int]())), true, 0,
			[]holder.Holder{holder.New(1), holder.New(2), holder.New(3)})
		assert.Equal(t, RankVariadic, r)
	})

	t.Run("default arguments relax the minimum arity", func(t *testing.T) {
		two := params(shape.For[int](), shape.For[int]())
		assert.Equal(t, RankNone, RankArguments(two, false, 0, []holder.Holder{holder.New(1)}))
		assert.Equal(t, RankExact, RankArguments(two, false, 1, []holder.Holder{holder.New(1)}))
	})
}

func TestRankArgument(t *testing.T) {
	assert.Equal(t, RankExact, RankArgument(holder.New(3), shape.For[int]()))
	assert.Equal(t, RankQualified, RankArgument(holder.New(3), shape.Const(shape.For[int]())))
	assert.Equal(t, RankConversion, RankArgument(holder.New(3), shape.For[float64]()))
	assert.Equal(t, RankNone, RankArgument(holder.New(3), shape.For[struct{ A int }]()))

	x := 5
	assert.Equal(t, RankQualified, RankArgument(holder.RefOf(&x), shape.For[int]()))
}
