package shape

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color int

func (c color) String() string { return "color" }

type weekday uint

func (d *weekday) String() string { return "weekday" }

type treeNode struct {
	Value    int
	Children []*treeNode
}

func TestOfInterning(t *testing.T) {
	t.Run("same shape yields the identical descriptor", func(t *testing.T) {
		a := Of(3)
		b := Of(5)
		require.NotNil(t, a)
		assert.Same(t, a, b)
		assert.Same(t, a, For[int]())
		assert.Same(t, a, OfType(reflect.TypeOf((*int)(nil)).Elem()))
	})

	t.Run("distinct shapes yield distinct descriptors", func(t *testing.T) {
		assert.NotSame(t, For[int](), For[int64]())
		assert.NotSame(t, For[int](), For[string]())
	})

	t.Run("nil value is void", func(t *testing.T) {
		assert.Same(t, Void(), Of(nil))
		assert.Equal(t, KindVoid, Of(nil).Kind())
	})
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		name string
		d    *Descriptor
		want Kind
	}{
		{"bool", For[bool](), KindBool},
		{"int", For[int](), KindInt},
		{"uint", For[uint8](), KindUint},
		{"float", For[float64](), KindFloat},
		{"string", For[string](), KindString},
		{"enum", For[color](), KindEnum},
		{"enum with pointer receiver", For[weekday](), KindEnum},
		{"struct", For[treeNode](), KindObject},
		{"pointer", For[*int](), KindPointer},
		{"slice", For[[]int](), KindSlice},
		{"array", For[[4]byte](), KindArray},
		{"map", For[map[string]int](), KindMap},
		{"func", For[func(int) string](), KindCallable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.d.Kind())
		})
	}
}

func TestCompoundShapes(t *testing.T) {
	t.Run("pointer shape matches the reflect-backed one", func(t *testing.T) {
		assert.Same(t, For[*int](), PointerTo(For[int]()))
		assert.Same(t, For[int](), PointerTo(For[int]()).Up(0))
	})

	t.Run("slice map and array delegate to the Go type", func(t *testing.T) {
		assert.Same(t, For[[]string](), SliceOf(For[string]()))
		assert.Same(t, For[map[string]int](), MapOf(For[string](), For[int]()))
		assert.Same(t, For[[3]int](), ArrayOf(For[int](), 3))
	})

	t.Run("reference shapes are synthetic and interned", func(t *testing.T) {
		r := ReferenceTo(For[int]())
		assert.Same(t, r, ReferenceTo(For[int]()))
		assert.True(t, r.IsReference())
		assert.Nil(t, r.GoType())
		assert.Equal(t, "&int", r.Name())
		assert.Same(t, For[int](), r.Referent())
	})

	t.Run("callable shapes intern by signature", func(t *testing.T) {
		c := CallableOf([]*Descriptor{For[int](), For[string]()}, For[bool]())
		assert.Same(t, c, CallableOf([]*Descriptor{For[int](), For[string]()}, For[bool]()))
		assert.Equal(t, KindCallable, c.Kind())
		assert.Equal(t, 3, c.NumUp())
		assert.Equal(t, "func(int, string) bool", c.Name())
	})

	t.Run("func result folds a sole error to void", func(t *testing.T) {
		d := For[func() error]()
		require.Equal(t, 1, d.NumUp())
		assert.Same(t, Void(), d.Up(0))

		d = For[func() (int, error)]()
		require.Equal(t, 1, d.NumUp())
		assert.Same(t, For[int](), d.Up(0))
	})
}

func TestQualifiers(t *testing.T) {
	d := For[int]()
	cd := Const(d)

	assert.True(t, cd.IsConst())
	assert.False(t, d.IsConst())
	assert.Same(t, d, cd.Unqualified())
	assert.Same(t, cd, Const(cd), "qualifying twice is a no-op")
	assert.Same(t, cd, Const(d), "qualified views are interned")
	assert.NotSame(t, cd, Volatile(d))

	t.Run("bare strips one reference level and qualifiers", func(t *testing.T) {
		assert.Same(t, d, Bare(ReferenceTo(cd)))
		assert.Same(t, d, Bare(cd))
		assert.Same(t, d, Bare(d))
	})

	t.Run("qualified views share size and ups", func(t *testing.T) {
		s := Const(For[[]int]())
		assert.Same(t, For[int](), s.Up(0))
		assert.Equal(t, For[[]int]().Size(), s.Size())
	})
}

func TestSelfReferentialGoType(t *testing.T) {
	d := For[treeNode]()
	require.Equal(t, KindObject, d.Kind())
	// The element chain of the Children field closes back on d.
	assert.Same(t, d, For[[]*treeNode]().Up(0).Up(0))
}

func TestDeclare(t *testing.T) {
	t.Run("first declaration wins", func(t *testing.T) {
		built := 0
		d := Declare("test.widget", func(*Descriptor) { built++ })
		again := Declare("test.widget", func(*Descriptor) { built++ })
		assert.Same(t, d, again)
		assert.Equal(t, 1, built)
	})

	t.Run("the skeleton is visible inside its own build", func(t *testing.T) {
		var inner *Descriptor
		d := Declare("test.linked", func(self *Descriptor) {
			inner = Declare("test.linked", nil)
		})
		assert.Same(t, d, inner)
	})
}

func TestConcurrentInterning(t *testing.T) {
	type fresh struct{ A, B string }

	const n = 32
	out := make([]*Descriptor, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = For[fresh]()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, out[0], out[i])
	}
}

func TestCapabilityTable(t *testing.T) {
	t.Run("set is write once", func(t *testing.T) {
		tab := NewCapabilityTable().Set(CapStreamable, "impl")
		assert.Equal(t, "impl", tab.Get(CapStreamable))
		assert.Nil(t, tab.Get(CapMapping))
		assert.Panics(t, func() { tab.Set(CapStreamable, "other") })
	})

	t.Run("attach is one shot", func(t *testing.T) {
		d := Declare("test.attach-once", nil)
		d.AttachCapabilities(NewCapabilityTable())
		assert.Panics(t, func() { d.AttachCapabilities(NewCapabilityTable()) })
	})

	t.Run("qualified views inherit capabilities", func(t *testing.T) {
		d := Declare("test.qual-caps", func(d *Descriptor) {
			d.AttachCapabilities(NewCapabilityTable().Set(CapStreamable, "impl"))
		})
		assert.Equal(t, "impl", Const(d).Capability(CapStreamable))
	})
}
