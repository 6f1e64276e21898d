package adapt

import (
	"fmt"
	"reflect"

	"github.com/vk/variantgo/caps"
	"github.com/vk/variantgo/holder"
	"github.com/vk/variantgo/shape"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// funcShape serves the callable capability for Go-backed func descriptors.
type funcShape struct{}

func callableShapeFor(d *shape.Descriptor) any {
	t := d.GoType()
	if d.Kind() != shape.KindCallable || t == nil || t.Kind() != reflect.Func {
		return nil
	}
	return funcShape{}
}

func (funcShape) Bind(callee holder.Holder) caps.Callable {
	return callableFor(load(callee), 0)
}

// reflectCallable invokes a reflect func value. skip is the number of
// leading inputs bound from the receiver rather than the argument list,
// 1 for methods and 0 for free functions.
type reflectCallable struct {
	fn       reflect.Value
	ft       reflect.Type
	skip     int
	params   []*shape.Descriptor
	result   *shape.Descriptor
	variadic bool
}

func callableFor(fn reflect.Value, skip int) *reflectCallable {
	ft := fn.Type()
	c := &reflectCallable{fn: fn, ft: ft, skip: skip, variadic: ft.IsVariadic()}
	for i := skip; i < ft.NumIn(); i++ {
		c.params = append(c.params, shape.OfType(ft.In(i)))
	}
	c.result = resultShape(ft)
	return c
}

// resultShape maps a func's outputs to one result shape. A sole error
// output is a void result; with multiple outputs the first non-error one
// is the result and a trailing error reports failure.
func resultShape(ft reflect.Type) *shape.Descriptor {
	if ft.NumOut() == 0 || ft.Out(0) == errType {
		return shape.Void()
	}
	return shape.OfType(ft.Out(0))
}

func (c *reflectCallable) Arity() int { return len(c.params) }

func (c *reflectCallable) Parameter(i int) *shape.Descriptor { return c.params[i] }

func (c *reflectCallable) Result() *shape.Descriptor { return c.result }

func (c *reflectCallable) IsVariadic() bool { return c.variadic }

func (c *reflectCallable) DefaultArgCount() int { return 0 }

func (c *reflectCallable) Rank(args []holder.Holder) caps.Rank {
	return caps.RankArguments(c.params, c.variadic, 0, args)
}

func (c *reflectCallable) Invoke(receiver holder.Holder, args ...holder.Holder) (holder.Holder, error) {
	if c.fn.IsNil() {
		return holder.Empty(), fmt.Errorf("call through nil func: %w", holder.ErrBadCast)
	}
	fixed := len(c.params)
	if c.variadic {
		fixed--
	}
	if len(args) < fixed || (!c.variadic && len(args) > len(c.params)) {
		return holder.Empty(), fmt.Errorf("call takes %d arguments, got %d: %w",
			len(c.params), len(args), holder.ErrBadCast)
	}

	in := make([]reflect.Value, 0, c.skip+len(args))
	if c.skip > 0 {
		rv, err := receiverValue(receiver, c.ft.In(0))
		if err != nil {
			return holder.Empty(), err
		}
		in = append(in, rv)
	}
	for i, arg := range args {
		var (
			pt reflect.Type
			pd *shape.Descriptor
		)
		if i < fixed {
			pt = c.ft.In(c.skip + i)
			pd = c.params[i]
		} else {
			pt = c.ft.In(c.ft.NumIn() - 1).Elem()
			pd = shape.OfType(pt)
		}
		v, err := valueAs(arg, pd, pt)
		if err != nil {
			return holder.Empty(), fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}

	return resultHolder(c.fn.Call(in))
}

// receiverValue binds the receiver holder to the method's receiver type,
// casting down to a declared base when the method was inherited.
func receiverValue(receiver holder.Holder, want reflect.Type) (reflect.Value, error) {
	a := receiver.Address()
	if a.IsZero() {
		return reflect.Value{}, fmt.Errorf("method call without a receiver: %w", holder.ErrBadCast)
	}
	p := reflect.ValueOf(a.Pointer())
	if p.Type().AssignableTo(want) {
		return p, nil
	}
	casted, err := receiver.Cast(shape.OfType(want.Elem()))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("receiver: %w", err)
	}
	p = reflect.ValueOf(casted.Address().Pointer())
	if !p.Type().AssignableTo(want) {
		return reflect.Value{}, fmt.Errorf("receiver %s cannot bind %s: %w", p.Type(), want, holder.ErrBadCast)
	}
	return p, nil
}

// resultHolder folds the call outputs: a non-nil error output fails the
// call, otherwise the first non-error output becomes the result.
func resultHolder(outs []reflect.Value) (holder.Holder, error) {
	res := holder.Empty()
	for _, out := range outs {
		if out.Type() == errType {
			if !out.IsNil() {
				return holder.Empty(), out.Interface().(error)
			}
			continue
		}
		if res.IsEmpty() {
			var err error
			if res, err = holder.TryNew(out.Interface()); err != nil {
				return holder.Empty(), err
			}
		}
	}
	return res, nil
}
