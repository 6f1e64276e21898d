package adapt

import "github.com/vk/variantgo/shape"

func init() {
	shape.RegisterProvider(shape.CapAggregate, aggregateFor)
	shape.RegisterProvider(shape.CapCallable, callableShapeFor)
	shape.RegisterProvider(shape.CapIndexable, indexableFor)
	shape.RegisterProvider(shape.CapEnumerable, enumerableFor)
	shape.RegisterProvider(shape.CapMapping, mappingFor)
	shape.RegisterProvider(shape.CapPointer, pointerFor)
	shape.RegisterProvider(shape.CapAccessible, pointerFor)
	shape.RegisterProvider(shape.CapStreamable, streamableFor)
}

// enumerableFor routes to the sequence adapter for slices and arrays and
// to the map adapter for maps.
func enumerableFor(d *shape.Descriptor) any {
	switch d.Kind() {
	case shape.KindSlice, shape.KindArray:
		return indexableFor(d)
	case shape.KindMap:
		return mappingFor(d)
	}
	return nil
}
