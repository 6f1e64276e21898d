package shape

// Kind identifies the structural category of a shape.
type Kind uint8

const (
	// KindVoid is the shape of an empty holder.
	KindVoid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	// KindEnum covers named integer types with a symbolic representation.
	KindEnum
	// KindObject covers aggregates: structs, declared objects, and any
	// value the graph has no finer category for.
	KindObject
	KindPointer
	// KindReference is a non-owning indirection to a caller-owned location.
	KindReference
	KindArray
	KindSlice
	KindMap
	KindCallable
	// KindHolder marks a holder stored inside another holder.
	KindHolder
)

var kindNames = [...]string{
	KindVoid:      "void",
	KindBool:      "bool",
	KindInt:       "int",
	KindUint:      "uint",
	KindFloat:     "float",
	KindString:    "string",
	KindEnum:      "enum",
	KindObject:    "object",
	KindPointer:   "pointer",
	KindReference: "reference",
	KindArray:     "array",
	KindSlice:     "slice",
	KindMap:       "map",
	KindCallable:  "callable",
	KindHolder:    "holder",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsIndirection reports whether the kind stores a location rather than the
// value itself.
func (k Kind) IsIndirection() bool {
	return k == KindPointer || k == KindReference
}

// IsArithmetic reports whether values of the kind participate in the
// built-in numeric conversions.
func (k Kind) IsArithmetic() bool {
	return k == KindInt || k == KindUint || k == KindFloat || k == KindEnum
}

// Qualifiers is a bit set of view qualifiers attached to a shape.
type Qualifiers uint8

const (
	// QualConst marks an immutable view of the underlying value.
	QualConst Qualifiers = 1 << iota
	// QualVolatile marks a view whose reads must not be cached.
	QualVolatile
)

// Contains reports whether q carries every flag in other.
func (q Qualifiers) Contains(other Qualifiers) bool {
	return q&other == other
}

func (q Qualifiers) String() string {
	s := ""
	if q&QualConst != 0 {
		s += "const "
	}
	if q&QualVolatile != 0 {
		s += "volatile "
	}
	return s
}
