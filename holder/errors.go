package holder

import "errors"

// Failure taxonomy of the holder protocol. All failures surface
// synchronously at the violating call and leave pre-existing holders
// unchanged; the silent cast variants convert failure into an empty-holder
// sentinel instead.
var (
	// ErrNotConstructible reports a value that cannot be placed into
	// holder storage.
	ErrNotConstructible = errors.New("value is not constructible in holder storage")

	// ErrBadCast reports a get or cast between incompatible shapes.
	ErrBadCast = errors.New("shapes are not compatible")

	// ErrUnsupported reports an operation whose capability the shape does
	// not implement.
	ErrUnsupported = errors.New("shape does not support the operation")

	// ErrAmbiguousCall reports an overloaded call with no unique best
	// candidate.
	ErrAmbiguousCall = errors.New("call is ambiguous between overloads")
)
