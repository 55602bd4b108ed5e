package collection

import "errors"

// Error kinds returned by the collection types. Errors are wrapped with context; match them with errors.Is.
var (
	// ErrOutOfRange is returned for an index or range outside the collection's bounds. Enumerators also return it
	// when they move past either end of the sequence.
	ErrOutOfRange = errors.New("out of range")
	// ErrObjNotFound is returned when a value-based search finds no match.
	ErrObjNotFound = errors.New("object not found")
	// ErrInvalidArgument is returned for malformed arguments, e.g. a nil comparator or collection.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidOperation is returned by enumerators whose source was modified after they were created, or that are
	// asked for the current element while not positioned on one.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrOutOfMemory is reserved for bounded containers refusing to grow. The Go runtime aborts on real
	// allocation failures, so the list itself never returns it.
	ErrOutOfMemory = errors.New("out of memory")
)
