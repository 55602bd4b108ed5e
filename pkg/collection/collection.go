// Package collection implements an index-addressable doubly linked list with fail-fast enumerators.
//
// The list is not safe for concurrent use. Enumerators snapshot the list's modification counter when they are
// created and fail with ErrInvalidOperation once the list changes underneath them, so misuse surfaces as an error
// instead of a corrupted walk.
package collection

import "fmt"

// Enumerator walks a collection forward.
type Enumerator[T any] interface {
	// MoveNext moves onto the next element. It returns ErrOutOfRange once there are no more elements and
	// ErrInvalidOperation if the collection was modified since the enumerator was created.
	MoveNext() error
	// GetCurrent returns the element under the cursor.
	GetCurrent() (T, error)
	// Reset puts the cursor back before the first element.
	Reset() error
}

// BidirectionalEnumerator is an Enumerator that can also walk backward.
type BidirectionalEnumerator[T any] interface {
	Enumerator[T]
	// MovePrevious moves onto the previous element; on a cursor that has no position yet, it starts from the last.
	MovePrevious() error
	// ResetLast puts the cursor back after the last element.
	ResetLast() error
}

// Collection is a finite sequence that can be enumerated. Bulk list operations accept any Collection.
type Collection[T any] interface {
	Count() int
	GetEnumerator() Enumerator[T]
}

// SliceCollection exposes a read-only copy of a slice as a Collection.
type SliceCollection[T any] struct { // Implements Collection.
	values []T
}

var _ Collection[int] = (*SliceCollection[int])(nil)

// NewSliceCollection copies `values` into a new SliceCollection.
func NewSliceCollection[T any](values ...T) *SliceCollection[T] {
	return &SliceCollection[T]{values: append([]T(nil), values...)}
}

func (s *SliceCollection[T]) Count() int {
	return len(s.values)
}

func (s *SliceCollection[T]) GetEnumerator() Enumerator[T] {
	return &sliceEnumerator[T]{values: s.values, position: -1}
}

// sliceEnumerator never gets invalidated since SliceCollection is immutable.
type sliceEnumerator[T any] struct {
	values   []T
	position int // -1 before the first element, len(values) after the last.
}

func (e *sliceEnumerator[T]) MoveNext() error {
	if e.position >= len(e.values)-1 {
		e.position = len(e.values)
		return fmt.Errorf("%w: end of sequence", ErrOutOfRange)
	}
	e.position++
	return nil
}

func (e *sliceEnumerator[T]) GetCurrent() (T, error) {
	if e.position < 0 || e.position >= len(e.values) {
		return *new(T), fmt.Errorf("%w: enumerator is not positioned on an element", ErrInvalidOperation)
	}
	return e.values[e.position], nil
}

func (e *sliceEnumerator[T]) Reset() error {
	e.position = -1
	return nil
}
