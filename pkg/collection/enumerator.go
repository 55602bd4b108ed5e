package collection

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var enumeratorInvalidations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "collection_enumerator_invalidations_total",
	Help: "Total number of enumerators that detected a modification of their list.",
})

// cursorPosition tells where an enumerator that is not on a node stands.
type cursorPosition uint8

const (
	unpositioned cursorPosition = iota // Fresh or reset; the first move picks the direction.
	onNode
	beforeFirst // Walked off the front.
	afterLast   // Walked off the back.
)

// listEnumerator is a fail-fast bidirectional cursor over IndexedLinkedList.
type listEnumerator[T comparable] struct { // Implements BidirectionalEnumerator.
	list        *IndexedLinkedList[T]
	current     *node[T]
	position    cursorPosition
	modCount    uint64 // Snapshot of list.modCount at creation.
	invalidated bool
}

var _ BidirectionalEnumerator[int] = (*listEnumerator[int])(nil)

// GetEnumerator returns a forward enumerator positioned before the first element.
func (l *IndexedLinkedList[T]) GetEnumerator() Enumerator[T] {
	return l.GetBidirectionalEnumerator()
}

// GetBidirectionalEnumerator returns an enumerator that has no position yet: MoveNext starts from the first element
// and MovePrevious from the last.
func (l *IndexedLinkedList[T]) GetBidirectionalEnumerator() BidirectionalEnumerator[T] {
	return &listEnumerator[T]{list: l, modCount: l.modCount}
}

// checkModification fails once the list changed after the enumerator was created.
func (e *listEnumerator[T]) checkModification() error {
	if e.modCount == e.list.modCount {
		return nil
	}
	if !e.invalidated {
		e.invalidated = true
		enumeratorInvalidations.Inc()
	}
	return fmt.Errorf("%w: list was modified after the enumerator was created", ErrInvalidOperation)
}

func (e *listEnumerator[T]) MoveNext() error {
	if err := e.checkModification(); err != nil {
		return err
	}
	switch e.position {
	case unpositioned, beforeFirst:
		e.current = e.list.head
	case onNode:
		e.current = e.current.next
	case afterLast:
		return fmt.Errorf("%w: end of sequence", ErrOutOfRange)
	}
	if e.current == nil {
		e.position = afterLast
		return fmt.Errorf("%w: end of sequence", ErrOutOfRange)
	}
	e.position = onNode
	return nil
}

func (e *listEnumerator[T]) MovePrevious() error {
	if err := e.checkModification(); err != nil {
		return err
	}
	switch e.position {
	case unpositioned, afterLast:
		e.current = e.list.tail
	case onNode:
		e.current = e.current.prev
	case beforeFirst:
		return fmt.Errorf("%w: start of sequence", ErrOutOfRange)
	}
	if e.current == nil {
		e.position = beforeFirst
		return fmt.Errorf("%w: start of sequence", ErrOutOfRange)
	}
	e.position = onNode
	return nil
}

func (e *listEnumerator[T]) GetCurrent() (T, error) {
	if err := e.checkModification(); err != nil {
		return *new(T), err
	}
	if e.position != onNode || e.current == nil {
		return *new(T), fmt.Errorf("%w: enumerator is not positioned on an element", ErrInvalidOperation)
	}
	return e.current.value, nil
}

// Reset puts the cursor back to its initial state.
func (e *listEnumerator[T]) Reset() error {
	if err := e.checkModification(); err != nil {
		return err
	}
	e.current = nil
	e.position = unpositioned
	return nil
}

// ResetLast puts the cursor after the last element, so that MovePrevious lands on the tail.
func (e *listEnumerator[T]) ResetLast() error {
	if err := e.checkModification(); err != nil {
		return err
	}
	e.current = nil
	e.position = afterLast
	return nil
}
