package collection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nobletooth/tlist/pkg/utils"
)

// node holds one element of IndexedLinkedList. Nodes never leave the list that created them.
type node[T any] struct {
	next  *node[T]
	prev  *node[T]
	value T
}

// IndexedLinkedList is a doubly linked list addressable by index. It permits duplicates and keeps insertion order
// unless sorted. The zero value is an empty list ready to use.
//
// Every structural change (and SetAt) bumps the modification counter, which invalidates outstanding enumerators.
type IndexedLinkedList[T comparable] struct {
	head     *node[T]
	tail     *node[T]
	count    int
	modCount uint64
	hash     HashFn[T] // nil means DefaultHasher.
}

var _ Collection[int] = (*IndexedLinkedList[int])(nil)

// New returns an empty list hashing its elements with DefaultHasher.
func New[T comparable]() *IndexedLinkedList[T] {
	return &IndexedLinkedList[T]{hash: DefaultHasher[T]()}
}

// NewWithHasher returns an empty list hashing its elements with `hash`. Equal elements must hash equally.
func NewWithHasher[T comparable](hash HashFn[T]) *IndexedLinkedList[T] {
	return &IndexedLinkedList[T]{hash: hash}
}

// FromSlice returns a list holding `values` in order.
func FromSlice[T comparable](values []T) *IndexedLinkedList[T] {
	l := New[T]()
	for _, v := range values {
		l.insertAfter(l.tail, v)
	}
	return l
}

// Count returns the number of elements in the list.
func (l *IndexedLinkedList[T]) Count() int {
	return l.count
}

// checkIndex validates an index addressing an existing element.
func (l *IndexedLinkedList[T]) checkIndex(index int) error {
	if index < 0 || index >= l.count {
		return fmt.Errorf("%w: index %d, count %d", ErrOutOfRange, index, l.count)
	}
	return nil
}

// checkInsertIndex validates an insertion point; `index == count` appends.
func (l *IndexedLinkedList[T]) checkInsertIndex(index int) error {
	if index < 0 || index > l.count {
		return fmt.Errorf("%w: insertion index %d, count %d", ErrOutOfRange, index, l.count)
	}
	return nil
}

// checkRange validates the window of `count` elements starting at `start`. The start must address an existing
// element unless the list is empty.
func (l *IndexedLinkedList[T]) checkRange(start, count int) error {
	switch {
	case start < 0 || count < 0:
		return fmt.Errorf("%w: negative range [%d, +%d)", ErrOutOfRange, start, count)
	case l.count > 0 && start >= l.count:
		return fmt.Errorf("%w: start %d, count %d", ErrOutOfRange, start, l.count)
	case start+count > l.count:
		return fmt.Errorf("%w: range [%d, %d) exceeds count %d", ErrOutOfRange, start, start+count, l.count)
	}
	return nil
}

// nodeAt returns the node at a validated `index`, walking from the nearer end.
func (l *IndexedLinkedList[T]) nodeAt(index int) *node[T] {
	var n *node[T]
	if index < l.count/2 {
		n = l.head
		for i := 0; i < index && n != nil; i++ {
			n = n.next
		}
	} else {
		n = l.tail
		for i := l.count - 1; i > index && n != nil; i-- {
			n = n.prev
		}
	}
	if n == nil {
		utils.RaiseInvariant("collection", "short_node_chain",
			"Node chain ended before the requested index.", "index", index, "count", l.count)
	}
	return n
}

// findNode returns the first node holding `v` and its index, or nil and -1.
func (l *IndexedLinkedList[T]) findNode(v T) (*node[T], int) {
	index := 0
	for n := l.head; n != nil; n = n.next {
		if n.value == v {
			return n, index
		}
		index++
	}
	return nil, -1
}

// insertAfter links a new node holding `v` after `prev`; a nil `prev` inserts at the front.
func (l *IndexedLinkedList[T]) insertAfter(prev *node[T], v T) *node[T] {
	n := &node[T]{value: v, prev: prev}
	if prev == nil {
		n.next = l.head
		l.head = n
	} else {
		n.next = prev.next
		prev.next = n
	}
	if n.next != nil {
		n.next.prev = n
	} else { // New node is the tail.
		l.tail = n
	}
	l.count++
	l.modCount++
	return n
}

// unlink removes `n` from the chain and returns its successor.
func (l *IndexedLinkedList[T]) unlink(n *node[T]) *node[T] {
	next := n.next
	if n.prev != nil {
		n.prev.next = n.next
	} else { // Node is the head.
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else { // Node is the tail.
		l.tail = n.prev
	}
	n.next = nil
	n.prev = nil
	l.count--
	l.modCount++
	return next
}

// snapshotIfSelf copies `c` when it is this very list, so bulk operations don't trip over their own mutations.
func (l *IndexedLinkedList[T]) snapshotIfSelf(c Collection[T]) Collection[T] {
	if other, ok := c.(*IndexedLinkedList[T]); ok && other == l {
		return NewSliceCollection(l.ToSlice()...)
	}
	return c
}

// forEach enumerates `c` and calls `fn` on every element, stopping at the first error.
func forEach[T any](c Collection[T], fn func(T) error) error {
	if c == nil {
		return fmt.Errorf("%w: nil collection", ErrInvalidArgument)
	}
	enumerator := c.GetEnumerator()
	for {
		if err := enumerator.MoveNext(); errors.Is(err, ErrOutOfRange) {
			return nil
		} else if err != nil {
			return err
		}
		v, err := enumerator.GetCurrent()
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Add appends `v` to the end of the list.
func (l *IndexedLinkedList[T]) Add(v T) error {
	l.insertAfter(l.tail, v)
	return nil
}

// AddAll appends every element of `c` in enumeration order. Elements appended before a failure stay in the list.
func (l *IndexedLinkedList[T]) AddAll(c Collection[T]) error {
	return forEach(l.snapshotIfSelf(c), func(v T) error {
		l.insertAfter(l.tail, v)
		return nil
	})
}

// GetAt returns the element at `index`.
func (l *IndexedLinkedList[T]) GetAt(index int) (T, error) {
	if err := l.checkIndex(index); err != nil {
		return *new(T), err
	}
	n := l.nodeAt(index)
	if n == nil {
		return *new(T), fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	return n.value, nil
}

// GetRange returns a new list with `count` elements copied from `start` on.
func (l *IndexedLinkedList[T]) GetRange(start, count int) (*IndexedLinkedList[T], error) {
	if err := l.checkRange(start, count); err != nil {
		return nil, err
	}
	result := NewWithHasher(l.hash)
	if count == 0 {
		return result, nil
	}
	n := l.nodeAt(start)
	for i := 0; i < count && n != nil; i++ {
		result.insertAfter(result.tail, n.value)
		n = n.next
	}
	if result.count != count {
		return nil, fmt.Errorf("%w: copied %d of %d elements", ErrOutOfRange, result.count, count)
	}
	return result, nil
}

// IndexOf returns the index of the first element equal to `v`.
func (l *IndexedLinkedList[T]) IndexOf(v T) (int, error) {
	return l.IndexOfIn(v, 0, l.count)
}

// IndexOfFrom returns the index of the first element equal to `v` at or after `start`.
func (l *IndexedLinkedList[T]) IndexOfFrom(v T, start int) (int, error) {
	return l.IndexOfIn(v, start, l.count-start)
}

// IndexOfIn returns the index of the first element equal to `v` among the `count` elements from `start` on.
func (l *IndexedLinkedList[T]) IndexOfIn(v T, start, count int) (int, error) {
	if err := l.checkRange(start, count); err != nil {
		return -1, err
	}
	if count > 0 {
		n := l.nodeAt(start)
		for i := start; i < start+count && n != nil; i++ {
			if n.value == v {
				return i, nil
			}
			n = n.next
		}
	}
	return -1, fmt.Errorf("%w: in range [%d, %d)", ErrObjNotFound, start, start+count)
}

// LastIndexOf returns the index of the last element equal to `v`.
func (l *IndexedLinkedList[T]) LastIndexOf(v T) (int, error) {
	index := l.count - 1
	for n := l.tail; n != nil; n = n.prev {
		if n.value == v {
			return index, nil
		}
		index--
	}
	return -1, ErrObjNotFound
}

// InsertAt inserts `v` so that it becomes the element at `index`; `index == Count()` appends.
func (l *IndexedLinkedList[T]) InsertAt(v T, index int) error {
	if err := l.checkInsertIndex(index); err != nil {
		return err
	}
	var prev *node[T]
	if index > 0 {
		if prev = l.nodeAt(index - 1); prev == nil {
			return fmt.Errorf("%w: insertion index %d", ErrOutOfRange, index)
		}
	}
	l.insertAfter(prev, v)
	return nil
}

// InsertAllAt inserts every element of `c`, in order, starting at `start`.
// Elements inserted before a failure stay in the list.
func (l *IndexedLinkedList[T]) InsertAllAt(c Collection[T], start int) error {
	if err := l.checkInsertIndex(start); err != nil {
		return err
	}
	var prev *node[T]
	if start > 0 {
		if prev = l.nodeAt(start - 1); prev == nil {
			return fmt.Errorf("%w: insertion index %d", ErrOutOfRange, start)
		}
	}
	return forEach(l.snapshotIfSelf(c), func(v T) error {
		prev = l.insertAfter(prev, v)
		return nil
	})
}

// Remove removes the first element equal to `v`.
func (l *IndexedLinkedList[T]) Remove(v T) error {
	n, _ := l.findNode(v)
	if n == nil {
		return ErrObjNotFound
	}
	l.unlink(n)
	return nil
}

// RemoveAll removes, for every element of `c`, the first equal element of this list. Elements of `c` missing from
// the list are skipped; only enumeration errors of `c` are returned.
func (l *IndexedLinkedList[T]) RemoveAll(c Collection[T]) error {
	return forEach(l.snapshotIfSelf(c), func(v T) error {
		if err := l.Remove(v); errors.Is(err, ErrObjNotFound) {
			slog.Debug("Skipped removing a missing element.", "value", v)
		} else if err != nil {
			return err
		}
		return nil
	})
}

// RemoveAt removes the element at `index`.
func (l *IndexedLinkedList[T]) RemoveAt(index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	n := l.nodeAt(index)
	if n == nil {
		return fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	l.unlink(n)
	return nil
}

// RemoveRange removes `count` consecutive elements starting at `start`.
func (l *IndexedLinkedList[T]) RemoveRange(start, count int) error {
	if err := l.checkRange(start, count); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	n := l.nodeAt(start)
	for i := 0; i < count && n != nil; i++ {
		n = l.unlink(n)
	}
	return nil
}

// Clear removes all elements.
func (l *IndexedLinkedList[T]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		n.next = nil
		n.prev = nil
		n = next
		l.modCount++
	}
	l.head = nil
	l.tail = nil
	l.count = 0
}

// SetAt replaces the element at `index` in place. Outstanding enumerators become invalid.
func (l *IndexedLinkedList[T]) SetAt(v T, index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	n := l.nodeAt(index)
	if n == nil {
		return fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	n.value = v
	l.modCount++
	return nil
}

// Contains reports whether any element equals `v`.
func (l *IndexedLinkedList[T]) Contains(v T) bool {
	n, _ := l.findNode(v)
	return n != nil
}

// Equals reports whether `other` is an IndexedLinkedList of the same element type holding equal elements in the
// same order.
func (l *IndexedLinkedList[T]) Equals(other any) bool {
	otherList, ok := other.(*IndexedLinkedList[T])
	if !ok || otherList == nil {
		return false
	}
	if otherList == l {
		return true
	}
	if otherList.count != l.count {
		return false
	}
	for n, m := l.head, otherList.head; n != nil && m != nil; n, m = n.next, m.next {
		if n.value != m.value {
			return false
		}
	}
	return true
}

// ToSlice copies the elements into a new slice.
func (l *IndexedLinkedList[T]) ToSlice() []T {
	values := make([]T, 0, l.count)
	for n := l.head; n != nil; n = n.next {
		values = append(values, n.value)
	}
	return values
}

func (l *IndexedLinkedList[T]) String() string {
	return fmt.Sprint(l.ToSlice())
}

// Validate walks the chain in both directions and checks it agrees with the recorded count and ends.
func (l *IndexedLinkedList[T]) Validate() error {
	if (l.count == 0) != (l.head == nil) || (l.head == nil) != (l.tail == nil) {
		return fmt.Errorf("count %d disagrees with head/tail presence", l.count)
	}
	if l.head != nil && l.head.prev != nil {
		return errors.New("head has a predecessor")
	}
	if l.tail != nil && l.tail.next != nil {
		return errors.New("tail has a successor")
	}
	forward, last := 0, (*node[T])(nil)
	for n := l.head; n != nil; n = n.next {
		if n.prev != last {
			return fmt.Errorf("node %d has a broken back link", forward)
		}
		last = n
		if forward++; forward > l.count {
			return fmt.Errorf("forward walk exceeds count %d", l.count)
		}
	}
	if forward != l.count || last != l.tail {
		return fmt.Errorf("forward walk visited %d nodes, count is %d", forward, l.count)
	}
	backward, first := 0, (*node[T])(nil)
	for n := l.tail; n != nil; n = n.prev {
		first = n
		if backward++; backward > l.count {
			return fmt.Errorf("backward walk exceeds count %d", l.count)
		}
	}
	if backward != l.count || first != l.head {
		return fmt.Errorf("backward walk visited %d nodes, count is %d", backward, l.count)
	}
	return nil
}
