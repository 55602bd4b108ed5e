package collection

import (
	"iter"
	"log/slog"
)

// All yields index / element pairs front to back. Iteration stops early if the list is modified meanwhile.
func (l *IndexedLinkedList[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		modCount, index := l.modCount, 0
		for n := l.head; n != nil; n = n.next {
			if !yield(index, n.value) {
				return
			}
			if l.modCount != modCount {
				slog.Warn("List was modified during iteration; stopping.", "index", index)
				enumeratorInvalidations.Inc()
				return
			}
			index++
		}
	}
}

// Values yields the elements front to back.
func (l *IndexedLinkedList[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range l.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward yields the elements back to front. Iteration stops early if the list is modified meanwhile.
func (l *IndexedLinkedList[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		modCount := l.modCount
		for n := l.tail; n != nil; n = n.prev {
			if !yield(n.value) {
				return
			}
			if l.modCount != modCount {
				slog.Warn("List was modified during backward iteration; stopping.")
				enumeratorInvalidations.Inc()
				return
			}
		}
	}
}
