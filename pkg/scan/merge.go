// Lists that are already sorted can be merged without sorting the result again. This module implements a heap-based
// k-way merge that lazily pulls from every input sequence, so only one pending element per input is held in memory.
// Values equal to the last emitted one are discarded, which keeps the first occurrence coming from the
// highest-priority (lowest index) sequence.

package scan

import (
	"container/heap"
	"errors"
	"iter"

	"github.com/nobletooth/tlist/pkg/utils"
)

// heapElement is a value pulled from sequences[seqIdx].
type heapElement[T any] struct {
	value  T
	seqIdx int
}

// mergeHeap holds the next pending value of every non-exhausted sequence.
type mergeHeap[T any] struct { // Implements heap.Interface.
	compare  utils.CompareFn[T]
	elements []heapElement[T]
}

var _ heap.Interface = (*mergeHeap[int])(nil)

func (mh *mergeHeap[T]) Len() int {
	return len(mh.elements)
}

// Less orders by value and breaks ties by sequence priority.
func (mh *mergeHeap[T]) Less(i, j int) bool {
	if order := mh.compare(mh.elements[i].value, mh.elements[j].value); order != 0 {
		return order < 0
	}
	return mh.elements[i].seqIdx < mh.elements[j].seqIdx
}

func (mh *mergeHeap[T]) Swap(i, j int) {
	mh.elements[i], mh.elements[j] = mh.elements[j], mh.elements[i]
}

func (mh *mergeHeap[T]) Push(x any) {
	element, ok := x.(heapElement[T])
	if !ok {
		utils.RaiseInvariant("merge", "pushed_invalid_type", "An item with invalid type was pushed to heap.")
		return
	}
	mh.elements = append(mh.elements, element)
}

func (mh *mergeHeap[T]) Pop() any {
	last := mh.elements[len(mh.elements)-1]
	mh.elements = mh.elements[:len(mh.elements)-1]
	return last
}

// MergeSorted merges ascending `sequences` into one ascending sequence without duplicates.
// Sequences are expected to be sorted by `compare`; unsorted input yields an unspecified order.
func MergeSorted[T any](compare utils.CompareFn[T], sequences []iter.Seq[T]) (iter.Seq[T], error) {
	if compare == nil {
		return nil, errors.New("expected a non-nil comparison function")
	}
	if len(sequences) == 0 {
		return nil, errors.New("expected a non-empty sequences")
	}

	return func(yield func(T) bool) {
		mh := &mergeHeap[T]{compare: compare, elements: make([]heapElement[T], 0, len(sequences))}
		pull := make([]func() (T, bool), len(sequences))
		for seqIdx, seq := range sequences {
			next, stop := iter.Pull(seq)
			defer stop()
			pull[seqIdx] = next
			if first, ok := next(); ok {
				heap.Push(mh, heapElement[T]{value: first, seqIdx: seqIdx})
			}
		}

		var last T
		emitted := false
		for mh.Len() > 0 {
			top := heap.Pop(mh).(heapElement[T])
			if next, ok := pull[top.seqIdx](); ok {
				heap.Push(mh, heapElement[T]{value: next, seqIdx: top.seqIdx})
			}
			if emitted && compare(top.value, last) == 0 {
				continue // Already emitted from a higher priority sequence.
			}
			if !yield(top.value) {
				return
			}
			last, emitted = top.value, true
		}
	}, nil
}
