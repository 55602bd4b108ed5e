// Sorting runs a Hoare-partition quicksort over index positions. Elements are swapped by value, so a node keeps its
// position while the partition cursors step along the chain one link at a time. Pending sub-ranges live on an
// explicit stack instead of the call stack; the smaller half is always processed first, which bounds the stack by
// O(log n) ranges even for adversarial inputs. The sort is not stable: equal elements may change their order.

package collection

import (
	"fmt"

	"github.com/nobletooth/tlist/pkg/utils"
)

// FallibleCompareFn is a three-way comparison that may fail, e.g. when parsing its operands.
type FallibleCompareFn[T any] func(x, y T) (int, error)

// sortRange is a pending sub-range [lo, hi] together with its end nodes.
type sortRange[T any] struct {
	lo, hi         int
	loNode, hiNode *node[T]
}

// Sort orders the list ascending according to `compare`.
func (l *IndexedLinkedList[T]) Sort(compare utils.CompareFn[T]) error {
	if compare == nil {
		return fmt.Errorf("%w: nil comparator", ErrInvalidArgument)
	}
	return l.SortFunc(func(x, y T) (int, error) { return compare(x, y), nil })
}

// SortFunc orders the list ascending according to `compare`. The first comparator error aborts the sort and is
// returned; elements swapped until then keep their new positions.
func (l *IndexedLinkedList[T]) SortFunc(compare FallibleCompareFn[T]) error {
	if compare == nil {
		return fmt.Errorf("%w: nil comparator", ErrInvalidArgument)
	}
	if l.count < 2 {
		return nil
	}

	swapped := false
	defer func() {
		if swapped { // Values moved; enumerators would observe a different sequence.
			l.modCount++
		}
	}()

	pending := []sortRange[T]{{lo: 0, hi: l.count - 1, loNode: l.head, hiNode: l.tail}}
	for len(pending) > 0 {
		r := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if r.lo >= r.hi {
			continue
		}
		split, splitNode, didSwap, err := partition(r, compare)
		swapped = swapped || didSwap
		if err != nil {
			return err
		}
		left := sortRange[T]{lo: r.lo, hi: split, loNode: r.loNode, hiNode: splitNode}
		right := sortRange[T]{lo: split + 1, hi: r.hi, loNode: splitNode.next, hiNode: r.hiNode}
		// Push the larger half first so the smaller one is popped next.
		if left.hi-left.lo > right.hi-right.lo {
			pending = append(pending, left, right)
		} else {
			pending = append(pending, right, left)
		}
	}
	return nil
}

// partition splits `r` around the value at r.lo. It returns the boundary index j (and its node) such that every
// element in [lo, j] is <= pivot and every element in [j+1, hi] is >= pivot.
func partition[T any](r sortRange[T], compare FallibleCompareFn[T]) (int, *node[T], bool, error) {
	pivot := r.loNode.value
	swapped := false
	i, j := r.lo-1, r.hi+1
	var iNode, jNode *node[T] // nil until the cursor takes its first step.
	for {
		for { // Step j left while element[j] > pivot.
			if jNode == nil {
				jNode = r.hiNode
			} else {
				jNode = jNode.prev
			}
			j--
			if j < r.lo || jNode == nil {
				return 0, nil, swapped, fmt.Errorf("%w: inconsistent comparator", ErrInvalidArgument)
			}
			order, err := compare(jNode.value, pivot)
			if err != nil {
				return 0, nil, swapped, fmt.Errorf("failed to compare elements: %w", err)
			}
			if order <= 0 {
				break
			}
		}
		for { // Step i right while element[i] < pivot.
			if iNode == nil {
				iNode = r.loNode
			} else {
				iNode = iNode.next
			}
			i++
			if i > r.hi || iNode == nil {
				return 0, nil, swapped, fmt.Errorf("%w: inconsistent comparator", ErrInvalidArgument)
			}
			order, err := compare(iNode.value, pivot)
			if err != nil {
				return 0, nil, swapped, fmt.Errorf("failed to compare elements: %w", err)
			}
			if order >= 0 {
				break
			}
		}
		if i >= j {
			return j, jNode, swapped, nil
		}
		iNode.value, jNode.value = jNode.value, iNode.value
		swapped = true
	}
}
