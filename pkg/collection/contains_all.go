package collection

import (
	"encoding/binary"
	"errors"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	// bloomMinProbes is the smallest number of probed elements for which building a Bloom filter pays off.
	bloomMinProbes = 16
	// bloomFalsePositiveRate is the target false positive rate of the membership filter.
	bloomFalsePositiveRate = 0.01
)

// errStopEnumeration ends forEach early without reporting a failure.
var errStopEnumeration = errors.New("stop enumeration")

// membershipFilter builds a Bloom filter over the hashes of every element in the list.
func (l *IndexedLinkedList[T]) membershipFilter() *bloom.BloomFilter {
	hash := l.hasher()
	filter := bloom.NewWithEstimates(uint(l.count), bloomFalsePositiveRate)
	var key [8]byte
	for n := l.head; n != nil; n = n.next {
		binary.LittleEndian.PutUint64(key[:], hash(n.value))
		filter.Add(key[:])
	}
	return filter
}

// ContainsAll reports whether every element of `c` is in the list. An empty `c` is always contained.
// For many probes a Bloom filter over the list answers most misses without walking the chain.
func (l *IndexedLinkedList[T]) ContainsAll(c Collection[T]) (bool, error) {
	if c != nil && c.Count() == 0 {
		return true, nil
	}
	contains := l.Contains
	if c != nil && c.Count() >= bloomMinProbes && l.count > 0 {
		filter, hash := l.membershipFilter(), l.hasher()
		contains = func(v T) bool {
			var key [8]byte
			binary.LittleEndian.PutUint64(key[:], hash(v))
			return filter.Test(key[:]) && l.Contains(v)
		}
	}

	containsAll := true
	err := forEach(c, func(v T) error {
		if !contains(v) {
			containsAll = false
			return errStopEnumeration
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopEnumeration) {
		return false, err
	}
	return containsAll, nil
}
