package collection

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// HashFn hashes a single element. Elements that compare equal with == must produce equal hashes.
type HashFn[T any] func(v T) uint64

// hashPrime spreads positions apart when folding element hashes, making HashCode order-sensitive.
const hashPrime = 31

func hashUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}

// hashFloat hashes -0 like +0, since they compare equal.
func hashFloat(f float64) uint64 {
	if f == 0 {
		f = 0
	}
	return hashUint64(math.Float64bits(f))
}

// hashValue hashes any comparable value following the semantics of ==: interfaces by their dynamic value, structs
// and arrays field by field, pointers and channels by address.
func hashValue(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Invalid: // A nil interface.
		return hashUint64(0)
	case reflect.Bool:
		if v.Bool() {
			return hashUint64(1)
		}
		return hashUint64(0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return hashUint64(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return hashUint64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return hashFloat(v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		return hashFloat(real(c))*hashPrime + hashFloat(imag(c))
	case reflect.String:
		return xxhash.Sum64String(v.String())
	case reflect.Interface:
		return hashValue(v.Elem())
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return hashUint64(uint64(v.Pointer()))
	case reflect.Struct:
		h := uint64(v.NumField())
		for i := range v.NumField() {
			h = h*hashPrime + hashValue(v.Field(i))
		}
		return h
	case reflect.Array:
		h := uint64(v.Len())
		for i := range v.Len() {
			h = h*hashPrime + hashValue(v.Index(i))
		}
		return h
	default: // Slices, maps and funcs are not comparable; == panics on them before hashing matters.
		return hashUint64(uint64(v.Kind()))
	}
}

// DefaultHasher picks an xxhash-based HashFn for T. Common scalar types get a direct hasher; every other type,
// including interface types, is hashed through reflection by its dynamic value.
func DefaultHasher[T any]() HashFn[T] {
	switch any(*new(T)).(type) {
	case string:
		return func(v T) uint64 { return xxhash.Sum64String(any(v).(string)) }
	case int:
		// int is architecture dependent; widen it before hashing.
		return func(v T) uint64 { return hashUint64(uint64(any(v).(int))) }
	case int64:
		return func(v T) uint64 { return hashUint64(uint64(any(v).(int64))) }
	case int32:
		return func(v T) uint64 { return hashUint64(uint64(any(v).(int32))) }
	case uint:
		return func(v T) uint64 { return hashUint64(uint64(any(v).(uint))) }
	case uint64:
		return func(v T) uint64 { return hashUint64(any(v).(uint64)) }
	case uint32:
		return func(v T) uint64 { return hashUint64(uint64(any(v).(uint32))) }
	case float64:
		return func(v T) uint64 { return hashFloat(any(v).(float64)) }
	case float32:
		return func(v T) uint64 { return hashFloat(float64(any(v).(float32))) }
	default:
		return func(v T) uint64 { return hashValue(reflect.ValueOf(any(v))) }
	}
}

// hasher returns the configured element hasher or the default one. It never writes to the list, so read-only
// callers may share the list.
func (l *IndexedLinkedList[T]) hasher() HashFn[T] {
	if l.hash == nil {
		return DefaultHasher[T]()
	}
	return l.hash
}

// HashCode folds the element hashes in order. Lists that are Equals have the same HashCode.
func (l *IndexedLinkedList[T]) HashCode() uint64 {
	hash := l.hasher()
	h := uint64(l.count)
	for n := l.head; n != nil; n = n.next {
		h = h*hashPrime + hash(n.value)
	}
	return h
}
