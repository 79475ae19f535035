package dict

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// StringType returns a Type for string keys using the seeded
// byte-string hash. Values are stored as passed; set the Dup and
// Destroy callbacks on the result if ownership matters.
func StringType[V any]() Type[string, V] {
	return Type[string, V]{
		Hash:    StringHash,
		Compare: func(a, b string) bool { return a == b },
	}
}

// CaseStringType returns a Type for string keys that hashes and
// compares without regard to ASCII case.
func CaseStringType[V any]() Type[string, V] {
	return Type[string, V]{
		Hash:    func(s string) uint64 { return GenCaseHashFunction([]byte(s)) },
		Compare: strings.EqualFold,
	}
}

// BytesType returns a Type for []byte keys using the seeded
// byte-string hash.
func BytesType[V any]() Type[[]byte, V] {
	return Type[[]byte, V]{
		Hash:    GenHashFunction,
		Compare: bytes.Equal,
	}
}

// String converts d to a string representation using K's and V's
// String functions.
func String[K fmt.Stringer, V fmt.Stringer](d *Dict[K, V]) string {
	return StringFunc(d,
		func(key K) string { return key.String() },
		func(val V) string { return val.String() },
	)
}

type strKV struct {
	k string
	v string
}

// StringFunc converts d to a string representation with the help of
// strK and strV functions to stringify d's keys and values.
func StringFunc[K any, V any](d *Dict[K, V],
	strK func(key K) string,
	strV func(val V) string) string {
	if d == nil || d.Len() == 0 {
		return "dict.Dict[]"
	}
	strs := make([]strKV, d.Len())
	s := 0
	i := 0
	it := d.Iterator()
	for e := it.Next(); e != nil; e = it.Next() {
		kv := &strs[i]
		kv.k = strK(e.Key())
		kv.v = strV(e.Value())
		s += len(kv.k) + len(kv.v)
		i++
	}
	it.Release()
	slices.SortFunc(strs, func(a, b strKV) bool { return a.k < b.k })

	var b strings.Builder
	b.Grow(len("dict.Dict[]") + // space for header and footer
		len(strs)*2 - 1 + // space for delimiters
		s) // space for keys and values
	b.WriteString("dict.Dict[")
	for i, kv := range strs {
		if i != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(kv.k)
		b.WriteByte(':')
		b.WriteString(kv.v)
	}
	b.WriteByte(']')
	return b.String()
}

// Equal returns true if the same set of keys and values are in d1
// and d2. Values are compared using ==.
func Equal[K any, V comparable](d1, d2 *Dict[K, V]) bool {
	return EqualFunc(d1, d2, func(a, b V) bool { return a == b })
}

// EqualFunc returns true if the same set of keys and values are in
// d1 and d2. Values are compared using eq.
func EqualFunc[K, V any](d1, d2 *Dict[K, V], eq func(V, V) bool) bool {
	if d1.Len() != d2.Len() {
		return false
	}
	// Safe iteration: probing d2 runs its rehash step, and d2 may be
	// the same dictionary as d1.
	it := d1.SafeIterator()
	defer it.Release()
	for e := it.Next(); e != nil; e = it.Next() {
		v2, ok := d2.FetchValue(e.Key())
		if !ok || !eq(e.Value(), v2) {
			return false
		}
	}
	return true
}
