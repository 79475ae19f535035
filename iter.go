//go:build go1.23

package dict

import "iter"

// All returns an iterator over the entries of d. It is backed by a
// safe iterator, so the dictionary may be mutated inside the loop.
func (d *Dict[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := d.SafeIterator()
		defer it.Release()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e.Key(), e.Value()) {
				return
			}
		}
	}
}

// Keys returns an iterator over the keys of d.
func (d *Dict[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		it := d.SafeIterator()
		defer it.Release()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e.Key()) {
				return
			}
		}
	}
}

// Values returns an iterator over the values of d.
func (d *Dict[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		it := d.SafeIterator()
		defer it.Release()
		for e := it.Next(); e != nil; e = it.Next() {
			if !yield(e.Value()) {
				return
			}
		}
	}
}
