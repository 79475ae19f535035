package dict

import "fmt"

// Iterator walks every live entry of a Dict, covering ht[0] in index
// order and continuing into ht[1] while a rehash is in progress.
//
// A safe iterator (SafeIterator) pins the table: while any safe
// iterator is open, implicit rehash steps are suppressed, so the
// caller may Add, Find, and Delete freely during iteration.
//
// An unsafe iterator (Iterator) takes no pin. The caller must limit
// itself to non-mutating operations; this is checked with a
// fingerprint at Release time, and a violation aborts the process.
type Iterator[K, V any] struct {
	d           *Dict[K, V]
	table       int
	index       int64
	safe        bool
	entry       *Entry[K, V]
	nextEntry   *Entry[K, V]
	fingerprint uint64
}

// Iterator returns an unsafe iterator over d. See Release for the
// rules it enforces.
func (d *Dict[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{d: d, index: -1}
}

// SafeIterator returns a safe iterator over d. Rehash migration is
// paused until it is Released, so entries keep their bucket
// positions and mutation during iteration is allowed.
func (d *Dict[K, V]) SafeIterator() *Iterator[K, V] {
	it := d.Iterator()
	it.safe = true
	return it
}

// Next returns the next entry, or nil when iteration is complete.
// The next chain pointer is fetched before returning, so deleting
// the returned entry (with a safe iterator) is allowed.
func (it *Iterator[K, V]) Next() *Entry[K, V] {
	for {
		if it.entry == nil {
			ht := &it.d.ht[it.table]
			if it.index == -1 && it.table == 0 {
				// First advance: take the pin, or the fingerprint.
				if it.safe {
					it.d.iterators++
				} else {
					it.fingerprint = it.d.fingerprint()
				}
			}
			it.index++
			if it.index >= int64(ht.size) {
				if it.d.rehashing() && it.table == 0 {
					it.table = 1
					it.index = 0
					ht = &it.d.ht[1]
				} else {
					return nil
				}
			}
			it.entry = ht.buckets[it.index]
		} else {
			it.entry = it.nextEntry
		}
		if it.entry != nil {
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// Release ends the iteration: a safe iterator drops its pin, an
// unsafe one re-checks the fingerprint taken at the first Next. A
// mismatch means the caller mutated the dictionary in a way that
// moved entries or resized tables mid-iteration. That is a broken
// caller, not a recoverable condition -- chain pointers may already
// have been walked after they were relinked -- so Release panics
// instead of returning an error.
func (it *Iterator[K, V]) Release() {
	if !(it.index == -1 && it.table == 0) {
		if it.safe {
			it.d.iterators--
		} else if it.fingerprint != it.d.fingerprint() {
			panic(fmt.Sprintf(
				"dict: unsafe iterator released after dictionary mutation (fingerprint %x != %x)",
				it.d.fingerprint(), it.fingerprint))
		}
	}
}
