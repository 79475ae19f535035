package dict

import "math/bits"

// Scan iterates the dictionary one bucket position at a time. Start
// with cursor 0, pass each returned cursor back in, and stop when 0
// comes back. fn is called for every entry of the visited buckets.
//
// The guarantee: every entry present in the dictionary for the whole
// duration of the scan is visited at least once. Entries may be
// visited more than once, and no state is held between calls beyond
// the cursor itself, so the table is free to grow, shrink, or rehash
// between calls.
//
// That resilience comes from reverse binary iteration (Pieter
// Noordhuis's algorithm): instead of incrementing the cursor's low
// bits, the masked cursor's highest bits are incremented first, by
// reversing the cursor's bits, adding one, and reversing back.
// Because a bucket at index i in a table of size 2^n splits into
// buckets ?i (one extra high bit) when the table doubles, and merges
// back by dropping that bit when it halves, high-bit-first order
// means a resize between calls only ever re-maps unvisited positions
// onto unvisited positions. While a rehash is in progress both
// tables are live, so the bucket of the smaller table is emitted
// together with all the larger-table buckets its entries can occupy
// (those sharing its low bits).
func (d *Dict[K, V]) Scan(cursor uint64, fn func(e *Entry[K, V])) uint64 {
	if d.Len() == 0 {
		return 0
	}

	if !d.rehashing() {
		t0 := &d.ht[0]
		m0 := t0.sizemask
		for e := t0.buckets[cursor&m0]; e != nil; e = e.next {
			fn(e)
		}
		return nextCursor(cursor, m0)
	}

	t0, t1 := &d.ht[0], &d.ht[1]
	if t0.size > t1.size {
		t0, t1 = t1, t0
	}
	m0, m1 := t0.sizemask, t1.sizemask

	for e := t0.buckets[cursor&m0]; e != nil; e = e.next {
		fn(e)
	}

	// All larger-table buckets whose index has the same low (m0)
	// bits as the cursor: iterate the bits in m1 but not in m0.
	for {
		for e := t1.buckets[cursor&m1]; e != nil; e = e.next {
			fn(e)
		}
		cursor = (((cursor | m0) + 1) &^ m0) | (cursor & m0)
		if cursor&(m0^m1) == 0 {
			break
		}
	}
	return nextCursor(cursor, m0)
}

// nextCursor advances the masked cursor high-bit-first: set every
// bit outside the mask so the reversed increment carries straight
// into the masked bits, then reverse, increment, reverse back.
func nextCursor(cursor, mask uint64) uint64 {
	cursor |= ^mask
	cursor = bits.Reverse64(cursor)
	cursor++
	return bits.Reverse64(cursor)
}
