// Package dict provides Dict, a chained hash table with incremental
// (progressive) rehashing. The table grows and shrinks in powers of
// two, but entries are migrated to the resized table a few buckets at
// a time, interleaved with normal operations, so no single call ever
// pays for rehashing the whole table.
//
// Users provide the hashing and comparison behavior through a Type
// descriptor. The following requirements are the user's responsibility
// to follow:
//   - Compare(a, b) => Hash(a) == Hash(b)
//   - Compare(a, a) must be true for all values of a. Be careful
//     around NaN float values.
//   - If a key contains references -- such as pointers, maps, or
//     slices -- modifying the referenced data in a way that affects
//     the result of the Compare or Hash functions will result in
//     undefined behavior.
//   - For good performance hash functions should return uniformly
//     distributed data across the entire 64-bits of the value.
//
// A Dict is not safe for concurrent use. It is designed for a single
// logical thread of control, cooperative at most: the bounded rehash
// batches and the Empty progress callback exist so a caller embedded
// in an event loop can yield between chunks of work.
package dict

import (
	"errors"
	"time"
	"unsafe"
)

const (
	// Minimum number of buckets. Every table size is a power of two
	// at least this large.
	initialSize = 4

	// Automatic growth normally triggers at a load factor of 1
	// (used >= size). When resizing is disabled -- typically while a
	// copy-on-write snapshot is in progress -- growth is still forced
	// once the average chain length exceeds forceResizeRatio, since
	// unbounded chains would turn every operation O(n).
	forceResizeRatio = 5

	// A rehash batch asked to move n buckets gives up after visiting
	// emptyVisitsPerStep*n empty buckets, so a mostly-drained table
	// doesn't make single steps O(size).
	emptyVisitsPerStep = 10

	// How often the Empty progress callback fires, in buckets.
	emptyCallbackInterval = 65536

	// rehashidx value while no rehash is in progress.
	notRehashing = -1
)

var (
	// ErrKeyExists is returned by Add and AddRaw when the key is
	// already present.
	ErrKeyExists = errors.New("dict: key already exists")

	// ErrKeyNotFound is returned by Delete and DeleteNoFree when no
	// entry matches the key.
	ErrKeyNotFound = errors.New("dict: key not found")

	// ErrRehashing is returned by Expand and Resize while an
	// incremental rehash is in progress.
	ErrRehashing = errors.New("dict: rehash in progress")

	// ErrInvalidSize is returned by Expand when the requested size is
	// below the current element count or rounds to the current size.
	ErrInvalidSize = errors.New("dict: invalid expand size")

	// ErrResizeDisabled is returned by Resize while automatic
	// resizing is disabled.
	ErrResizeDisabled = errors.New("dict: resizing is disabled")
)

// Type supplies the pluggable behavior of a Dict. Hash and Compare
// are required; the remaining callbacks default to identity (Dup*)
// and no-op (Destroy*) when nil. A Type is fixed at creation time.
type Type[K, V any] struct {
	// Hash returns the hash of a key. Required.
	Hash func(key K) uint64
	// Compare reports whether two keys are equal. Required.
	Compare func(a, b K) bool
	// DupKey copies a key before it is stored, letting the Dict own
	// the copy. When nil the key is stored as passed.
	DupKey func(key K) K
	// DupValue copies a value before it is stored. When nil the
	// value is stored as passed.
	DupValue func(val V) V
	// DestroyKey releases a key removed from the Dict.
	DestroyKey func(key K)
	// DestroyValue releases a value removed or overwritten.
	DestroyValue func(val V)
}

// Entry is a single key/value pair. Entries hashing to the same
// bucket are chained through next.
type Entry[K, V any] struct {
	key  K
	val  V
	next *Entry[K, V]
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K { return e.key }

// Value returns the entry's value.
func (e *Entry[K, V]) Value() V { return e.val }

// table is one hash table: a power-of-two array of chain heads. A
// Dict holds two; the second is only allocated during a rehash.
type table[K, V any] struct {
	buckets  []*Entry[K, V]
	size     uint64
	sizemask uint64 // size - 1, for indexing by hash&sizemask
	used     uint64
}

func (t *table[K, V]) reset() {
	t.buckets = nil
	t.size = 0
	t.sizemask = 0
	t.used = 0
}

// Dict is a hash table mapping keys of type K to values of type V.
// The zero value is not usable; call New.
type Dict[K, V any] struct {
	typ Type[K, V]

	// ht[0] is the main table. ht[1] is allocated only while
	// rehashing and receives all new inserts until ht[0] drains.
	ht [2]table[K, V]

	// Next ht[0] bucket to migrate, or notRehashing. While a rehash
	// is in progress every ht[0] bucket below rehashidx is empty.
	rehashidx int64

	// Number of open safe iterators. Rehash steps are suppressed
	// while this is non-zero so bucket contents stay put.
	iterators uint64

	// Automatic growth and Resize are gated on this flag; Expand is
	// not. See DisableResize.
	canResize bool
}

// New returns an empty Dict using the given Type. The first table is
// not allocated until the first insert. New panics if typ.Hash or
// typ.Compare is nil, since no useful default exists for either.
func New[K, V any](typ Type[K, V]) *Dict[K, V] {
	if typ.Hash == nil || typ.Compare == nil {
		panic("dict: Type needs Hash and Compare functions")
	}
	return &Dict[K, V]{
		typ:       typ,
		rehashidx: notRehashing,
		canResize: true,
	}
}

// Len returns the number of entries across both tables.
func (d *Dict[K, V]) Len() uint64 {
	return d.ht[0].used + d.ht[1].used
}

// Slots returns the total number of buckets currently allocated.
func (d *Dict[K, V]) Slots() uint64 {
	return d.ht[0].size + d.ht[1].size
}

// rehashing reports whether an incremental rehash is in progress.
func (d *Dict[K, V]) rehashing() bool {
	return d.rehashidx != notRehashing
}

// EnableResize allows automatic growth and Resize.
func (d *Dict[K, V]) EnableResize() { d.canResize = true }

// DisableResize prevents automatic growth and Resize. It is meant
// for windows where moving entries is costly -- e.g. while a
// copy-on-write snapshot wants memory pages stable. Growth is still
// forced if the load factor passes forceResizeRatio, and explicit
// Expand calls are unaffected.
func (d *Dict[K, V]) DisableResize() { d.canResize = false }

// dupKey applies the Type's key duplicator, if any.
func (d *Dict[K, V]) dupKey(key K) K {
	if d.typ.DupKey != nil {
		return d.typ.DupKey(key)
	}
	return key
}

// setVal stores val into e, duplicating it if the Type asks for that.
func (d *Dict[K, V]) setVal(e *Entry[K, V], val V) {
	if d.typ.DupValue != nil {
		e.val = d.typ.DupValue(val)
	} else {
		e.val = val
	}
}

// SetValue stores val into e, applying the Type's DupValue. Meant
// for entries obtained from AddRaw and ReplaceRaw. The previous
// value is overwritten without its Destroy callback; use Replace
// when that matters.
func (d *Dict[K, V]) SetValue(e *Entry[K, V], val V) {
	d.setVal(e, val)
}

func (d *Dict[K, V]) destroyKey(key K) {
	if d.typ.DestroyKey != nil {
		d.typ.DestroyKey(key)
	}
}

func (d *Dict[K, V]) destroyVal(val V) {
	if d.typ.DestroyValue != nil {
		d.typ.DestroyValue(val)
	}
}

// nextPower returns the smallest power of two >= size, at least
// initialSize.
func nextPower(size uint64) uint64 {
	i := uint64(initialSize)
	for i < size {
		i *= 2
	}
	return i
}

// Expand grows (or initializes) the dictionary to hold at least size
// entries, rounding up to a power of two. It fails while a rehash is
// in progress, when size is below the current entry count, or when
// the rounded size equals the current table size. On success against
// a non-empty table, an incremental rehash into the new table begins;
// on an empty table the new size takes effect immediately.
func (d *Dict[K, V]) Expand(size uint64) error {
	if d.rehashing() {
		return ErrRehashing
	}
	if d.ht[0].used > size {
		return ErrInvalidSize
	}
	realsize := nextPower(size)
	if realsize == d.ht[0].size {
		return ErrInvalidSize
	}

	n := table[K, V]{
		buckets:  make([]*Entry[K, V], realsize),
		size:     realsize,
		sizemask: realsize - 1,
	}

	// First allocation: no entries to migrate, install directly.
	if d.ht[0].buckets == nil {
		d.ht[0] = n
		return nil
	}

	d.ht[1] = n
	d.rehashidx = 0
	return nil
}

// Resize shrinks the table to the smallest power of two that holds
// the current entries. Subject to the resize-enable flag and refused
// during a rehash.
func (d *Dict[K, V]) Resize() error {
	if !d.canResize {
		return ErrResizeDisabled
	}
	if d.rehashing() {
		return ErrRehashing
	}
	minimal := d.ht[0].used
	if minimal < initialSize {
		minimal = initialSize
	}
	return d.Expand(minimal)
}

// expandIfNeeded applies the automatic growth policy before an
// insert. See the forceResizeRatio comment for the disabled-resize
// escape hatch.
func (d *Dict[K, V]) expandIfNeeded() {
	if d.rehashing() {
		return
	}
	if d.ht[0].size == 0 {
		d.Expand(initialSize)
		return
	}
	if d.ht[0].used >= d.ht[0].size &&
		(d.canResize || d.ht[0].used/d.ht[0].size > forceResizeRatio) {
		d.Expand(d.ht[0].used * 2)
	}
}

// Rehash migrates up to n non-empty buckets from ht[0] to ht[1] and
// reports whether more work remains. To bound the cost of walking
// runs of already-drained buckets, a call gives up early after
// visiting emptyVisitsPerStep*n empty buckets. When the last entry
// leaves ht[0], ht[1] is installed as the main table and the
// dictionary leaves the rehashing state.
func (d *Dict[K, V]) Rehash(n int) bool {
	if !d.rehashing() {
		return false
	}
	emptyVisits := n * emptyVisitsPerStep

	for ; n > 0 && d.ht[0].used != 0; n-- {
		for d.ht[0].buckets[d.rehashidx] == nil {
			d.rehashidx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}

		// Relink every entry of this bucket into ht[1]. Head
		// insertion, same as AddRaw.
		e := d.ht[0].buckets[d.rehashidx]
		for e != nil {
			next := e.next
			idx := d.typ.Hash(e.key) & d.ht[1].sizemask
			e.next = d.ht[1].buckets[idx]
			d.ht[1].buckets[idx] = e
			d.ht[0].used--
			d.ht[1].used++
			e = next
		}
		d.ht[0].buckets[d.rehashidx] = nil
		d.rehashidx++
	}

	if d.ht[0].used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1].reset()
		d.rehashidx = notRehashing
		return false
	}
	return true
}

// RehashMilliseconds rehashes in batches of 100 buckets until the
// table is fully migrated or more than ms milliseconds have passed.
// It returns the number of batched buckets processed.
func (d *Dict[K, V]) RehashMilliseconds(ms int64) int {
	start := time.Now()
	rehashes := 0
	for d.Rehash(100) {
		rehashes += 100
		if time.Since(start) > time.Duration(ms)*time.Millisecond {
			break
		}
	}
	return rehashes
}

// rehashStep performs a single bucket of migration on behalf of a
// regular operation. Skipped while a safe iterator is open: moving
// entries between buckets would break its traversal.
func (d *Dict[K, V]) rehashStep() {
	if d.iterators == 0 {
		d.Rehash(1)
	}
}

// keyIndex returns the bucket index the key should be inserted at in
// the insertion target table, or ok=false if the key already exists
// in either table. Runs the automatic growth policy first.
func (d *Dict[K, V]) keyIndex(key K) (uint64, bool) {
	d.expandIfNeeded()
	h := d.typ.Hash(key)
	var idx uint64
	for tbl := 0; tbl <= 1; tbl++ {
		idx = h & d.ht[tbl].sizemask
		for e := d.ht[tbl].buckets[idx]; e != nil; e = e.next {
			if d.typ.Compare(key, e.key) {
				return 0, false
			}
		}
		if !d.rehashing() {
			break
		}
	}
	return idx, true
}

// Add inserts a key/value pair. It returns ErrKeyExists if the key
// is already present.
func (d *Dict[K, V]) Add(key K, val V) error {
	e, err := d.AddRaw(key)
	if err != nil {
		return err
	}
	d.setVal(e, val)
	return nil
}

// AddRaw inserts key with no value set and returns the new entry,
// letting the caller fill the value in. Returns ErrKeyExists if the
// key is already present. While a rehash is in progress the entry
// goes into the new table, and one migration step runs first.
func (d *Dict[K, V]) AddRaw(key K) (*Entry[K, V], error) {
	if d.rehashing() {
		d.rehashStep()
	}
	idx, ok := d.keyIndex(key)
	if !ok {
		return nil, ErrKeyExists
	}

	ht := &d.ht[0]
	if d.rehashing() {
		ht = &d.ht[1]
	}
	e := &Entry[K, V]{key: d.dupKey(key)}
	e.next = ht.buckets[idx]
	ht.buckets[idx] = e
	ht.used++
	return e, nil
}

// Replace sets key to val, inserting it if absent. It reports
// whether the key was newly inserted (false means an existing value
// was overwritten). An overwritten value is passed to the Type's
// DestroyValue after the new one is in place, so a value that shares
// state with the old one survives the swap.
func (d *Dict[K, V]) Replace(key K, val V) bool {
	if d.Add(key, val) == nil {
		return true
	}
	e := d.Find(key)
	old := e.val
	d.setVal(e, val)
	d.destroyVal(old)
	return false
}

// ReplaceRaw returns the entry for key, inserting one (with no value
// set) if absent. How the value is updated is left to the caller.
func (d *Dict[K, V]) ReplaceRaw(key K) *Entry[K, V] {
	if e := d.Find(key); e != nil {
		return e
	}
	e, _ := d.AddRaw(key)
	return e
}

// Find returns the entry for key, or nil if absent. While a rehash
// is in progress both tables are probed, and one migration step runs
// first.
func (d *Dict[K, V]) Find(key K) *Entry[K, V] {
	if d.ht[0].size == 0 {
		return nil
	}
	if d.rehashing() {
		d.rehashStep()
	}
	h := d.typ.Hash(key)
	for tbl := 0; tbl <= 1; tbl++ {
		idx := h & d.ht[tbl].sizemask
		for e := d.ht[tbl].buckets[idx]; e != nil; e = e.next {
			if d.typ.Compare(key, e.key) {
				return e
			}
		}
		if !d.rehashing() {
			break
		}
	}
	return nil
}

// FetchValue returns the value stored for key and whether the key
// was present.
func (d *Dict[K, V]) FetchValue(key K) (V, bool) {
	if e := d.Find(key); e != nil {
		return e.val, true
	}
	var zero V
	return zero, false
}

// genericDelete unlinks the entry for key from whichever table holds
// it. The Destroy callbacks run unless nofree is set.
func (d *Dict[K, V]) genericDelete(key K, nofree bool) error {
	if d.ht[0].size == 0 {
		return ErrKeyNotFound
	}
	if d.rehashing() {
		d.rehashStep()
	}
	h := d.typ.Hash(key)
	for tbl := 0; tbl <= 1; tbl++ {
		idx := h & d.ht[tbl].sizemask
		var prev *Entry[K, V]
		for e := d.ht[tbl].buckets[idx]; e != nil; e = e.next {
			if d.typ.Compare(key, e.key) {
				if prev != nil {
					prev.next = e.next
				} else {
					d.ht[tbl].buckets[idx] = e.next
				}
				if !nofree {
					d.destroyKey(e.key)
					d.destroyVal(e.val)
				}
				d.ht[tbl].used--
				return nil
			}
			prev = e
		}
		if !d.rehashing() {
			break
		}
	}
	return ErrKeyNotFound
}

// Delete removes the entry for key, running the Type's Destroy
// callbacks on its key and value. Returns ErrKeyNotFound if absent.
func (d *Dict[K, V]) Delete(key K) error {
	return d.genericDelete(key, false)
}

// DeleteNoFree removes the entry for key without running the Destroy
// callbacks; ownership of the key and value passes back to the
// caller (grab them with Find first).
func (d *Dict[K, V]) DeleteNoFree(key K) error {
	return d.genericDelete(key, true)
}

// clearTable releases every entry of t and resets it. callback, if
// non-nil, is invoked every emptyCallbackInterval buckets so bulk
// deletion of a huge table can yield.
func (d *Dict[K, V]) clearTable(t *table[K, V], callback func()) {
	for i := uint64(0); i < t.size && t.used > 0; i++ {
		if callback != nil && i&(emptyCallbackInterval-1) == 0 {
			callback()
		}
		e := t.buckets[i]
		for e != nil {
			next := e.next
			d.destroyKey(e.key)
			d.destroyVal(e.val)
			t.used--
			e = next
		}
	}
	t.reset()
}

// Empty removes every entry from both tables and resets all rehash
// and iterator state. callback, if non-nil, is invoked periodically
// during the sweep (every 65536 buckets).
func (d *Dict[K, V]) Empty(callback func()) {
	d.clearTable(&d.ht[0], callback)
	d.clearTable(&d.ht[1], callback)
	d.rehashidx = notRehashing
	d.iterators = 0
}

// fingerprint hashes the structural state of the dictionary -- both
// tables' buffer identity, size and used count -- into one value.
// Unsafe iterators capture it at start and verify it on Release to
// detect forbidden mutation. The mixing is Thomas Wang's 64-bit
// integer hash, chained as hash(hash(hash(int1)+int2)+int3)... so
// any single changed input changes the result.
func (d *Dict[K, V]) fingerprint() uint64 {
	integers := [6]uint64{
		uint64(uintptr(unsafe.Pointer(unsafe.SliceData(d.ht[0].buckets)))),
		d.ht[0].size,
		d.ht[0].used,
		uint64(uintptr(unsafe.Pointer(unsafe.SliceData(d.ht[1].buckets)))),
		d.ht[1].size,
		d.ht[1].used,
	}
	var hash uint64
	for _, n := range integers {
		hash += n
		hash = ^hash + hash<<21
		hash ^= hash >> 24
		hash = hash + hash<<3 + hash<<8
		hash ^= hash >> 14
		hash = hash + hash<<2 + hash<<4
		hash ^= hash >> 28
		hash += hash << 31
	}
	return hash
}
