package dict

// GetRandomKey returns a pseudo-random entry, or nil if the
// dictionary is empty. The bucket is drawn across both tables'
// combined address space (skipping the already-drained ht[0] range
// below the rehash cursor), then the entry is drawn uniformly within
// the bucket's chain. Buckets are equally likely regardless of chain
// length, so entries in short chains are somewhat favored.
func (d *Dict[K, V]) GetRandomKey() *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.rehashing() {
		d.rehashStep()
	}

	var e *Entry[K, V]
	if d.rehashing() {
		for e == nil {
			// Buckets 0..rehashidx-1 of ht[0] are empty; draw from
			// the remaining span of both tables.
			h := uint64(d.rehashidx) +
				randUint64()%(d.ht[0].size+d.ht[1].size-uint64(d.rehashidx))
			if h >= d.ht[0].size {
				e = d.ht[1].buckets[h-d.ht[0].size]
			} else {
				e = d.ht[0].buckets[h]
			}
		}
	} else {
		for e == nil {
			e = d.ht[0].buckets[randUint64()&d.ht[0].sizemask]
		}
	}

	// e is a whole chain; pick uniformly within it.
	listlen := uint64(0)
	orig := e
	for ; e != nil; e = e.next {
		listlen++
	}
	e = orig
	for n := randUint64() % listlen; n > 0; n-- {
		e = e.next
	}
	return e
}

// GetSomeKeys returns up to count pseudo-random entries. It walks
// buckets from a random starting point, taking every entry of each
// non-empty bucket it meets, so results cluster by bucket rather
// than being independently uniform -- which also makes it much
// cheaper than calling GetRandomKey count times. The walk gives up
// after 10*count bucket visits, so fewer than count entries may come
// back even when the dictionary holds enough. No entry is returned
// twice in one call.
func (d *Dict[K, V]) GetSomeKeys(count uint64) []*Entry[K, V] {
	if size := d.Len(); size < count {
		count = size
	}
	if count == 0 {
		return nil
	}
	for j := uint64(0); j < count && d.rehashing(); j++ {
		d.rehashStep()
	}

	tables := 1
	maxsizemask := d.ht[0].sizemask
	if d.rehashing() {
		tables = 2
		if maxsizemask < d.ht[1].sizemask {
			maxsizemask = d.ht[1].sizemask
		}
	}

	des := make([]*Entry[K, V], 0, count)
	i := randUint64() & maxsizemask
	emptylen := uint64(0) // continuous empty buckets seen
	for maxsteps := count * 10; uint64(len(des)) < count && maxsteps > 0; maxsteps-- {
		for j := 0; j < tables; j++ {
			// While rehashing there are no ht[0] entries below the
			// rehash cursor; skip that dead zone.
			if tables == 2 && j == 0 && i < uint64(d.rehashidx) {
				// When shrinking, an index past ht[1]'s range can hit
				// nothing in either table below the cursor; jump
				// straight to the cursor instead of walking to it.
				if i >= d.ht[1].size {
					i = uint64(d.rehashidx)
				} else {
					continue
				}
			}
			if i >= d.ht[j].size {
				continue
			}

			e := d.ht[j].buckets[i]
			if e == nil {
				emptylen++
				if emptylen >= 5 && emptylen > count {
					// Long empty run; jump somewhere else.
					i = randUint64() & maxsizemask
					emptylen = 0
				}
				continue
			}
			emptylen = 0
			for ; e != nil; e = e.next {
				des = append(des, e)
				if uint64(len(des)) == count {
					return des
				}
			}
		}
		i = (i + 1) & maxsizemask
	}
	return des
}
