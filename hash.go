package dict

import (
	"github.com/cespare/xxhash/v2"
)

// Seed mixed into the byte-string hash functions below. Settable so
// a process can randomize its hash ordering at startup; changing it
// while dictionaries built on these functions hold entries will make
// their keys unfindable.
var hashSeed uint64

// SetHashFunctionSeed sets the seed used by GenHashFunction and
// GenCaseHashFunction.
func SetHashFunctionSeed(seed uint64) { hashSeed = seed }

// HashFunctionSeed returns the current seed.
func HashFunctionSeed() uint64 { return hashSeed }

// GenHashFunction hashes buf case-sensitively with the process-wide
// seed. Suitable as a Type.Hash for byte-string keys.
func GenHashFunction(buf []byte) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(hashSeed)
	d.Write(buf)
	return d.Sum64()
}

// GenCaseHashFunction hashes buf with ASCII letters folded to lower
// case, so "Key" and "key" collide on purpose. Pair it with a
// case-insensitive Compare.
func GenCaseHashFunction(buf []byte) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(hashSeed)
	var chunk [64]byte
	for len(buf) > 0 {
		n := copy(chunk[:], buf)
		for i := 0; i < n; i++ {
			if c := chunk[i]; c >= 'A' && c <= 'Z' {
				chunk[i] = c + 'a' - 'A'
			}
		}
		d.Write(chunk[:n])
		buf = buf[n:]
	}
	return d.Sum64()
}

// StringHash is GenHashFunction for string keys, without forcing a
// []byte conversion.
func StringHash(s string) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(hashSeed)
	d.WriteString(s)
	return d.Sum64()
}

// IntHashFunction mixes a 32-bit integer key (Thomas Wang's hash).
// Every step is invertible, so distinct inputs stay distinct while
// small input changes flip about half the output bits.
func IntHashFunction(key uint32) uint32 {
	key += ^(key << 15)
	key ^= key >> 10
	key += key << 3
	key ^= key >> 6
	key += ^(key << 11)
	key ^= key >> 16
	return key
}
