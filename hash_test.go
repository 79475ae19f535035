package dict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenHashFunction(t *testing.T) {
	a := GenHashFunction([]byte("hello"))
	require.Equal(t, a, GenHashFunction([]byte("hello")))
	require.NotEqual(t, a, GenHashFunction([]byte("Hello")))
	require.NotEqual(t, a, GenHashFunction([]byte("hellp")))
	require.Equal(t, a, StringHash("hello"))
}

func TestGenCaseHashFunction(t *testing.T) {
	a := GenCaseHashFunction([]byte("Hello, World"))
	require.Equal(t, a, GenCaseHashFunction([]byte("hello, world")))
	require.Equal(t, a, GenCaseHashFunction([]byte("HELLO, WORLD")))
	require.NotEqual(t, a, GenCaseHashFunction([]byte("hello, worle")))

	// Inputs longer than one lowercase chunk.
	long := make([]byte, 1000)
	for i := range long {
		long[i] = byte('A' + i%26)
	}
	lower := make([]byte, len(long))
	for i := range long {
		lower[i] = byte('a' + i%26)
	}
	require.Equal(t, GenCaseHashFunction(long), GenCaseHashFunction(lower))
	require.Equal(t, GenCaseHashFunction(long), GenHashFunction(lower))
}

func TestHashFunctionSeed(t *testing.T) {
	old := HashFunctionSeed()
	defer SetHashFunctionSeed(old)

	a := GenHashFunction([]byte("seeded"))
	SetHashFunctionSeed(old + 1)
	require.Equal(t, old+1, HashFunctionSeed())
	require.NotEqual(t, a, GenHashFunction([]byte("seeded")))

	SetHashFunctionSeed(old)
	require.Equal(t, a, GenHashFunction([]byte("seeded")))
}

func TestIntHashFunction(t *testing.T) {
	// The mix is invertible, so distinct inputs map to distinct
	// outputs; spot-check for collisions and fixed points.
	seen := make(map[uint32]uint32)
	for i := uint32(0); i < 10000; i++ {
		h := IntHashFunction(i)
		if prev, dup := seen[h]; dup {
			t.Fatalf("collision: IntHashFunction(%d) == IntHashFunction(%d)", i, prev)
		}
		seen[h] = i
	}
	require.NotEqual(t, uint32(1), IntHashFunction(1))
}

func TestCaseInsensitiveDict(t *testing.T) {
	d := New(CaseStringType[int]())
	require.NoError(t, d.Add("Key", 1))
	require.ErrorIs(t, d.Add("KEY", 2), ErrKeyExists)
	v, ok := d.FetchValue("key")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.NoError(t, d.Delete("kEy"))
	require.Zero(t, d.Len())
}

func TestBytesDict(t *testing.T) {
	d := New(BytesType[string]())
	require.NoError(t, d.Add([]byte("a"), "1"))
	v, ok := d.FetchValue([]byte("a"))
	require.True(t, ok)
	require.Equal(t, "1", v)
	_, ok = d.FetchValue([]byte("b"))
	require.False(t, ok)
}
