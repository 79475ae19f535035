package dict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetRandomKey(t *testing.T) {
	d := New(StringType[int]())
	require.Nil(t, d.GetRandomKey())

	const count = 100
	for i := 0; i < count; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("key:%d", i), i))
	}

	seen := make(map[string]struct{})
	for i := 0; i < 2000; i++ {
		e := d.GetRandomKey()
		require.NotNil(t, e)
		v, ok := d.FetchValue(e.Key())
		require.True(t, ok, "random entry %q not in dict", e.Key())
		require.Equal(t, e.Value(), v)
		seen[e.Key()] = struct{}{}
	}
	// 2000 draws over 100 keys: anything close to single-digit
	// coverage would mean the bucket choice is badly skewed.
	require.Greater(t, len(seen), count/2)
}

func TestGetRandomKeyWhileRehashing(t *testing.T) {
	d := New(StringType[int]())
	for i := 0; i < 1000; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("key:%d", i), i))
	}
	for d.Rehash(100) {
	}
	require.NoError(t, d.Expand(d.ht[0].size*2))

	for i := 0; i < 500; i++ {
		e := d.GetRandomKey()
		require.NotNil(t, e)
		_, ok := d.FetchValue(e.Key())
		require.True(t, ok)
	}
}

func TestGetSomeKeys(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		d := New(StringType[int]())
		require.Empty(t, d.GetSomeKeys(10))
		require.Empty(t, d.GetSomeKeys(0))
	})

	t.Run("fewer entries than count", func(t *testing.T) {
		d := New(StringType[int]())
		for i := 0; i < 3; i++ {
			require.NoError(t, d.Add(fmt.Sprintf("key:%d", i), i))
		}
		got := d.GetSomeKeys(10)
		require.Len(t, got, 3)
		keys := make(map[string]struct{})
		for _, e := range got {
			keys[e.Key()] = struct{}{}
		}
		require.Len(t, keys, 3, "duplicate keys in a single call")
	})

	t.Run("more entries than count", func(t *testing.T) {
		d := New(StringType[int]())
		for i := 0; i < 1000; i++ {
			require.NoError(t, d.Add(fmt.Sprintf("key:%d", i), i))
		}
		for i := 0; i < 100; i++ {
			got := d.GetSomeKeys(10)
			require.NotEmpty(t, got)
			require.LessOrEqual(t, len(got), 10)
			for _, e := range got {
				_, ok := d.FetchValue(e.Key())
				require.True(t, ok)
			}
		}
	})

	t.Run("while rehashing", func(t *testing.T) {
		d := New(StringType[int]())
		for i := 0; i < 1000; i++ {
			require.NoError(t, d.Add(fmt.Sprintf("key:%d", i), i))
		}
		for d.Rehash(100) {
		}
		require.NoError(t, d.Expand(d.ht[0].size*2))
		for d.rehashing() {
			got := d.GetSomeKeys(5)
			require.NotEmpty(t, got)
			for _, e := range got {
				_, ok := d.FetchValue(e.Key())
				require.True(t, ok)
			}
		}
	})
}
