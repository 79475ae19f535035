package dict

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringFunc(t *testing.T) {
	d := New(StringType[int]())
	require.Equal(t, "dict.Dict[]", StringFunc(d, nil, nil))

	require.NoError(t, d.Add("b", 2))
	require.NoError(t, d.Add("a", 1))
	require.NoError(t, d.Add("c", 3))
	got := StringFunc(d,
		func(k string) string { return k },
		strconv.Itoa,
	)
	require.Equal(t, "dict.Dict[a:1 b:2 c:3]", got)
}

func TestEqual(t *testing.T) {
	d1 := New(StringType[int]())
	d2 := New(StringType[int]())
	require.True(t, Equal(d1, d2))

	for i := 0; i < 100; i++ {
		k := strconv.Itoa(i)
		require.NoError(t, d1.Add(k, i))
		require.NoError(t, d2.Add(k, i))
	}
	require.True(t, Equal(d1, d2))
	require.True(t, Equal(d1, d1))

	d2.Replace("42", -1)
	require.False(t, Equal(d1, d2))
	d2.Replace("42", 42)
	require.True(t, Equal(d1, d2))

	require.NoError(t, d2.Delete("42"))
	require.False(t, Equal(d1, d2))
}

func TestEqualFunc(t *testing.T) {
	d1 := New(StringType[int]())
	d2 := New(StringType[int]())
	require.NoError(t, d1.Add("a", 10))
	require.NoError(t, d2.Add("a", -10))

	abs := func(a, b int) bool {
		if a < 0 {
			a = -a
		}
		if b < 0 {
			b = -b
		}
		return a == b
	}
	require.True(t, EqualFunc(d1, d2, abs))
	require.False(t, Equal(d1, d2))
}
