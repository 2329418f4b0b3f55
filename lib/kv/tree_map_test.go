package kv

import (
	"fmt"
	"sort"
	"testing"

	randv2 "math/rand"

	"github.com/stretchr/testify/require"
)

func TestTreeMapPutGetRemove(t *testing.T) {
	tm := NewTreeMap[int]()
	require.Equal(t, int64(0), tm.Len())

	_, exists := tm.Get("missing")
	require.False(t, exists)
	_, exists = tm.Remove("missing")
	require.False(t, exists)

	require.NoError(t, tm.Put("alpha", 1))
	require.NoError(t, tm.Put("beta", 2))
	require.NoError(t, tm.Put("gamma", 3))
	require.Equal(t, int64(3), tm.Len())

	val, exists := tm.Get("beta")
	require.True(t, exists)
	require.Equal(t, 2, val)

	// Overwrite happens in place, never through a second node.
	require.NoError(t, tm.Put("beta", 22))
	require.Equal(t, int64(3), tm.Len())
	val, exists = tm.Get("beta")
	require.True(t, exists)
	require.Equal(t, 22, val)

	val, exists = tm.Remove("beta")
	require.True(t, exists)
	require.Equal(t, 22, val)
	require.Equal(t, int64(2), tm.Len())
	_, exists = tm.Get("beta")
	require.False(t, exists)
}

func TestTreeMapPrefixTieBreak(t *testing.T) {
	tm := NewTreeMap[int]()

	// Both keys exceed the 8-byte prefix and share it, so ordering
	// falls through to the full strings.
	require.NoError(t, tm.Put("aaaaaaaaX", 1))
	require.NoError(t, tm.Put("aaaaaaaaY", 2))
	require.Equal(t, int64(2), tm.Len())

	val, exists := tm.Get("aaaaaaaaX")
	require.True(t, exists)
	require.Equal(t, 1, val)
	val, exists = tm.Get("aaaaaaaaY")
	require.True(t, exists)
	require.Equal(t, 2, val)

	val, exists = tm.Remove("aaaaaaaaX")
	require.True(t, exists)
	require.Equal(t, 1, val)
	val, exists = tm.Get("aaaaaaaaY")
	require.True(t, exists)
	require.Equal(t, 2, val)
}

func TestTreeMapExactPrefixWidthAliasing(t *testing.T) {
	tm := NewTreeMap[int]()

	// A key of exactly the prefix width carries no full-string
	// reference, so every longer key sharing its first 8 bytes
	// resolves to the same entry. Documented contract, not a bug.
	require.NoError(t, tm.Put("aaaaaaaa", 1))
	require.Equal(t, int64(1), tm.Len())

	val, exists := tm.Get("aaaaaaaaX")
	require.True(t, exists)
	require.Equal(t, 1, val)

	require.NoError(t, tm.Put("aaaaaaaaY", 2))
	require.Equal(t, int64(1), tm.Len())
	val, exists = tm.Get("aaaaaaaa")
	require.True(t, exists)
	require.Equal(t, 2, val)
}

func TestTreeMapShortKeys(t *testing.T) {
	tm := NewTreeMap[string]()

	keys := []string{"", "a", "ab", "abc", "b", "ba", "zzzzzzz"}
	for _, key := range keys {
		require.NoError(t, tm.Put(key, key+"!"))
	}
	require.Equal(t, int64(len(keys)), tm.Len())

	for _, key := range keys {
		val, exists := tm.Get(key)
		require.True(t, exists, "key %q", key)
		require.Equal(t, key+"!", val)
	}
	_, exists := tm.Get("abd")
	require.False(t, exists)
}

func TestTreeMapForeachOrder(t *testing.T) {
	tm := NewTreeMap[int]()
	keys := []string{"pear", "apple", "quince", "banana", "fig", "cherry"}
	for i, key := range keys {
		require.NoError(t, tm.Put(key, i))
	}

	visited := make([]string, 0, len(keys))
	tm.Foreach(func(key string, _ int) bool {
		visited = append(visited, key)
		return true
	})
	require.True(t, sort.StringsAreSorted(visited))
	require.ElementsMatch(t, keys, visited)

	// Early stop.
	visited = visited[:0]
	tm.Foreach(func(key string, _ int) bool {
		visited = append(visited, key)
		return len(visited) < 2
	})
	require.Len(t, visited, 2)
}

func TestTreeMapRelease(t *testing.T) {
	tm := NewTreeMap[int]()
	for i := 0; i < 100; i++ {
		require.NoError(t, tm.Put(fmt.Sprintf("key-%03d", i), i))
	}
	tm.Release()
	require.Equal(t, int64(0), tm.Len())

	require.NoError(t, tm.Put("again", 1))
	val, exists := tm.Get("again")
	require.True(t, exists)
	require.Equal(t, 1, val)
}

func TestTreeMapRandomSoak(t *testing.T) {
	tm := NewTreeMap[int]()
	oracle := make(map[string]int, 512)

	for i := 0; i < 4096; i++ {
		// Long random keys force the full-string fallback often.
		key := fmt.Sprintf("soak-%08d-%04d", randv2.Int63n(512), randv2.Int63n(16))
		switch randv2.Int63n(3) {
		case 0, 1:
			require.NoError(t, tm.Put(key, i))
			oracle[key] = i
		default:
			_, exists := tm.Remove(key)
			_, inOracle := oracle[key]
			require.Equal(t, inOracle, exists)
			delete(oracle, key)
		}
	}

	require.Equal(t, int64(len(oracle)), tm.Len())
	for key, want := range oracle {
		val, exists := tm.Get(key)
		require.True(t, exists, "key %q", key)
		require.Equal(t, want, val)
	}

	visited := make([]string, 0, len(oracle))
	tm.Foreach(func(key string, _ int) bool {
		visited = append(visited, key)
		return true
	})
	require.True(t, sort.StringsAreSorted(visited))
	require.Len(t, visited, len(oracle))
}
