package tree

import (
	randv2 "math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func collectKeys(rbtree RBTree[int, int], order TraverseOrder) []int {
	keys := make([]int, 0, rbtree.Len())
	rbtree.Walk(order, func(node RBNode[int, int]) bool {
		keys = append(keys, node.Key())
		return true
	})
	return keys
}

func TestRbtreeWalkOrders(t *testing.T) {
	rbtree := NewOrdered[int, int]()
	for _, key := range []int{5, 3, 8, 1, 4, 7, 9} {
		_, err := rbtree.Insert(key)
		require.NoError(t, err)
	}
	// Shape after rebalancing:
	//        [5]
	//        / \
	//      [3] [8]
	//      / \ / \
	//    <1><4><7><9>
	require.Equal(t, []int{5, 3, 1, 4, 8, 7, 9}, collectKeys(rbtree, PreOrder))
	require.Equal(t, []int{1, 4, 3, 7, 9, 8, 5}, collectKeys(rbtree, PostOrder))
	require.Equal(t, []int{5, 3, 8, 1, 4, 7, 9}, collectKeys(rbtree, LevelOrder))
}

func TestRbtreeWalkEmptyAndSingle(t *testing.T) {
	rbtree := NewOrdered[int, int]()
	for _, order := range []TraverseOrder{PreOrder, PostOrder, LevelOrder} {
		require.Empty(t, collectKeys(rbtree, order))
	}

	_, err := rbtree.Insert(7)
	require.NoError(t, err)
	for _, order := range []TraverseOrder{PreOrder, PostOrder, LevelOrder} {
		require.Equal(t, []int{7}, collectKeys(rbtree, order))
	}
}

func TestRbtreeWalkEarlyStop(t *testing.T) {
	rbtree := NewOrdered[int, int]()
	for i := 0; i < 100; i++ {
		_, err := rbtree.Insert(i)
		require.NoError(t, err)
	}

	for _, order := range []TraverseOrder{PreOrder, PostOrder, LevelOrder} {
		visited := 0
		rbtree.Walk(order, func(node RBNode[int, int]) bool {
			visited++
			return visited < 3
		})
		require.Equal(t, 3, visited, "order %s", order)
	}
}

func TestRbtreeWalkUnknownOrder(t *testing.T) {
	rbtree := NewOrdered[int, int]()
	_, err := rbtree.Insert(1)
	require.NoError(t, err)
	require.Panics(t, func() {
		rbtree.Walk(TraverseOrder(99), func(RBNode[int, int]) bool { return true })
	})
}

// Large randomized tree; each walk must visit every node exactly once
// within the preallocated stack and ring capacities.
func TestRbtreeWalkSoak(t *testing.T) {
	const n = 10000
	rbtree := NewOrdered[int, int]()
	expected := make(map[int]int, n)
	for i := 0; i < n; i++ {
		key := int(randv2.Int63n(n * 8))
		if _, ok := expected[key]; ok {
			continue
		}
		expected[key] = 0
		_, err := rbtree.Insert(key)
		require.NoError(t, err)
	}

	for _, order := range []TraverseOrder{PreOrder, PostOrder, LevelOrder} {
		visited := 0
		rbtree.Walk(order, func(node RBNode[int, int]) bool {
			expected[node.Key()]++
			visited++
			return true
		})
		require.Equal(t, int(rbtree.Len()), visited, "order %s", order)
	}
	for key, count := range expected {
		require.Equal(t, 3, count, "key %d", key)
	}
}
