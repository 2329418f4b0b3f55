package tree

import "errors"

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

//go:generate stringer -type=TraverseOrder
type TraverseOrder uint8

const (
	PreOrder TraverseOrder = iota
	PostOrder
	LevelOrder
)

var (
	// ErrAllocExhausted is returned by Insert when the node allocator
	// reports that no storage is available. The tree is left unchanged.
	ErrAllocExhausted = errors.New("[rbtree] node allocation exhausted")
	ErrKeyNotFound    = errors.New("[rbtree] key not found")
)

// Comparator is a three-way key comparator. It reports a negative value
// when i orders before j, zero when they compare equal and a positive
// value when i orders after j.
type Comparator[K any] func(i, j K) int64

// NodeAllocator provisions and reclaims tree nodes. Alloc returns nil
// when storage is exhausted; the engine then aborts the triggering
// insert and leaves the tree untouched. Free is invoked once for every
// node unlinked by Delete, Remove or Release; the freed node must not
// be referenced afterwards. Custom implementations obtain blank nodes
// from NewDetachedNode.
type NodeAllocator[K, V any] interface {
	Alloc() RBNode[K, V]
	Free(node RBNode[K, V])
}

// RBNode is a reference into the tree. It stays valid only until the
// next structural mutation (Insert, Delete, Remove, Release) of the
// owning tree; holding on to it across mutations is undefined behavior
// and is deliberately not detected at runtime.
type RBNode[K, V any] interface {
	Key() K
	Val() V
	// SetVal writes the node's value slot in place. Insert leaves the
	// slot zero for the caller to fill through this method.
	SetVal(val V)
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is an ordered associative container over arbitrary keys. It is
// not safe for concurrent use; callers requiring that must wrap it with
// their own mutual exclusion. Duplicate keys are accepted by Insert
// (ties descend into the left subtree); callers wanting set semantics
// must probe with Search first.
type RBTree[K, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	Insert(key K) (RBNode[K, V], error)
	Search(key K) RBNode[K, V]
	// Delete unlinks a node previously obtained from Insert, Search or
	// traversal of this very tree. Handing it a foreign or stale node
	// is a programmer error.
	Delete(node RBNode[K, V])
	Remove(key K) (V, error)
	RemoveMin() (K, V, error)
	Min() RBNode[K, V]
	Max() RBNode[K, V]
	// Foreach visits nodes in ascending key order until the action
	// returns false.
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	// Walk visits every node in the given order until the visitor
	// returns false.
	Walk(order TraverseOrder, visit func(node RBNode[K, V]) bool)
	Release()
}
