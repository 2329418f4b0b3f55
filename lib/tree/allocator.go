package tree

// NewDetachedNode hands out a blank, unlinked node for custom
// NodeAllocator implementations to recycle or cap.
func NewDetachedNode[K, V any]() RBNode[K, V] {
	return &rbNode[K, V]{}
}

// heapNodeAllocator is the default policy: one heap block per node,
// reclamation left to the garbage collector once the engine unlinks it.
type heapNodeAllocator[K, V any] struct{}

func (heapNodeAllocator[K, V]) Alloc() RBNode[K, V] {
	return &rbNode[K, V]{}
}

func (heapNodeAllocator[K, V]) Free(RBNode[K, V]) {}

// pooledNodeAllocator keeps unlinked nodes on an intrusive free list,
// reusing the parent pointer as the list link. Not safe for concurrent
// use, like the trees it serves.
type pooledNodeAllocator[K, V any] struct {
	pool       *rbNode[K, V]
	freeNodes  int
	totalNodes int
}

// NewPooledNodeAllocator builds a free-list backed allocator. Share one
// across trees of the same key/value types to keep churny workloads off
// the heap.
func NewPooledNodeAllocator[K, V any]() NodeAllocator[K, V] {
	return &pooledNodeAllocator[K, V]{}
}

func (a *pooledNodeAllocator[K, V]) Alloc() RBNode[K, V] {
	if a.pool == nil {
		if a.freeNodes != 0 {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] node pool corrupt")
		}
		a.totalNodes++
		return &rbNode[K, V]{}
	}
	n := a.pool
	a.pool = n.parent
	n.parent = nil // ensure the free list link is cleared
	a.freeNodes--
	return n
}

func (a *pooledNodeAllocator[K, V]) Free(node RBNode[K, V]) {
	n, ok := node.(*rbNode[K, V])
	if !ok || n == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] free a foreign node")
	}

	var (
		zeroK K
		zeroV V
	)
	n.left, n.right = nil, nil
	n.key, n.val = zeroK, zeroV
	n.color = Black

	n.parent = a.pool // use as free list pointer
	a.pool = n
	a.freeNodes++
}
