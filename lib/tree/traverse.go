package tree

import (
	"sync/atomic"

	"github.com/benz9527/xtree/lib/bits"
)

// heightBound is the 2*ceil(log2(n+1)) red-black height limit, used to
// size the auxiliary stacks of the depth-first walks up front.
func (tree *rbTree[K, V]) heightBound() int {
	n := atomic.LoadInt64(&tree.count)
	if n <= 0 {
		return 0
	}
	return 2*int(bits.CeilPowOf2(uint64(n)+1)) + 1
}

func (tree *rbTree[K, V]) Walk(order TraverseOrder, visit func(node RBNode[K, V]) bool) {
	switch order {
	case PreOrder:
		tree.walkPreOrder(visit)
	case PostOrder:
		tree.walkPostOrder(visit)
	case LevelOrder:
		tree.walkLevelOrder(visit)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown traverse order")
	}
}

// Nodes are visited on the way down the left spine, so the stack only
// ever holds the ancestor chain of the current node.
func (tree *rbTree[K, V]) walkPreOrder(visit func(node RBNode[K, V]) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, tree.heightBound())
	defer func() {
		clear(stack)
	}()

	for {
		for ; aux != nil; aux = aux.left {
			if !visit(aux) {
				return
			}
			stack = append(stack, aux)
		}
		size := len(stack)
		if size == 0 {
			return
		}
		aux = stack[size-1].right
		stack = stack[:size-1]
	}
}

// Classic two-phase descent: push the left spine, then before visiting
// a frame detour into its right subtree unless that subtree was the
// last thing visited.
func (tree *rbTree[K, V]) walkPostOrder(visit func(node RBNode[K, V]) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, tree.heightBound())
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	var last *rbNode[K, V]
	for size := len(stack); size > 0; size = len(stack) {
		top := stack[size-1]
		if top.right != nil && last != top.right {
			for aux = top.right; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
			continue
		}
		if !visit(top) {
			return
		}
		last = top
		stack = stack[:size-1]
	}
}

// Breadth-first walk over a power-of-two circular queue. The queue only
// ever holds an antichain of the tree, which is at most (n+1)/2 nodes.
func (tree *rbTree[K, V]) walkLevelOrder(visit func(node RBNode[K, V]) bool) {
	root := tree.root
	if root == nil {
		return
	}

	n := uint64(atomic.LoadInt64(&tree.count))
	queueCap := bits.RoundupPowOf2(n/2 + 2)
	mask := queueCap - 1
	queue := make([]*rbNode[K, V], queueCap)
	defer func() {
		clear(queue)
	}()

	var head, tail uint64
	queue[tail&mask] = root
	tail++

	for head != tail {
		aux := queue[head&mask]
		head++
		if !visit(aux) {
			return
		}
		if aux.left != nil {
			if tail-head >= queueCap {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] level-order queue overflow")
			}
			queue[tail&mask] = aux.left
			tail++
		}
		if aux.right != nil {
			if tail-head >= queueCap {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] level-order queue overflow")
			}
			queue[tail&mask] = aux.right
			tail++
		}
	}
}
