package tree

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) SetVal(val V) {
	node.val = val
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *rbNode[K, V]) pred() *rbNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[K, V]) succ() *rbNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
type rbTree[K, V any] struct {
	root   *rbNode[K, V]
	count  int64
	cmp    Comparator[K]
	alloc  NodeAllocator[K, V]
	stats  *treeStats
	tracer *mutationTracer
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K, V]) Min() RBNode[K, V] {
	if _min := tree.root.minimum(); _min != nil {
		return _min
	}
	return nil
}

func (tree *rbTree[K, V]) Max() RBNode[K, V] {
	if _max := tree.root.maximum(); _max != nil {
		return _max
	}
	return nil
}

// newNode draws a node from the allocator and primes it as a fresh red
// leaf (black when it is about to become the root). A nil return means
// the allocator is exhausted.
func (tree *rbTree[K, V]) newNode(key K, parent *rbNode[K, V]) *rbNode[K, V] {
	n := tree.alloc.Alloc()
	if n == nil {
		return nil
	}
	node, ok := n.(*rbNode[K, V])
	if !ok {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] allocator returned a foreign node")
	}
	node.key = key
	node.parent = parent
	if parent == nil {
		node.color = Black
	} else {
		node.color = Red
	}
	return node
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p

	tree.stats.RecordRotation(rotationLeft)
	tree.tracer.onRotate(rotationLeft, dir == Root)
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p

	tree.stats.RecordRotation(rotationRight)
	tree.tracer.onRotate(rotationRight, dir == Root)
}

// Insert adds one node for key, duplicates included. Equal keys descend
// into the left subtree, so repeated inserts of the same key pile up on
// the left; callers wanting at-most-once semantics probe with Search
// before inserting. The returned node's value slot is zero and is the
// caller's write target. On allocator exhaustion the tree is untouched
// and ErrAllocExhausted is returned.
func (tree *rbTree[K, V]) Insert(key K) (RBNode[K, V], error) {
	var y *rbNode[K, V]
	x := tree.root
	for x != nil {
		y = x
		if tree.cmp(key, x.key) > 0 {
			x = x.right
		} else /* ties descend left */ {
			x = x.left
		}
	}

	z := tree.newNode(key, y)
	if z == nil {
		return nil, ErrAllocExhausted
	}

	if y == nil {
		tree.root = z
	} else if tree.cmp(key, y.key) > 0 {
		y.right = z
	} else {
		y.left = z
	}

	atomic.AddInt64(&tree.count, 1)
	tree.insertRebalance(z)
	tree.stats.RecordInsert()
	return z, nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

i1: X's parent P is black, or X is root. Nothing to fix.

i2: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainting G into red there may still be a red-violation above.
Climb to G and continue.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

i3: The parent P is red but the uncle U is black, X is the opposite
direction to P. (red-violation)
Rotate P towards the outside; the old parent becomes the current node
and falls through into i4.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

i4: The parent P is red, the uncle U is black and X is the same
direction as P. Rotate G away from P and swap the colors of P and G.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for x.parent.isRed() {
		gp := x.parent.parent
		if gp == nil {
			// impossible run to here, the root is always black
			panic( /* debug assertion */ "[rbtree] red parent without grandparent, violate (i2)")
		}

		if x.parent.Direction() == Left {
			if uncle := gp.right; uncle.isRed() {
				/* i2 */
				x.parent.color = Black
				uncle.color = Black
				gp.color = Red
				x = gp
				continue
			}
			if /* i3 */ x.Direction() == Right {
				x = x.parent
				tree.leftRotate(x)
			}
			/* i4 */
			x.parent.color = Black
			gp.color = Red
			tree.rightRotate(gp)
		} else {
			if uncle := gp.left; uncle.isRed() {
				/* i2, mirrored */
				x.parent.color = Black
				uncle.color = Black
				gp.color = Red
				x = gp
				continue
			}
			if /* i3, mirrored */ x.Direction() == Left {
				x = x.parent
				tree.rightRotate(x)
			}
			/* i4, mirrored */
			x.parent.color = Black
			gp.color = Red
			tree.leftRotate(gp)
		}
	}

	tree.root.color = Black
}

// Search walks the classic three-way descent and returns the first node
// comparing equal to key, which among duplicates is not necessarily the
// leftmost one. Returns nil when no node matches.
func (tree *rbTree[K, V]) Search(key K) RBNode[K, V] {
	tree.stats.RecordSearch()
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

// transplant re-points the parent link of u onto v, which may be nil.
// v's own children are left alone.
func (tree *rbTree[K, V]) transplant(u, v *rbNode[K, V]) {
	switch u.Direction() {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to transplant")
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (tree *rbTree[K, V]) Delete(node RBNode[K, V]) {
	z, ok := node.(*rbNode[K, V])
	if !ok || z == nil {
		panic( /* debug assertion */ "[rbtree] delete a node not owned by this tree")
	}
	tree.deleteNode(z)
}

/*
d1: The deleted node Z has no left child; its right child (possibly a
nil leaf) is transplanted into its place.

d2: Mirrored d1, no right child.

d3: Two children. The in-order successor S (minimum of the right
subtree) is spliced out of its own position and takes over Z's links
and color, so the color that actually leaves the tree is S's original
one. S never has a left child, and S's right child R is transplanted
upward into S's old slot.

	     Z                  S
	    / \                / \
	   L  ..     ====>    L  ..
	       |                  |
	       S                  R
	        \
	         R

Whenever the color spliced out of the tree is black, a black-height
deficit appears at the transplanted position and deleteRebalance runs
from there.
*/
func (tree *rbTree[K, V]) deleteNode(z *rbNode[K, V]) {
	y := z
	removedColor := y.color

	var x, xParent *rbNode[K, V]
	if /* d1 */ z.left == nil {
		x, xParent = z.right, z.parent
		tree.transplant(z, z.right)
	} else if /* d2 */ z.right == nil {
		x, xParent = z.left, z.parent
		tree.transplant(z, z.left)
	} else /* d3 */ {
		y = z.right.minimum()
		removedColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			tree.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		tree.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	tree.tracer.onDelete(removedColor)
	if removedColor == Black {
		tree.deleteRebalance(x, xParent)
	}

	z.parent, z.left, z.right = nil, nil, nil
	atomic.AddInt64(&tree.count, -1)
	tree.stats.RecordRemove()
	tree.alloc.Free(z)
}

/*
The current node X starts as the structural replacement of the spliced
out black node and is one black short on every path through it. X may
be a nil leaf, which is why its parent P is carried explicitly instead
of being read through a back-pointer; no placeholder node is ever
linked into the tree.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the nephew on the same side as X, Sd the one on the far side.

rm1: X's sibling S is red, so P, Sc and Sd must be black. Rotate P
towards X and swap the colors of P and S. The new sibling Sc is black;
continue into rm2..rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are all black. Repaint S red, which balances P's two
subtrees against each other but leaves everything under P one black
short; climb to P. If P was red the loop exits and P is repainted black
at the bottom, settling the debt.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, the near nephew Sc is red, the far nephew Sd is black.
Rotate S away from X and swap the colors of S and Sc. The new sibling
is black with a red far nephew; fall through into rm4.

	  {P}                   {P}
	  / \    r-rotate(S)    / \
	[X] [S]  ==========>  [X] [Sc]
	    / \                     \
	  <Sc> [Sd]                 <S>
	                              \
	                              [Sd]

rm4: S is black, the far nephew Sd is red. Rotate P towards X, give S
P's old color, repaint P and Sd black. Every path through X gains one
black node and the tree is balanced; the loop terminates.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V]) deleteRebalance(x, parent *rbNode[K, V]) {
	for x != tree.root && x.isBlack() {
		if parent == nil {
			// impossible run to here, a non-root X always has a parent
			panic( /* debug assertion */ "[rbtree] delete fixup lost the parent link")
		}

		// X may be a nil leaf; its side is still unambiguous because
		// the sibling of a black-deficit position can never be nil.
		if x == parent.left {
			w := parent.right
			if w == nil {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] delete fixup without sibling, violate (rm1)")
			}

			if /* rm1 */ w.isRed() {
				w.color = Black
				parent.color = Red
				tree.leftRotate(parent)
				w = parent.right
			}

			if /* rm2 */ w.left.isBlack() && w.right.isBlack() {
				w.color = Red
				x, parent = parent, parent.parent
			} else {
				if /* rm3 */ w.right.isBlack() {
					w.left.color = Black
					w.color = Red
					tree.rightRotate(w)
					w = parent.right
				}
				/* rm4 */
				w.color = parent.color
				parent.color = Black
				w.right.color = Black
				tree.leftRotate(parent)
				x, parent = tree.root, nil
			}
		} else {
			w := parent.left
			if w == nil {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] delete fixup without sibling, violate (rm1)")
			}

			if /* rm1, mirrored */ w.isRed() {
				w.color = Black
				parent.color = Red
				tree.rightRotate(parent)
				w = parent.left
			}

			if /* rm2, mirrored */ w.left.isBlack() && w.right.isBlack() {
				w.color = Red
				x, parent = parent, parent.parent
			} else {
				if /* rm3, mirrored */ w.left.isBlack() {
					w.right.color = Black
					w.color = Red
					tree.leftRotate(w)
					w = parent.left
				}
				/* rm4, mirrored */
				w.color = parent.color
				parent.color = Black
				w.left.color = Black
				tree.rightRotate(parent)
				x, parent = tree.root, nil
			}
		}
	}

	if x != nil {
		x.color = Black
	}
}

// Remove is the keyed convenience over Search plus Delete. Among
// duplicate keys it removes whichever node Search reaches first. The
// removed value is handed back to the caller, who owns any cleanup.
func (tree *rbTree[K, V]) Remove(key K) (V, error) {
	var zeroV V
	if atomic.LoadInt64(&tree.count) <= 0 {
		return zeroV, ErrKeyNotFound
	}
	n := tree.Search(key)
	if n == nil {
		return zeroV, ErrKeyNotFound
	}
	z := n.(*rbNode[K, V])
	val := z.val
	tree.deleteNode(z)
	return val, nil
}

func (tree *rbTree[K, V]) RemoveMin() (K, V, error) {
	var (
		zeroK K
		zeroV V
	)
	_min := tree.root.minimum()
	if _min == nil {
		return zeroK, zeroV, ErrKeyNotFound
	}
	key, val := _min.key, _min.val
	tree.deleteNode(_min)
	return key, val, nil
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
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

	idx := int64(0)
	for size := int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		if aux.right != nil {
			for aux = aux.right; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

// Release drains the whole tree, returning every node to the allocator.
// The container header stays reusable afterwards.
func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		atomic.StoreInt64(&tree.count, 0)
		return
	}

	stack := make([]*rbNode[K, V], 0, tree.heightBound())
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		r := aux.right
		aux.parent, aux.left, aux.right = nil, nil, nil
		atomic.AddInt64(&tree.count, -1)
		tree.alloc.Free(aux)
		if r != nil {
			for aux = r; aux != nil; aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

type RBTreeOpt[K, V any] func(*rbTree[K, V])

// WithTreeNodeAllocator swaps the default heap allocator for a custom
// one, e.g. NewPooledNodeAllocator.
func WithTreeNodeAllocator[K, V any](alloc NodeAllocator[K, V]) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.alloc = alloc
	}
}

// WithTreeStats enables per-tree otel counters under the given meter
// name (RBTreeStatsName when empty).
func WithTreeStats[K, V any](name string) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.stats = newTreeStats(name)
	}
}

// WithTreeTraceLogger emits a debug log entry on every rotation and
// delete. Meant for diagnosing balance issues, not for production use.
func WithTreeTraceLogger[K, V any](logger *zap.Logger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.tracer = &mutationTracer{logger: logger}
	}
}

// New builds an empty tree ordered by cmp.
func New[K, V any](cmp Comparator[K], opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	if cmp == nil {
		panic("[rbtree] nil comparator")
	}
	tree := &rbTree[K, V]{
		cmp:   cmp,
		alloc: heapNodeAllocator[K, V]{},
	}

	for _, o := range opts {
		o(tree)
	}
	return tree
}

// NewOrdered builds an empty tree over a naturally ordered key type.
func NewOrdered[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	return New[K, V](infra.OrderedCompare[K], opts...)
}
