package tree

import (
	"errors"

	"go.uber.org/multierr"
)

var (
	ErrRootViolation  = errors.New("rbtree root violation")
	ErrRedViolation   = errors.New("rbtree red violation")
	ErrBlackViolation = errors.New("rbtree black violation")
)

func isBlack[K, V any](node RBNode[K, V]) bool {
	return isNilLeaf[K, V](node) || node.Color() == Black
}

func isRed[K, V any](node RBNode[K, V]) bool {
	return !isNilLeaf[K, V](node) && node.Color() == Red
}

func isNilLeaf[K, V any](node RBNode[K, V]) bool {
	return node == nil
}

func isRoot[K, V any](node RBNode[K, V]) bool {
	return node != nil && node.Parent() == nil
}

// blackDepthToRoot counts the black nodes on the path from target up to
// and including the root.
func blackDepthToRoot[K, V any](target RBNode[K, V]) int {
	depth := 0
	for aux := target; !isNilLeaf[K, V](aux); aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// Validate checks every structural red-black invariant in one pass and
// aggregates the violations: the root is black, no red node has a red
// child, and the black depth measured from every node with at most one
// real child up to the root is uniform. Meant for test harnesses; an
// error here means an engine bug or a corrupted node, never a runtime
// condition a caller could recover from.
func Validate[K, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	var rootErr, redErr, blackErr error
	if isRed[K, V](root) {
		rootErr = ErrRootViolation
	}

	blackDepth := -1
	tree.Walk(PostOrder, func(node RBNode[K, V]) bool {
		if isRed[K, V](node) && (isRed[K, V](node.Left()) || isRed[K, V](node.Right())) {
			redErr = ErrRedViolation
		}
		// Every position with a nil child sees the full black height of
		// the tree, so all of them must agree.
		if node.Left() == nil || node.Right() == nil {
			depth := blackDepthToRoot[K, V](node)
			if blackDepth < 0 {
				blackDepth = depth
			} else if depth != blackDepth {
				blackErr = ErrBlackViolation
			}
		}
		return true
	})

	return multierr.Combine(rootErr, redErr, blackErr)
}

// RedViolationValidate checks the red-violation property alone.
func RedViolationValidate[K, V any](tree RBTree[K, V]) error {
	var violated bool
	tree.Walk(PostOrder, func(node RBNode[K, V]) bool {
		if isRed[K, V](node) {
			if (!isRoot[K, V](node) && isRed[K, V](node.Parent())) ||
				isRed[K, V](node.Left()) || isRed[K, V](node.Right()) {
				violated = true
				return false
			}
		}
		return true
	})
	if violated {
		return ErrRedViolation
	}
	return nil
}

// BlackViolationValidate checks the uniform black-height property by
// comparing the black depth of every partial-leaf position.
func BlackViolationValidate[K, V any](tree RBTree[K, V]) error {
	blackDepth := -1
	var violated bool
	tree.Walk(LevelOrder, func(node RBNode[K, V]) bool {
		if node.Left() != nil && node.Right() != nil {
			return true
		}
		depth := blackDepthToRoot[K, V](node)
		if blackDepth < 0 {
			blackDepth = depth
		} else if depth != blackDepth {
			violated = true
			return false
		}
		return true
	})
	if violated {
		return ErrBlackViolation
	}
	return nil
}
