package kv

import (
	"bytes"
	"strings"

	"github.com/benz9527/xtree/lib/tree"
)

const treeMapKeyPrefixSize = 8

// treeMapKey is the engine-facing key record: a fixed-width comparison
// prefix plus the full string, carried only when the key does not fit
// the prefix. Two short keys can never falsely collide since the prefix
// holds the whole key, but a key of exactly the prefix width compares
// equal to any longer key sharing its first 8 bytes. That collision is
// part of the contract and must not be papered over here.
type treeMapKey struct {
	prefix [treeMapKeyPrefixSize]byte
	full   string // empty iff the key fits entirely within the prefix
}

func (mk treeMapKey) String() string {
	if len(mk.full) > 0 {
		return mk.full
	}
	if i := bytes.IndexByte(mk.prefix[:], 0); i >= 0 {
		return string(mk.prefix[:i])
	}
	return string(mk.prefix[:])
}

// newBorrowedKey builds a transient lookup record that references the
// caller's string. It must not outlive the call it was built for.
func newBorrowedKey(key string) treeMapKey {
	mk := treeMapKey{}
	if len(key) > treeMapKeyPrefixSize {
		mk.full = key
		copy(mk.prefix[:], key[:treeMapKeyPrefixSize])
	} else {
		copy(mk.prefix[:], key)
	}
	return mk
}

// newOwnedKey builds the record the tree retains for the node's
// lifetime. Long keys are cloned so a stored record never pins a
// caller buffer larger than the key itself.
func newOwnedKey(key string) treeMapKey {
	mk := newBorrowedKey(key)
	if len(mk.full) > 0 {
		mk.full = strings.Clone(mk.full)
	}
	return mk
}

// compareTreeMapKeys orders records by their prefix bytes and falls
// back to the full strings if and only if the prefixes tie AND both
// records carry one. The tie-break order must stay exactly this way;
// when at least one side of a prefix tie has no full-string reference
// the records compare equal.
func compareTreeMapKeys(a, b treeMapKey) int64 {
	res := int64(bytes.Compare(a.prefix[:], b.prefix[:]))
	if res == 0 && len(a.full) > 0 && len(b.full) > 0 {
		return int64(strings.Compare(a.full, b.full))
	}
	return res
}

type xTreeMap[V any] struct {
	rbt tree.RBTree[treeMapKey, V]
}

// NewTreeMap adapts the rbtree engine to string keys with one opaque
// value slot per entry.
func NewTreeMap[V any]() TreeMap[V] {
	return &xTreeMap[V]{
		rbt: tree.New[treeMapKey, V](compareTreeMapKeys),
	}
}

// Put keeps the map's uniqueness contract explicitly: the engine itself
// accepts duplicate keys (ties descend left), so Put probes first and
// overwrites in place instead of ever inserting a second node for the
// same key.
func (m *xTreeMap[V]) Put(key string, val V) error {
	if n := m.rbt.Search(newBorrowedKey(key)); n != nil {
		n.SetVal(val)
		return nil
	}
	n, err := m.rbt.Insert(newOwnedKey(key))
	if err != nil {
		return err
	}
	n.SetVal(val)
	return nil
}

func (m *xTreeMap[V]) Get(key string) (V, bool) {
	n := m.rbt.Search(newBorrowedKey(key))
	if n == nil {
		var zeroV V
		return zeroV, false
	}
	return n.Val(), true
}

func (m *xTreeMap[V]) Remove(key string) (V, bool) {
	val, err := m.rbt.Remove(newBorrowedKey(key))
	if err != nil {
		var zeroV V
		return zeroV, false
	}
	return val, true
}

func (m *xTreeMap[V]) Len() int64 {
	return m.rbt.Len()
}

func (m *xTreeMap[V]) Foreach(action func(key string, val V) bool) {
	m.rbt.Foreach(func(idx int64, color tree.RBColor, key treeMapKey, val V) bool {
		return action(key.String(), val)
	})
}

func (m *xTreeMap[V]) Release() {
	m.rbt.Release()
}
