// Package memtree is an in-memory sparse merkle tree that hands out
// proofs in the [merkle.Proof] format.
// it backs tests, benchmarks, and the CLI's proof generation.
package memtree

import (
	"sync"

	"github.com/goose-lang/std"

	"github.com/mit-pdos/smtproof/merkle"
)

// Hasher is a digest algebra that can also commit to values,
// which collision proofs reveal in place of the value.
type Hasher interface {
	merkle.Hasher
	Commit(val []byte) []byte
}

type Tree struct {
	mu     sync.RWMutex
	hasher Hasher
	bits   uint64
	root   *node
}

// node contains the union of different node types, which distinguish as:
//  1. empty node. if node ptr is nil.
//  2. interior node. if either child0 or child1 not nil. has hash.
//  3. leaf node. else. has hash, full label, and val.
type node struct {
	hash []byte
	// only for interior node.
	child0 *node
	// only for interior node.
	child1 *node
	// only for leaf node.
	label []byte
	// only for leaf node.
	val []byte
}

// New makes an empty tree over bits-long labels.
// it panics if bits isn't a valid tree depth.
func New(h Hasher, bits uint64) *Tree {
	if !merkle.ValidBits(bits) {
		panic("memtree: bad bits")
	}
	return &Tree{hasher: h, bits: bits}
}

func (t *Tree) Bits() uint64 {
	return t.bits
}

func (t *Tree) badLabel(label []byte) bool {
	return uint64(len(label))*8 != t.bits
}

// Put adds (label, val) to the tree and errors if label is the wrong len
// or val is too long to prove.
// it consumes both label and val.
func (t *Tree) Put(label []byte, val []byte) bool {
	if t.badLabel(label) || len(val) > merkle.MaxValLen || val == nil {
		return true
	}
	t.mu.Lock()
	t.put(&t.root, 0, label, val)
	t.mu.Unlock()
	return false
}

func (t *Tree) put(n0 **node, depth uint64, label, val []byte) {
	n := *n0
	// empty node.
	if n == nil {
		// replace with leaf node.
		leaf := &node{label: label, val: val}
		*n0 = leaf
		t.setLeafHash(leaf)
		return
	}

	// leaf node.
	if n.child0 == nil && n.child1 == nil {
		// on exact label match, replace val.
		if std.BytesEqual(n.label, label) {
			n.val = val
			t.setLeafHash(n)
			return
		}

		// otherwise, replace with interior node that links
		// to existing leaf, and recurse.
		inter := &node{}
		*n0 = inter
		leafChild, _ := getChild(inter, n.label, depth)
		*leafChild = n
		recurChild, _ := getChild(inter, label, depth)
		t.put(recurChild, depth+1, label, val)
		t.setInteriorHash(inter)
		return
	}

	// interior node. recurse.
	c, _ := getChild(n, label, depth)
	t.put(c, depth+1, label, val)
	t.setInteriorHash(n)
}

// Get returns if label is in the tree and, if so, the val.
// it errors if label is the wrong len.
func (t *Tree) Get(label []byte) (bool, []byte, bool) {
	inTree, val, _, _, err := t.get(label, false)
	return inTree, val, err
}

// Digest commits to the whole tree.
func (t *Tree) Digest() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return getNodeHash(t.root)
}

// Prove returns (1) if label is in the tree and, if so, (2) the val.
// it gives a (3) cryptographic proof of this, against (4) the tree digest.
// it (5) errors if label is the wrong len.
func (t *Tree) Prove(label []byte) (bool, []byte, *merkle.Proof, []byte, bool) {
	return t.get(label, true)
}

func (t *Tree) get(label []byte, prove bool) (bool, []byte, *merkle.Proof, []byte, bool) {
	if t.badLabel(label) {
		return false, nil, nil, nil, true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	var n = t.root
	proof := &merkle.Proof{}
	var depth uint64
	for ; depth < t.bits; depth++ {
		// break if empty node or leaf node.
		if n == nil {
			break
		}
		if n.child0 == nil && n.child1 == nil {
			break
		}
		child, sib := getChild(n, label, depth)
		if prove {
			// proof will have sibling hash for each interior node.
			proof.Push(getNodeHash(sib))
		}
		n = *child
	}

	dig := getNodeHash(t.root)
	// empty node.
	if n == nil {
		proof.Outcome = &merkle.Deadend{}
		return false, nil, proof, dig, false
	}
	// not interior node. labels differ within bits, so a full-depth path
	// always ends at a leaf.
	if n.child0 != nil || n.child1 != nil {
		panic("memtree: path ended at interior node")
	}
	// leaf node with different label.
	if !std.BytesEqual(n.label, label) {
		proof.Outcome = &merkle.Collision{Label: n.label, Hash: t.hasher.Commit(n.val)}
		return false, nil, proof, dig, false
	}
	// leaf node with same label.
	// the proof gets its own copy, since verifying it takes the val.
	proof.Outcome = &merkle.Exists{Val: append([]byte{}, n.val...)}
	return true, n.val, proof, dig, false
}

func getNodeHash(n *node) []byte {
	if n == nil {
		return merkle.EmptyHash()
	}
	return n.hash
}

func (t *Tree) setLeafHash(n *node) {
	n.hash = t.hasher.Value(n.label, n.val)
}

func (t *Tree) setInteriorHash(n *node) {
	n.hash = t.hasher.Internal(getNodeHash(n.child0), getNodeHash(n.child1))
}

// getChild returns a child and its sibling child,
// relative to the bit referenced by label and depth.
func getChild(n *node, label []byte, depth uint64) (**node, *node) {
	if !merkle.GetBit(label, depth) {
		return &n.child0, n.child1
	} else {
		return &n.child1, n.child0
	}
}
