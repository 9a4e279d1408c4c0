package merkle

import (
	"github.com/goose-lang/std"
)

// Kind says which way an authenticated proof went.
type Kind uint64

const (
	// Included means the label maps to Result.Val.
	Included Kind = iota + 1
	// Excluded means the label isn't in the tree.
	Excluded
)

// Result is an authenticated query answer.
type Result struct {
	Kind Kind
	// Val is only set for [Included]. it aliases the proof's value.
	Val []byte
}

// Verify checks the proof for label against root, in a tree with bits-long labels.
// on success, it returns the revealed value and takes it out of the proof,
// so verifying the same proof twice gives [ErrMalformedProof].
// exclusion proofs that check out still give [ErrNoRevealedValue];
// use [Proof.Check] to tell them apart from failures.
func (p *Proof) Verify(h Hasher, root, label []byte, bits uint64) ([]byte, Err) {
	res, err := p.Check(h, root, label, bits)
	if err != ErrNone {
		return nil, err
	}
	if res.Kind != Included {
		return nil, ErrNoRevealedValue
	}
	ex := p.Outcome.(*Exists)
	val := ex.Val
	ex.Val = nil
	return val, ErrNone
}

// Check authenticates the proof like [Proof.Verify], without taking the value.
// label may be longer than bits/8 bytes; the tree only branches on its prefix.
func (p *Proof) Check(h Hasher, root, label []byte, bits uint64) (*Result, Err) {
	if uint64(len(label))*8 < bits {
		return nil, ErrMalformedProof
	}
	if !p.IsSane(bits) {
		return nil, ErrMalformedProof
	}
	if c, ok := p.Outcome.(*Collision); ok {
		if std.BytesEqual(c.Label, label[:bits/8]) {
			return nil, ErrSameKey
		}
	}

	if !std.BytesEqual(p.ImpliedRoot(h, label), root) {
		return nil, ErrRootMismatch
	}
	if ex, ok := p.Outcome.(*Exists); ok {
		return &Result{Kind: Included, Val: ex.Val}, ErrNone
	}
	return &Result{Kind: Excluded}, ErrNone
}

// ImpliedRoot folds the proof up from its leaf to the root it commits to,
// without judging whether the proof is sane.
// it returns nil if there's no outcome or the path is longer than label.
func (p *Proof) ImpliedRoot(h Hasher, label []byte) []byte {
	if p.Depth() > uint64(len(label))*8 {
		return nil
	}
	var currHash []byte
	switch o := p.Outcome.(type) {
	case *Exists:
		currHash = h.Value(label, o.Val)
	case *Collision:
		currHash = h.Leaf(o.Label, o.Hash)
	case *Deadend:
		currHash = EmptyHash()
	default:
		return nil
	}

	// the last sibling is next to the leaf, at bit depth-1.
	// depth offset by one to prevent underflow.
	for depth := p.Depth(); depth >= 1; depth-- {
		sib := p.Siblings[depth-1]
		if GetBit(label, depth-1) {
			currHash = h.Internal(sib, currHash)
		} else {
			currHash = h.Internal(currHash, sib)
		}
	}
	return currHash
}
