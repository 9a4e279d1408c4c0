package merkle

import (
	"github.com/mit-pdos/smtproof/cryptoffi"
)

// Outcome is what a query found at the bottom of its path.
// it's one of [*Exists], [*Collision], or [*Deadend].
type Outcome interface {
	isOutcome()
}

// Exists reveals the value committed under the queried label.
// a nil Val means the value was already taken by [Proof.Verify].
type Exists struct {
	Val []byte
}

// Collision shows a different leaf on the queried label's path.
// Hash is that leaf's value commitment, which hides the value itself.
type Collision struct {
	Label []byte
	Hash  []byte
}

// Deadend shows an empty subtree on the queried label's path.
type Deadend struct{}

func (*Exists) isOutcome()    {}
func (*Collision) isOutcome() {}
func (*Deadend) isOutcome()   {}

// Proof gives the sibling digests along a label's path.
// Siblings go from the root's child level down to the leaf's level.
type Proof struct {
	Siblings [][]byte
	Outcome  Outcome
}

func (p *Proof) Depth() uint64 {
	return uint64(len(p.Siblings))
}

// Push adds the sibling one level below the deepest one so far.
func (p *Proof) Push(sib []byte) {
	p.Siblings = append(p.Siblings, sib)
}

// IsSane checks the proof's shape for a tree with bits-long labels,
// before any hashing happens.
// a [Deadend] proof is never sane.
func (p *Proof) IsSane(bits uint64) bool {
	if !ValidBits(bits) {
		return false
	}
	depth := p.Depth()
	if depth == 0 || depth > bits {
		return false
	}
	for _, sib := range p.Siblings {
		if uint64(len(sib)) != cryptoffi.HashLen {
			return false
		}
	}

	switch o := p.Outcome.(type) {
	case *Exists:
		return o.Val != nil && len(o.Val) <= MaxValLen
	case *Collision:
		return o.Label != nil && o.Hash != nil &&
			uint64(len(o.Label)) == bits/8 &&
			uint64(len(o.Hash)) == cryptoffi.HashLen
	default:
		// Deadend proofs and missing outcomes.
		return false
	}
}
