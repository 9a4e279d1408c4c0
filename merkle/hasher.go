package merkle

import (
	"github.com/mit-pdos/smtproof/cryptoffi"
)

// MaxValLen bounds the value an [Exists] proof may reveal.
const MaxValLen = 0xffff

// Hasher is the digest algebra a tree commits with.
// implementations must be deterministic and order-sensitive,
// i.e., Internal(a, b) != Internal(b, a) for a != b.
type Hasher interface {
	// Internal hashes two child digests into their parent.
	Internal(left, right []byte) []byte
	// Leaf hashes a label with the committed hash of its value.
	Leaf(label, hash []byte) []byte
	// Value hashes a label directly with its value.
	Value(label, val []byte) []byte
}

// EmptyHash is the digest of an empty subtree.
func EmptyHash() []byte {
	return make([]byte, cryptoffi.HashLen)
}

// GetBit returns bit n of b, counting from the most-significant bit of b[0].
// it expects n < len(b)*8.
func GetBit(b []byte, n uint64) bool {
	slot := n / 8
	off := 7 - n%8
	return b[slot]&(1<<off) != 0
}

// ValidBits reports whether a tree can branch on bits label bits.
func ValidBits(bits uint64) bool {
	return bits != 0 && bits%8 == 0 && bits <= cryptoffi.HashLen*8
}
