// Package smthash implements the digest algebra of a sparse merkle tree.
// every hash input ends in a tag byte, so internal nodes, leaves,
// and value commitments can't be confused for one another.
//
// the algebra satisfies Value(l, v) == Leaf(l, Commit(v)),
// which lets a tree reveal a leaf's commitment without its value.
package smthash

import (
	"fmt"
	"hash"

	"github.com/tchajed/marshal"
	"golang.org/x/crypto/sha3"

	"github.com/mit-pdos/smtproof/cryptoffi"
)

const (
	interiorNodeTag byte = 1
	leafNodeTag     byte = 2
	valueTag        byte = 3
)

// writer is the part of a hash both backends share.
type writer interface {
	Write(b []byte)
	Sum(b []byte) []byte
}

type algebra struct {
	newHasher func() writer
}

func (a *algebra) hash(parts ...[]byte) []byte {
	hr := a.newHasher()
	for _, p := range parts {
		hr.Write(p)
	}
	return hr.Sum(nil)
}

func (a *algebra) Internal(left, right []byte) []byte {
	return a.hash(left, right, []byte{interiorNodeTag})
}

func (a *algebra) Leaf(label, commit []byte) []byte {
	return a.hash(label, commit, []byte{leafNodeTag})
}

// Commit hides val behind a fixed-length hash.
func (a *algebra) Commit(val []byte) []byte {
	valLen := uint64(len(val))
	var b = make([]byte, 0, 8+valLen+1)
	b = marshal.WriteInt(b, valLen)
	b = append(b, val...)
	b = append(b, valueTag)
	return a.hash(b)
}

func (a *algebra) Value(label, val []byte) []byte {
	return a.Leaf(label, a.Commit(val))
}

// Hasher is an algebra that can also produce value commitments,
// which is what a tree needs to hand out collision proofs.
type Hasher struct {
	name string
	algebra
}

func (h *Hasher) Name() string {
	return h.name
}

func (h *Hasher) String() string {
	return h.name
}

// Blake3 is the default algebra.
func Blake3() *Hasher {
	return &Hasher{
		name:    "blake3",
		algebra: algebra{newHasher: func() writer { return cryptoffi.NewHasher() }},
	}
}

// Sha3 uses SHA3-256.
func Sha3() *Hasher {
	return &Hasher{
		name:    "sha3",
		algebra: algebra{newHasher: func() writer { return &stdHasher{h: sha3.New256()} }},
	}
}

// ByName resolves a hasher from its configured name.
func ByName(name string) (*Hasher, error) {
	switch name {
	case "", "blake3":
		return Blake3(), nil
	case "sha3":
		return Sha3(), nil
	default:
		return nil, fmt.Errorf("unknown hash %q", name)
	}
}

// stdHasher adapts a [hash.Hash], whose Write never errors.
type stdHasher struct {
	h hash.Hash
}

func (s *stdHasher) Write(b []byte) {
	s.h.Write(b)
}

func (s *stdHasher) Sum(b []byte) []byte {
	return s.h.Sum(b)
}
