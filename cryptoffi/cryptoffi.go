// Package cryptoffi wraps the hash and randomness primitives
// the rest of the module builds on.
package cryptoffi

import (
	"crypto/rand"

	"github.com/zeebo/blake3"
)

const (
	HashLen uint64 = 32
)

// # Hash

// Hasher is a streaming hash with output length [HashLen].
type Hasher struct {
	h *blake3.Hasher
}

func NewHasher() *Hasher {
	return &Hasher{h: blake3.New()}
}

func (hr *Hasher) Write(b []byte) {
	// blake3 Write never errors.
	hr.h.Write(b)
}

// Sum appends the digest to b and returns the result.
// it does not change the underlying hash state.
func (hr *Hasher) Sum(b []byte) []byte {
	return hr.h.Sum(b)
}

func Hash(data []byte) []byte {
	hr := NewHasher()
	hr.Write(data)
	return hr.Sum(nil)
}

// # Random

// RandBytes returns [n] random bytes.
func RandBytes(n uint64) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	// don't care about recovering from crypto/rand failures.
	if err != nil {
		panic("crypto/rand call failed")
	}
	return b
}
