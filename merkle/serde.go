package merkle

import (
	"github.com/mit-pdos/smtproof/cryptoffi"
	"github.com/mit-pdos/smtproof/safemarshal"
)

const (
	ExistsTag    byte = 0
	CollisionTag byte = 1
	DeadendTag   byte = 2
)

// proofWire is the flat encoding of a [Proof].
// each optional field is a presence flag, then a length-prefixed slice.
type proofWire struct {
	Siblings [][]byte
	Tag      byte
	Label    []byte
	Hash     []byte
	Val      []byte
}

func proofWireEncode(b0 []byte, o *proofWire) []byte {
	var b = b0
	b = safemarshal.WriteSlice2D(b, o.Siblings)
	b = safemarshal.WriteByte(b, o.Tag)
	b = safemarshal.WriteOptSlice1D(b, o.Label)
	b = safemarshal.WriteOptSlice1D(b, o.Hash)
	b = safemarshal.WriteOptSlice1D(b, o.Val)
	return b
}

func proofWireDecode(b0 []byte) (*proofWire, []byte, bool) {
	a1, b1, err1 := safemarshal.ReadSlice2D(b0)
	if err1 {
		return nil, nil, true
	}
	a2, b2, err2 := safemarshal.ReadByte(b1)
	if err2 {
		return nil, nil, true
	}
	a3, b3, err3 := safemarshal.ReadOptSlice1D(b2)
	if err3 {
		return nil, nil, true
	}
	a4, b4, err4 := safemarshal.ReadOptSlice1D(b3)
	if err4 {
		return nil, nil, true
	}
	a5, b5, err5 := safemarshal.ReadOptSlice1D(b4)
	if err5 {
		return nil, nil, true
	}
	return &proofWire{Siblings: a1, Tag: a2, Label: a3, Hash: a4, Val: a5}, b5, false
}

// ProofEncode appends the encoding of p to b0.
// a proof without an outcome encodes as [Deadend].
func ProofEncode(b0 []byte, p *Proof) []byte {
	w := &proofWire{Siblings: p.Siblings}
	switch o := p.Outcome.(type) {
	case *Exists:
		w.Tag = ExistsTag
		w.Val = o.Val
	case *Collision:
		w.Tag = CollisionTag
		w.Label = o.Label
		w.Hash = o.Hash
	default:
		w.Tag = DeadendTag
	}
	return proofWireEncode(b0, w)
}

// ProofDecode parses a proof off the front of b0 and returns the rest.
// it gives [ErrDecode] for bytes that don't parse, and [ErrMalformedProof]
// for fields that parse but don't fit the proof's tag.
func ProofDecode(b0 []byte) (*Proof, []byte, Err) {
	w, b, err := proofWireDecode(b0)
	if err {
		return nil, nil, ErrDecode
	}
	if uint64(len(w.Siblings)) > cryptoffi.HashLen*8 {
		return nil, nil, ErrMalformedProof
	}
	for _, sib := range w.Siblings {
		if uint64(len(sib)) != cryptoffi.HashLen {
			return nil, nil, ErrMalformedProof
		}
	}

	p := &Proof{Siblings: w.Siblings}
	switch w.Tag {
	case ExistsTag:
		if w.Label != nil || w.Hash != nil || w.Val == nil {
			return nil, nil, ErrMalformedProof
		}
		p.Outcome = &Exists{Val: w.Val}
	case CollisionTag:
		if w.Label == nil || w.Hash == nil || w.Val != nil {
			return nil, nil, ErrMalformedProof
		}
		p.Outcome = &Collision{Label: w.Label, Hash: w.Hash}
	case DeadendTag:
		if w.Label != nil || w.Hash != nil || w.Val != nil {
			return nil, nil, ErrMalformedProof
		}
		p.Outcome = &Deadend{}
	default:
		return nil, nil, ErrDecode
	}
	return p, b, ErrNone
}
