package merkle_test

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/mit-pdos/smtproof/cryptoffi"
	"github.com/mit-pdos/smtproof/internal/memtree"
	"github.com/mit-pdos/smtproof/merkle"
	"github.com/mit-pdos/smtproof/smthash"
)

const bits = cryptoffi.HashLen * 8

type entry struct {
	label []byte
	val   []byte
}

func seedTree(t *testing.T, h memtree.Hasher, n int) (*memtree.Tree, []entry) {
	var seed [32]byte
	rnd := rand.NewChaCha8(seed)
	tr := memtree.New(h, bits)
	var ents []entry
	for i := 0; i < n; i++ {
		label := make([]byte, cryptoffi.HashLen)
		rnd.Read(label)
		val := make([]byte, i%40)
		rnd.Read(val)
		if tr.Put(bytes.Clone(label), bytes.Clone(val)) {
			t.Fatal()
		}
		ents = append(ents, entry{label: label, val: val})
	}
	return tr, ents
}

func TestHonestMemb(t *testing.T) {
	for _, h := range []*smthash.Hasher{smthash.Blake3(), smthash.Sha3()} {
		tr, ents := seedTree(t, h, 100)
		dig := tr.Digest()
		for _, e := range ents {
			inTree, _, proof, dig0, err := tr.Prove(e.label)
			if err || !inTree {
				t.Fatal()
			}
			if !bytes.Equal(dig, dig0) {
				t.Fatal()
			}
			val, err0 := proof.Verify(h, dig, e.label, bits)
			if err0 != merkle.ErrNone {
				t.Fatal(h, err0)
			}
			if !bytes.Equal(val, e.val) {
				t.Fatal()
			}
		}
	}
}

func TestWrongHasher(t *testing.T) {
	tr, ents := seedTree(t, smthash.Blake3(), 10)
	_, _, proof, dig, _ := tr.Prove(ents[0].label)
	if _, err := proof.Verify(smthash.Sha3(), dig, ents[0].label, bits); err != merkle.ErrRootMismatch {
		t.Fatal(err)
	}
}

func TestPerturbSibling(t *testing.T) {
	h := smthash.Blake3()
	tr, ents := seedTree(t, h, 50)
	for _, e := range ents {
		_, _, proof, dig, _ := tr.Prove(e.label)
		for i := range proof.Siblings {
			// fresh proof per perturbation, since a pass would take the val.
			_, _, p, _, _ := tr.Prove(e.label)
			p.Siblings[i] = bytes.Clone(p.Siblings[i])
			p.Siblings[i][0] ^= 1
			if _, err := p.Verify(h, dig, e.label, bits); err != merkle.ErrRootMismatch {
				t.Fatal(err)
			}
		}
		// and the untouched proof still passes.
		if _, err := proof.Verify(h, dig, e.label, bits); err != merkle.ErrNone {
			t.Fatal(err)
		}
	}
}

func TestPerturbVal(t *testing.T) {
	h := smthash.Blake3()
	tr, ents := seedTree(t, h, 10)
	_, _, proof, dig, _ := tr.Prove(ents[1].label)
	ex := proof.Outcome.(*merkle.Exists)
	ex.Val = append(ex.Val, 0)
	if _, err := proof.Verify(h, dig, ents[1].label, bits); err != merkle.ErrRootMismatch {
		t.Fatal(err)
	}
}

// findNonmemb returns a label whose proof ends in the wanted outcome.
func findNonmemb(t *testing.T, tr *memtree.Tree, wantCollision bool) ([]byte, *merkle.Proof, []byte) {
	var seed [32]byte
	seed[0] = 1
	rnd := rand.NewChaCha8(seed)
	for i := 0; i < 1_000; i++ {
		label := make([]byte, cryptoffi.HashLen)
		rnd.Read(label)
		inTree, _, proof, dig, err := tr.Prove(label)
		if err || inTree {
			t.Fatal()
		}
		_, isColl := proof.Outcome.(*merkle.Collision)
		if isColl == wantCollision && proof.Depth() > 0 {
			return label, proof, dig
		}
	}
	t.Fatal("no such label")
	return nil, nil, nil
}

func TestCollisionNoRevealedValue(t *testing.T) {
	h := smthash.Blake3()
	tr, _ := seedTree(t, h, 100)
	label, proof, dig := findNonmemb(t, tr, true)

	// the chain checks out, yet Verify has no value to give.
	val, err := proof.Verify(h, dig, label, bits)
	if err != merkle.ErrNoRevealedValue {
		t.Fatal(err)
	}
	if val != nil {
		t.Fatal()
	}
	res, err := proof.Check(h, dig, label, bits)
	if err != merkle.ErrNone || res.Kind != merkle.Excluded || res.Val != nil {
		t.Fatal(err)
	}

	// bad root still fails.
	if _, err = proof.Verify(h, merkle.EmptyHash(), label, bits); err != merkle.ErrRootMismatch {
		t.Fatal(err)
	}
}

func TestCollisionSameKey(t *testing.T) {
	h := smthash.Blake3()
	tr, _ := seedTree(t, h, 100)
	_, proof, dig := findNonmemb(t, tr, true)
	c := proof.Outcome.(*merkle.Collision)
	// claim the colliding leaf's own label is missing.
	if _, err := proof.Verify(h, dig, c.Label, bits); err != merkle.ErrSameKey {
		t.Fatal(err)
	}
}

func TestDeadendMalformed(t *testing.T) {
	h := smthash.Blake3()
	tr, _ := seedTree(t, h, 100)
	label, proof, dig := findNonmemb(t, tr, false)
	if !bytes.Equal(proof.ImpliedRoot(h, label), dig) {
		t.Fatal()
	}
	if _, err := proof.Verify(h, dig, label, bits); err != merkle.ErrMalformedProof {
		t.Fatal(err)
	}
}

func TestParallelVerify(t *testing.T) {
	h := smthash.Blake3()
	tr, ents := seedTree(t, h, 64)
	dig := tr.Digest()
	errs := make(chan merkle.Err, len(ents))
	for _, e := range ents {
		_, _, proof, _, _ := tr.Prove(e.label)
		go func(e entry, p *merkle.Proof) {
			_, err := p.Verify(h, dig, e.label, bits)
			errs <- err
		}(e, proof)
	}
	for range ents {
		if err := <-errs; err != merkle.ErrNone {
			t.Fatal(err)
		}
	}
}
