// Package rootsig signs tree roots, so a verifier only trusts
// roots that the tree's owner vouched for.
package rootsig

import (
	"io"

	"github.com/tchajed/marshal"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/signature"
	"github.com/tink-crypto/tink-go/v2/tink"

	"github.com/mit-pdos/smtproof/cryptoffi"
	"github.com/mit-pdos/smtproof/safemarshal"
)

// rootSigTag separates root signatures from anything else the key signs.
const rootSigTag byte = 1

type Signer struct {
	h *keyset.Handle
	s tink.Signer
}

type Verifier struct {
	h *keyset.Handle
	v tink.Verifier
}

// NewSigner makes a fresh ED25519 key.
func NewSigner() (*Signer, error) {
	h, err := keyset.NewHandle(signature.ED25519KeyTemplate())
	if err != nil {
		return nil, err
	}
	return newSigner(h)
}

func newSigner(h *keyset.Handle) (*Signer, error) {
	s, err := signature.NewSigner(h)
	if err != nil {
		return nil, err
	}
	return &Signer{h: h, s: s}, nil
}

// ReadSigner loads a cleartext JSON keyset, as written by [Signer.Write].
func ReadSigner(r io.Reader) (*Signer, error) {
	h, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(r))
	if err != nil {
		return nil, err
	}
	return newSigner(h)
}

// Write stores the private keyset in cleartext.
func (s *Signer) Write(w io.Writer) error {
	return insecurecleartextkeyset.Write(s.h, keyset.NewJSONWriter(w))
}

func (s *Signer) Verifier() (*Verifier, error) {
	hPub, err := s.h.Public()
	if err != nil {
		return nil, err
	}
	return newVerifier(hPub)
}

func newVerifier(h *keyset.Handle) (*Verifier, error) {
	v, err := signature.NewVerifier(h)
	if err != nil {
		return nil, err
	}
	return &Verifier{h: h, v: v}, nil
}

// ReadVerifier loads a public JSON keyset, as written by [Verifier.Write].
func ReadVerifier(r io.Reader) (*Verifier, error) {
	h, err := keyset.ReadWithNoSecrets(keyset.NewJSONReader(r))
	if err != nil {
		return nil, err
	}
	return newVerifier(h)
}

func (v *Verifier) Write(w io.Writer) error {
	return v.h.WriteWithNoSecrets(keyset.NewJSONWriter(w))
}

func encodeRoot(epoch uint64, root []byte) []byte {
	b := make([]byte, 0, 1+8+8+cryptoffi.HashLen)
	b = safemarshal.WriteByte(b, rootSigTag)
	b = marshal.WriteInt(b, epoch)
	b = safemarshal.WriteSlice1D(b, root)
	return b
}

// SignRoot binds root to epoch.
func (s *Signer) SignRoot(epoch uint64, root []byte) ([]byte, error) {
	return s.s.Sign(encodeRoot(epoch, root))
}

// VerifyRoot errors if sig isn't a signature on (epoch, root).
func (v *Verifier) VerifyRoot(epoch uint64, root, sig []byte) (err bool) {
	return v.v.Verify(sig, encodeRoot(epoch, root)) != nil
}
