package merkle

// Err classifies why a proof failed to verify.
// every non-[ErrNone] code is terminal; callers decide whether to
// retry with a different proof.
type Err uint64

const (
	ErrNone Err = iota
	// ErrMalformedProof means the proof's fields don't fit its outcome,
	// or the proof doesn't fit the tree's bit-depth.
	ErrMalformedProof
	// ErrSameKey means a collision proof names the queried label itself.
	ErrSameKey
	// ErrRootMismatch means the proof recombines to a different root.
	ErrRootMismatch
	// ErrNoRevealedValue means the hash chain checked out,
	// but the outcome has no value to hand back.
	ErrNoRevealedValue
	// ErrDecode means the proof bytes couldn't be parsed.
	ErrDecode
)

func (e Err) String() string {
	switch e {
	case ErrNone:
		return "none"
	case ErrMalformedProof:
		return "malformed proof"
	case ErrSameKey:
		return "same key"
	case ErrRootMismatch:
		return "root mismatch"
	case ErrNoRevealedValue:
		return "no revealed value"
	case ErrDecode:
		return "decode"
	default:
		return "unknown"
	}
}
