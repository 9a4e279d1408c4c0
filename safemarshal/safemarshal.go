// Package safemarshal reads length-checked values off a byte slice.
// every Read returns the remaining bytes and errors instead of panicking
// on short or adversarial input.
package safemarshal

import (
	"github.com/tchajed/marshal"
)

// ReadBytes is the one length check every other reader goes through.
// on error, rem is b unchanged.
func ReadBytes(b []byte, n uint64) (data []byte, rem []byte, err bool) {
	if uint64(len(b)) < n {
		return nil, b, true
	}
	data, rem = marshal.ReadBytes(b, n)
	return data, rem, false
}

func ReadInt(b []byte) (uint64, []byte, bool) {
	enc, rem, err := ReadBytes(b, 8)
	if err {
		return 0, b, true
	}
	x, _ := marshal.ReadInt(enc)
	return x, rem, false
}

func ReadByte(b []byte) (byte, []byte, bool) {
	enc, rem, err := ReadBytes(b, 1)
	if err {
		return 0, b, true
	}
	return enc[0], rem, false
}

func WriteByte(b []byte, x byte) []byte {
	return append(b, x)
}

// ReadFlag reads a presence byte, which must be 0 or 1.
func ReadFlag(b []byte) (data bool, rem []byte, err bool) {
	x, rem, err := ReadByte(b)
	if err {
		return
	}
	if x > 1 {
		err = true
		return
	}
	data = x == 1
	return
}

func WriteFlag(b []byte, data bool) []byte {
	if data {
		return WriteByte(b, 1)
	}
	return WriteByte(b, 0)
}

// ReadSlice1D reads a length-prefixed slice.
func ReadSlice1D(b []byte) ([]byte, []byte, bool) {
	n, rem, err := ReadInt(b)
	if err {
		return nil, b, true
	}
	return ReadBytes(rem, n)
}

func WriteSlice1D(b []byte, x []byte) []byte {
	return marshal.WriteBytes(marshal.WriteInt(b, uint64(len(x))), x)
}

// ReadOptSlice1D reads a presence flag and, if set, a slice.
// a present slice is never nil, even when empty.
func ReadOptSlice1D(b []byte) (data []byte, rem []byte, err bool) {
	some, rem, err := ReadFlag(b)
	if err || !some {
		return
	}
	data, rem, err = ReadSlice1D(rem)
	if err {
		return
	}
	if data == nil {
		data = []byte{}
	}
	return
}

// WriteOptSlice1D writes nil as absent.
func WriteOptSlice1D(b []byte, data []byte) []byte {
	if data == nil {
		return WriteFlag(b, false)
	}
	b = WriteFlag(b, true)
	return WriteSlice1D(b, data)
}

func ReadSlice2D(b []byte) (data [][]byte, rem []byte, err bool) {
	rem = b
	length, rem, err := ReadInt(rem)
	if err {
		return
	}
	// every element needs at least its length prefix.
	if length > uint64(len(rem))/8 {
		err = true
		return
	}
	for i := uint64(0); i < length; i++ {
		var data0 []byte
		data0, rem, err = ReadSlice1D(rem)
		if err {
			return
		}
		data = append(data, data0)
	}
	return
}

func WriteSlice2D(b []byte, xs [][]byte) []byte {
	b = marshal.WriteInt(b, uint64(len(xs)))
	for _, x := range xs {
		b = WriteSlice1D(b, x)
	}
	return b
}
