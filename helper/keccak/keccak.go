package keccak

import (
	"hash"

	"github.com/umbracle/fastrlp"
	"golang.org/x/crypto/sha3"
)

type hashImpl interface {
	hash.Hash
	Read(b []byte) (int, error)
}

// Keccak is the sha3 hash
type Keccak struct {
	buf  []byte // buffer to store intermediate rlp marshal values
	tmp  []byte
	hash hashImpl
}

// WriteRlp writes an RLP value
func (k *Keccak) WriteRlp(dst []byte, v *fastrlp.Value) []byte {
	k.buf = v.MarshalTo(k.buf[:0])
	_, _ = k.Write(k.buf)

	return k.Sum(dst)
}

// Write implements the hash interface
func (k *Keccak) Write(b []byte) (int, error) {
	return k.hash.Write(b)
}

// Reset implements the hash interface
func (k *Keccak) Reset() {
	k.buf = k.buf[:0]
	k.hash.Reset()
}

// Sum squeezes the state into dst
func (k *Keccak) Sum(dst []byte) []byte {
	_, _ = k.hash.Read(k.tmp)

	return append(dst, k.tmp...)
}

// NewKeccak256 returns a new keccak 256
func NewKeccak256() *Keccak {
	impl, ok := sha3.NewLegacyKeccak256().(hashImpl)
	if !ok {
		return nil
	}

	return &Keccak{hash: impl, tmp: make([]byte, impl.Size())}
}

// Read squeezes the state into the internal buffer and returns it.
// The returned slice is only valid until the next call.
func (k *Keccak) Read() []byte {
	_, _ = k.hash.Read(k.tmp)

	return k.tmp
}
