package keccak

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umbracle/fastrlp"
)

func TestKeccak256Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256(nil, nil)),
	)
}

func TestKeccak256PoolReuse(t *testing.T) {
	t.Parallel()

	first := Keccak256(nil, []byte("abc"))
	second := Keccak256(nil, []byte("abc"))

	assert.Equal(t, first, second)
}

func TestKeccak256Rlp(t *testing.T) {
	t.Parallel()

	ar := &fastrlp.Arena{}
	v := ar.NewBytes([]byte{0x1, 0x2})

	assert.Equal(t, Keccak256(nil, v.MarshalTo(nil)), Keccak256Rlp(nil, v))
}
