package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEIP55(t *testing.T) {
	t.Parallel()

	cases := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	for _, c := range cases {
		addr := StringToAddress(c)
		assert.Equal(t, c, addr.String())
	}
}

func TestAddressUnmarshalText(t *testing.T) {
	t.Parallel()

	var addr Address

	require.NoError(t, addr.UnmarshalText([]byte("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")))
	assert.Equal(t, StringToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"), addr)

	assert.Error(t, addr.UnmarshalText([]byte("0x01")))
}

func TestBytesToHashTruncates(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 40)
	buf[39] = 1

	h := BytesToHash(buf)
	assert.Equal(t, byte(1), h[31])

	a := BytesToAddress([]byte{1, 2})
	assert.Equal(t, byte(2), a[19])
	assert.Equal(t, byte(1), a[18])
}

func TestEmptyCodeHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		StringToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"),
		EmptyCodeHash,
	)
}

func TestAccountIDJSON(t *testing.T) {
	t.Parallel()

	id := StringToAccountID("0x0102")

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var id2 AccountID
	require.NoError(t, json.Unmarshal(data, &id2))
	assert.Equal(t, id, id2)
}
