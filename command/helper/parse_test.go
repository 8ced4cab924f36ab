package helper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/evm-bridge/types"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	addr, err := ParseAddress("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Equal(t, types.StringToAddress("0xaa"), addr)

	_, err = ParseAddress("0xaa")
	assert.ErrorContains(t, err, "expected 20 bytes")

	_, err = ParseAddress("aa")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw    string
		amount uint64
		err    bool
	}{
		{"1000", 1000, false},
		{"0x3e8", 1000, false},
		{"", 0, false},
		{"-1", 0, true},
		{"0x1" + strings.Repeat("0", 64), 0, true},
	}

	for _, c := range cases {
		amount, err := ParseAmount(c.raw)
		if c.err {
			assert.Error(t, err, c.raw)

			continue
		}

		require.NoError(t, err, c.raw)
		assert.Equal(t, c.amount, amount.Uint64())
	}
}

func TestParseHashAndBytes(t *testing.T) {
	t.Parallel()

	hash, err := ParseHash("0x01")
	require.NoError(t, err)
	assert.Equal(t, types.BytesToHash([]byte{1}), hash)

	_, err = ParseHash("0x" + strings.Repeat("00", 33))
	assert.Error(t, err)

	data, err := ParseBytes("")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = ParseBytes("0xc0de")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xc0, 0xde}, data)
}

func TestFormatKV(t *testing.T) {
	t.Parallel()

	out := FormatKV([]string{"Key|Value", "Empty|"})
	assert.Contains(t, out, "Key   = Value")
	assert.Contains(t, out, "<none>")
}
