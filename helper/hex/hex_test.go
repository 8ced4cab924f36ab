package hex

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected []byte
	}{
		{"0x", []byte{}},
		{"0x1", []byte{0x1}},
		{"abcd", []byte{0xab, 0xcd}},
		{"0x0102", []byte{0x1, 0x2}},
	}

	for _, c := range cases {
		buf, err := DecodeHex(c.input)
		require.NoError(t, err)
		assert.Equal(t, c.expected, buf)
	}

	_, err := DecodeHex("0xzz")
	assert.Error(t, err)
}

func TestUint64RoundTrip(t *testing.T) {
	t.Parallel()

	num, err := DecodeUint64(EncodeUint64(0xdeadbeef))
	require.NoError(t, err)
	assert.Equal(t, uint64(0xdeadbeef), num)
}

func TestDecodeUint256(t *testing.T) {
	t.Parallel()

	num, err := DecodeUint256("0x10")
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(16), num)

	num, err = DecodeUint256("1000")
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), num)

	num, err = DecodeUint256("")
	require.NoError(t, err)
	assert.True(t, num.IsZero())

	_, err = DecodeUint256("0x1" + strings.Repeat("0", 64))
	assert.Error(t, err)

	assert.Equal(t, "0x0", EncodeUint256(nil))
	assert.Equal(t, "0x10", EncodeUint256(uint256.NewInt(16)))
}
