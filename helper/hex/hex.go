package hex

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// EncodeToHex generates a hex string based on the byte representation, with the '0x' prefix
func EncodeToHex(str []byte) string {
	return "0x" + hex.EncodeToString(str)
}

// EncodeToString is a wrapper method for hex.EncodeToString
func EncodeToString(str []byte) string {
	return hex.EncodeToString(str)
}

// DecodeHex converts a hex string to a byte array. The '0x' prefix is optional
// and odd length strings are left padded with a zero nibble.
func DecodeHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	return hex.DecodeString(str)
}

// MustDecodeHex type-checks and converts a hex string to a byte array
func MustDecodeHex(str string) []byte {
	buf, err := DecodeHex(str)
	if err != nil {
		panic(fmt.Errorf("could not decode hex: %w", err))
	}

	return buf
}

// EncodeUint64 encodes a number as a hex string with 0x prefix.
func EncodeUint64(i uint64) string {
	enc := make([]byte, 2, 10)
	copy(enc, "0x")

	return string(strconv.AppendUint(enc, i, 16))
}

// DecodeUint64 decodes a hex string with optional 0x prefix to uint64
func DecodeUint64(hexStr string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(hexStr, "0x"), 16, 64)
}

// EncodeUint256 encodes a 256-bit word as a hex quantity with 0x prefix
func EncodeUint256(num *uint256.Int) string {
	if num == nil {
		return "0x0"
	}

	return num.Hex()
}

// DecodeUint256 parses either a 0x prefixed hex quantity or a decimal string
func DecodeUint256(str string) (*uint256.Int, error) {
	if str == "" {
		return uint256.NewInt(0), nil
	}

	if strings.HasPrefix(str, "0x") {
		buf, err := DecodeHex(str)
		if err != nil {
			return nil, err
		}

		if len(buf) > 32 {
			return nil, fmt.Errorf("hex quantity %s overflows 256 bits", str)
		}

		return new(uint256.Int).SetBytes(buf), nil
	}

	return uint256.FromDecimal(str)
}
