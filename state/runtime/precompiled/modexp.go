package precompiled

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/helper/common"
)

type modExp struct {
}

var (
	big1      = big.NewInt(1)
	big4      = big.NewInt(4)
	big8      = big.NewInt(8)
	big16     = big.NewInt(16)
	big32     = big.NewInt(32)
	big64     = big.NewInt(64)
	big96     = big.NewInt(96)
	big480    = big.NewInt(480)
	big1024   = big.NewInt(1024)
	big3072   = big.NewInt(3072)
	big199680 = big.NewInt(199680)
)

var (
	divisor = big.NewInt(20)
)

func adjustedExponentLength(expLen, head *big.Int) *big.Int {
	bitlength := uint64(0)
	if head.Sign() != 0 {
		bitlength = uint64(head.BitLen() - 1)
	}

	if expLen.Cmp(big32) <= 0 {
		// index of the highest bit
		return new(big.Int).SetUint64(bitlength)
	}

	adj := new(big.Int).Sub(expLen, big32)
	adj.Mul(adj, big8)
	adj.Add(adj, new(big.Int).SetUint64(bitlength))

	return adj
}

func subMul(x, a, b, c *big.Int) *big.Int {
	// x ** 2 // a + b * x - c
	tmp := new(big.Int)

	tmp.Mul(x, x)
	tmp.Div(tmp, a)

	x.Mul(x, b)
	x.Sub(x, c)

	return x.Add(x, tmp)
}

func multComplexity(x *big.Int) *big.Int {
	switch {
	case x.Cmp(big64) <= 0:
		x.Mul(x, x)
	case x.Cmp(big1024) <= 0:
		x = subMul(x, big4, big96, big3072)
	default:
		x = subMul(x, big16, big480, big199680)
	}

	return x
}

// word returns the 32 byte word at offset, zero padded
func word(input []byte, offset uint64) []byte {
	return common.RightPadSlice(input, offset, 32)
}

func (m *modExp) Gas(input []byte, config *chain.ForksInTime) uint64 {
	baseLen := new(big.Int).SetBytes(word(input, 0))
	expLen := new(big.Int).SetBytes(word(input, 32))
	modLen := new(big.Int).SetBytes(word(input, 64))

	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}

	expHeadLen := uint64(32)
	if expLen.Cmp(big32) < 0 {
		expHeadLen = expLen.Uint64()
	}

	expHead := new(big.Int)

	if baseLen.IsUint64() {
		if bLen := baseLen.Uint64(); bLen < uint64(len(input)) {
			expHead.SetBytes(common.RightPadSlice(input, bLen, expHeadLen))
		}
	}

	// mult_complexity(max(length_of_MODULUS, length_of_BASE))
	gasCost := new(big.Int)
	if modLen.Cmp(baseLen) >= 0 {
		gasCost.Set(modLen)
	} else {
		gasCost.Set(baseLen)
	}

	gasCost = multComplexity(gasCost)

	adjExpLen := adjustedExponentLength(expLen, expHead)
	if adjExpLen.Cmp(big1) >= 0 {
		gasCost.Mul(gasCost, adjExpLen)
	}

	gasCost.Div(gasCost, divisor)

	if !gasCost.IsUint64() {
		return math.MaxUint64
	}

	return gasCost.Uint64()
}

func (m *modExp) Run(input []byte) ([]byte, error) {
	baseLen := binary.BigEndian.Uint64(word(input, 0)[24:])
	expLen := binary.BigEndian.Uint64(word(input, 32)[24:])
	modLen := binary.BigEndian.Uint64(word(input, 64)[24:])

	if len(input) > 96 {
		input = input[96:]
	} else {
		input = input[:0]
	}

	if baseLen == 0 && modLen == 0 {
		return []byte{}, nil
	}

	base := new(big.Int).SetBytes(common.RightPadSlice(input, 0, baseLen))
	exponent := new(big.Int).SetBytes(common.RightPadSlice(input, baseLen, expLen))
	modulus := new(big.Int).SetBytes(common.RightPadSlice(input, baseLen+expLen, modLen))

	var res []byte
	if modulus.Sign() != 0 {
		res = base.Exp(base, exponent, modulus).Bytes()
	}

	return common.LeftPad(res, int(modLen)), nil
}
