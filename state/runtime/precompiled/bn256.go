package precompiled

import (
	"errors"
	"math/big"

	bn256 "github.com/umbracle/go-eth-bn256"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/helper/common"
)

var (
	// true32Byte is returned if the bn256 pairing check succeeds
	true32Byte = common.LeftPad([]byte{1}, 32)

	// false32Byte is returned if the bn256 pairing check fails
	false32Byte = make([]byte, 32)

	errBadPairingInput = errors.New("bad elliptic curve pairing size")
)

func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}

	return p, nil
}

func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, err
	}

	return p, nil
}

type bn256Add struct {
}

func (b *bn256Add) Gas(input []byte, config *chain.ForksInTime) uint64 {
	if config.Istanbul {
		return 150
	}

	return 500
}

func (b *bn256Add) Run(input []byte) ([]byte, error) {
	x, err := newCurvePoint(common.RightPadSlice(input, 0, 64))
	if err != nil {
		return nil, err
	}

	y, err := newCurvePoint(common.RightPadSlice(input, 64, 64))
	if err != nil {
		return nil, err
	}

	res := new(bn256.G1)
	res.Add(x, y)

	return res.Marshal(), nil
}

type bn256Mul struct {
}

func (b *bn256Mul) Gas(input []byte, config *chain.ForksInTime) uint64 {
	if config.Istanbul {
		return 6000
	}

	return 40000
}

func (b *bn256Mul) Run(input []byte) ([]byte, error) {
	p, err := newCurvePoint(common.RightPadSlice(input, 0, 64))
	if err != nil {
		return nil, err
	}

	res := new(bn256.G1)
	res.ScalarMult(p, new(big.Int).SetBytes(common.RightPadSlice(input, 64, 32)))

	return res.Marshal(), nil
}

type bn256Pairing struct {
}

func (b *bn256Pairing) Gas(input []byte, config *chain.ForksInTime) uint64 {
	k := uint64(len(input) / 192)

	if config.Istanbul {
		return 45000 + k*34000
	}

	return 100000 + k*80000
}

func (b *bn256Pairing) Run(input []byte) ([]byte, error) {
	if len(input)%192 > 0 {
		return nil, errBadPairingInput
	}

	var (
		cs []*bn256.G1
		ts []*bn256.G2
	)

	for i := 0; i < len(input); i += 192 {
		c, err := newCurvePoint(input[i : i+64])
		if err != nil {
			return nil, err
		}

		t, err := newTwistPoint(input[i+64 : i+192])
		if err != nil {
			return nil, err
		}

		cs = append(cs, c)
		ts = append(ts, t)
	}

	if bn256.PairingCheck(cs, ts) {
		return true32Byte, nil
	}

	return false32Byte, nil
}
