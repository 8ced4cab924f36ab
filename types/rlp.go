package types

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/umbracle/fastrlp"
)

type unmarshalRLPFunc func(p *fastrlp.Parser, v *fastrlp.Value) error

// UnmarshalRlp parses input with a pooled parser and hands the root value to obj
func UnmarshalRlp(obj unmarshalRLPFunc, input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return obj(pr, v)
}

// getUint256 decodes an RLP scalar into a 256-bit word
func getUint256(v *fastrlp.Value) (*uint256.Int, error) {
	buf, err := v.Bytes()
	if err != nil {
		return nil, err
	}

	if len(buf) > 32 {
		return nil, fmt.Errorf("rlp: scalar of %d bytes overflows 256 bits", len(buf))
	}

	if len(buf) > 0 && buf[0] == 0 {
		return nil, fmt.Errorf("rlp: scalar has leading zero bytes")
	}

	return new(uint256.Int).SetBytes(buf), nil
}

// newUint256 encodes a 256-bit word as an RLP scalar, nil meaning zero
func newUint256(a *fastrlp.Arena, v *uint256.Int) *fastrlp.Value {
	if v == nil {
		return a.NewBytes(nil)
	}

	return a.NewCopyBytes(v.Bytes())
}
