package precompiled

import (
	"crypto/sha256"
	"errors"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"

	"github.com/0xPolygon/evm-bridge/chain"
	"github.com/0xPolygon/evm-bridge/crypto"
	"github.com/0xPolygon/evm-bridge/helper/common"
	"github.com/0xPolygon/evm-bridge/helper/keccak"
)

var errInvalidSignature = errors.New("invalid signature")

type ecrecover struct {
}

func (e *ecrecover) Gas(input []byte, config *chain.ForksInTime) uint64 {
	return 3000
}

func (e *ecrecover) Run(input []byte) ([]byte, error) {
	pubKey, ok := recoverInput(input)
	if !ok {
		// an invalid signature is a successful call without output
		return nil, nil
	}

	dst := keccak.Keccak256(nil, pubKey[1:])

	return common.LeftPad(dst[12:], 32), nil
}

// ecrecoverPublicKey returns the 64 byte uncompressed public key
type ecrecoverPublicKey struct {
}

func (e *ecrecoverPublicKey) Gas(input []byte, config *chain.ForksInTime) uint64 {
	return 3000
}

func (e *ecrecoverPublicKey) Run(input []byte) ([]byte, error) {
	pubKey, ok := recoverInput(input)
	if !ok {
		return nil, errInvalidSignature
	}

	return pubKey[1:], nil
}

// recoverInput decodes hash, v, r and s words and recovers the signer key
func recoverInput(input []byte) ([]byte, bool) {
	input = common.RightPadSlice(input, 0, 128)

	// recover the value v. Expect all zeros except the last byte
	for i := 32; i < 63; i++ {
		if input[i] != 0 {
			return nil, false
		}
	}

	v := input[63] - 27
	r := new(uint256.Int).SetBytes32(input[64:96])
	s := new(uint256.Int).SetBytes32(input[96:128])

	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, false
	}

	sig := make([]byte, 65)
	copy(sig, input[64:128])
	sig[64] = v

	pubKey, err := crypto.Ecrecover(input[:32], sig)
	if err != nil {
		return nil, false
	}

	return pubKey, true
}

type identity struct {
}

func (i *identity) Gas(input []byte, config *chain.ForksInTime) uint64 {
	return baseGasCalc(input, 15, 3)
}

func (i *identity) Run(in []byte) ([]byte, error) {
	out := make([]byte, len(in))
	copy(out, in)

	return out, nil
}

type sha256h struct {
}

func (s *sha256h) Gas(input []byte, config *chain.ForksInTime) uint64 {
	return baseGasCalc(input, 60, 12)
}

func (s *sha256h) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)

	return h[:], nil
}

// sha3fips hashes with the FIPS-202 SHA3-256, not the legacy keccak padding
type sha3fips struct {
}

func (s *sha3fips) Gas(input []byte, config *chain.ForksInTime) uint64 {
	return baseGasCalc(input, 60, 12)
}

func (s *sha3fips) Run(input []byte) ([]byte, error) {
	h := sha3.Sum256(input)

	return h[:], nil
}

type ripemd160h struct {
}

func (r *ripemd160h) Gas(input []byte, config *chain.ForksInTime) uint64 {
	return baseGasCalc(input, 600, 120)
}

func (r *ripemd160h) Run(input []byte) ([]byte, error) {
	ripemd := ripemd160.New()
	ripemd.Write(input)
	res := ripemd.Sum(nil)

	return common.LeftPad(res, 32), nil
}

func baseGasCalc(input []byte, base, word uint64) uint64 {
	return base + uint64(len(input)+31)/32*word
}
