package crypto

import (
	"crypto/ecdsa"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/types"
)

// FrontierSigner implements tx signer interface without replay protection
type FrontierSigner struct {
	isHomestead bool
}

// NewFrontierSigner is the constructor of FrontierSigner
func NewFrontierSigner(isHomestead bool) *FrontierSigner {
	return &FrontierSigner{
		isHomestead: isHomestead,
	}
}

// Hash returns the keccak256 hash of the transaction
func (f *FrontierSigner) Hash(tx *types.Transaction) types.Hash {
	return calcTxHash(tx, 0)
}

// Sender decodes the signature and returns the sender of the transaction
func (f *FrontierSigner) Sender(tx *types.Transaction) (types.Address, error) {
	if tx.V == nil || !tx.V.IsUint64() {
		return types.ZeroAddress, errInvalidSignature
	}

	v := tx.V.Uint64()
	if v != 27 && v != 28 {
		return types.ZeroAddress, errInvalidSignature
	}

	return recoverAddress(f.Hash(tx), tx.R, tx.S, byte(v-27), f.isHomestead)
}

// SignTx signs the transaction using the passed in private key
func (f *FrontierSigner) SignTx(tx *types.Transaction, priv *ecdsa.PrivateKey) (*types.Transaction, error) {
	tx = tx.Copy()

	h := f.Hash(tx)

	sig, err := Sign(priv, h[:])
	if err != nil {
		return nil, err
	}

	tx.R = new(uint256.Int).SetBytes(sig[:32])
	tx.S = new(uint256.Int).SetBytes(sig[32:64])
	tx.V = new(uint256.Int).AddUint64(u27, uint64(sig[64]))

	return tx, nil
}
