package crypto

import (
	"crypto/ecdsa"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/evm-bridge/types"
)

// EIP155Signer implements replay protected signing
type EIP155Signer struct {
	chainID     uint64
	isHomestead bool
}

// NewEIP155Signer returns a new EIP155Signer object
func NewEIP155Signer(chainID uint64, isHomestead bool) *EIP155Signer {
	return &EIP155Signer{
		chainID:     chainID,
		isHomestead: isHomestead,
	}
}

// Hash is a wrapper function that calls calcTxHash with the EIP155Signer's chainID
func (e *EIP155Signer) Hash(tx *types.Transaction) types.Hash {
	return calcTxHash(tx, e.chainID)
}

// Sender returns the transaction sender
func (e *EIP155Signer) Sender(tx *types.Transaction) (types.Address, error) {
	if tx.V == nil {
		return types.ZeroAddress, errInvalidSignature
	}

	// Check if v value conforms to an earlier standard (before EIP155)
	if tx.V.IsUint64() {
		if vv := tx.V.Uint64(); vv == 27 || vv == 28 {
			return NewFrontierSigner(e.isHomestead).Sender(tx)
		}
	}

	// Reverse the V calculation to find the original V in the range [0, 1]
	// v = CHAIN_ID * 2 + 35 + {0, 1}
	offset := new(uint256.Int).Add(e.chainOffset(), u35)

	parity, underflow := new(uint256.Int).SubOverflow(tx.V, offset)
	if underflow || !parity.IsUint64() || parity.Uint64() > 1 {
		return types.ZeroAddress, ErrInvalidChainID
	}

	return recoverAddress(e.Hash(tx), tx.R, tx.S, byte(parity.Uint64()), e.isHomestead)
}

// SignTx signs the transaction using the passed in private key
func (e *EIP155Signer) SignTx(tx *types.Transaction, priv *ecdsa.PrivateKey) (*types.Transaction, error) {
	tx = tx.Copy()

	h := e.Hash(tx)

	sig, err := Sign(priv, h[:])
	if err != nil {
		return nil, err
	}

	tx.R = new(uint256.Int).SetBytes(sig[:32])
	tx.S = new(uint256.Int).SetBytes(sig[32:64])
	tx.V = e.calculateV(sig[64])

	return tx, nil
}

// calculateV returns the V value for transaction signatures. Based on EIP155
func (e *EIP155Signer) calculateV(parity byte) *uint256.Int {
	v := new(uint256.Int).AddUint64(u35, uint64(parity))

	return v.Add(v, e.chainOffset())
}

func (e *EIP155Signer) chainOffset() *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(e.chainID), uint256.NewInt(2))
}
